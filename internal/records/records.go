// Package records defines the journal record model and the store contract
// the command engine mutates.
//
// Every record belongs to one Category and carries a flat field map. The ID
// and CreatedAt are assigned by the store on Create and never change.
package records

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"time"
)

// Category names a record collection.
type Category string

const (
	Appointment   Category = "appointment"
	Weight        Category = "weight"
	Symptom       Category = "symptom"
	Medicine      Category = "medicine"
	BloodPressure Category = "blood_pressure"
	Discharge     Category = "discharge"
	Mood          Category = "mood"
	Sleep         Category = "sleep"
	Task          Category = "task"
)

// Categories lists every category in display order.
var Categories = []Category{
	Appointment, Weight, Symptom, Medicine, BloodPressure, Discharge, Mood, Sleep, Task,
}

var (
	// ErrNotFound indicates no record with the given category and id.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateID indicates Restore found the id already occupied.
	ErrDuplicateID = errors.New("record id already exists")

	// ErrUnknownCategory indicates a category outside Categories.
	ErrUnknownCategory = errors.New("unknown record category")
)

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Fields is a record's field map. Values are string, int64, float64, or bool.
type Fields map[string]any

// Clone returns a shallow copy. Field values are immutable scalars, so a
// shallow copy is independent of the original.
func (f Fields) Clone() Fields {
	if f == nil {
		return Fields{}
	}
	return maps.Clone(f)
}

// String returns a string field, or "" when absent or not a string.
func (f Fields) String(key string) string {
	s, _ := f[key].(string)
	return s
}

// Int returns an integer field. Float values with no fraction are accepted.
func (f Fields) Int(key string) (int64, bool) {
	switch v := f[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		if v == float64(int64(v)) {
			return int64(v), true
		}
	}
	return 0, false
}

// Float returns a numeric field as float64.
func (f Fields) Float(key string) (float64, bool) {
	switch v := f[key].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	}
	return 0, false
}

// Bool returns a boolean field.
func (f Fields) Bool(key string) bool {
	b, _ := f[key].(bool)
	return b
}

// Record is one stored journal entry.
type Record struct {
	ID        int64     `json:"id"`
	Category  Category  `json:"category"`
	Fields    Fields    `json:"fields"`
	CreatedAt time.Time `json:"created_at"`
}

// Clone returns a copy whose Fields can be modified independently.
func (r Record) Clone() Record {
	r.Fields = r.Fields.Clone()
	return r
}

// Title is the human label of a record: the appointment or task title, the
// medicine name, or the logged value for measurement categories.
func (r Record) Title() string {
	switch r.Category {
	case Appointment, Task:
		return r.Fields.String("title")
	case Medicine:
		return r.Fields.String("name")
	case Symptom:
		return r.Fields.String("symptom")
	case Mood:
		return r.Fields.String("mood")
	case Discharge:
		return r.Fields.String("color")
	}
	return string(r.Category)
}

// Date is the calendar date a record refers to (YYYY-MM-DD), if any.
func (r Record) Date() string {
	if r.Category == Task {
		return r.Fields.String("due_date")
	}
	return r.Fields.String("date")
}

// Time is the clock time a record refers to (HH:MM), if any.
func (r Record) Time() string {
	return r.Fields.String("time")
}

// Store is the record persistence contract consumed by the dispatcher and
// the undo log. Implementations must make each call atomic.
type Store interface {
	// List returns all records of a category ordered by id.
	List(ctx context.Context, cat Category) ([]Record, error)

	// Get returns one record or ErrNotFound.
	Get(ctx context.Context, cat Category, id int64) (Record, error)

	// Create assigns an id and creation time and stores the record.
	Create(ctx context.Context, cat Category, fields Fields) (Record, error)

	// Update replaces the listed fields and returns the updated record.
	// Fields not listed are kept.
	Update(ctx context.Context, cat Category, id int64, fields Fields) (Record, error)

	// Delete removes a record or returns ErrNotFound.
	Delete(ctx context.Context, cat Category, id int64) error

	// Restore re-inserts a previously deleted record with its original id
	// and creation time. Returns ErrDuplicateID if the id is taken.
	Restore(ctx context.Context, rec Record) error
}

// MarshalFields encodes a field map as JSON for storage.
func MarshalFields(f Fields) ([]byte, error) {
	if f == nil {
		f = Fields{}
	}
	return json.Marshal(f)
}

// UnmarshalFields decodes stored JSON fields. Integral numbers become
// int64 and the rest float64; Fields.Int and Fields.Float accept either.
func UnmarshalFields(data []byte) (Fields, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}

	f := make(Fields, len(raw))
	for k, v := range raw {
		n, ok := v.(json.Number)
		if !ok {
			f[k] = v
			continue
		}
		if i, err := n.Int64(); err == nil {
			f[k] = i
			continue
		}
		fl, err := n.Float64()
		if err != nil {
			return nil, fmt.Errorf("decode field %q: %w", k, err)
		}
		f[k] = fl
	}
	return f, nil
}

// UnmarshalJSON decodes numbers the way UnmarshalFields does, so records
// read back from snapshots keep int64 counts.
func (f *Fields) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*f = nil
		return nil
	}
	v, err := UnmarshalFields(data)
	if err != nil {
		return err
	}
	*f = v
	return nil
}
