package undo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/carelog/internal/records"
)

// Inverse describes how to reverse one executed action. The variants are
// closed: DeleteCreated, RestoreFields and Reinsert.
type Inverse interface {
	// Describe renders the reversal for logs.
	Describe() string

	isInverse()
}

// DeleteCreated reverses a create by deleting the new record.
type DeleteCreated struct {
	Category records.Category
	RecordID int64
}

// RestoreFields reverses an update by writing back the values the changed
// fields held before it.
type RestoreFields struct {
	Category records.Category
	RecordID int64
	Previous records.Fields
}

// Reinsert reverses a delete by restoring the deleted record with its
// original id and creation time.
type Reinsert struct {
	Record records.Record
}

func (DeleteCreated) isInverse() {}
func (RestoreFields) isInverse() {}
func (Reinsert) isInverse()      {}

func (i DeleteCreated) Describe() string {
	return fmt.Sprintf("delete %s %d", i.Category, i.RecordID)
}

func (i RestoreFields) Describe() string {
	return fmt.Sprintf("restore %d field(s) of %s %d", len(i.Previous), i.Category, i.RecordID)
}

func (i Reinsert) Describe() string {
	return fmt.Sprintf("reinsert %s %d", i.Record.Category, i.Record.ID)
}

// Apply performs the inverse store call.
func Apply(ctx context.Context, store records.Store, inv Inverse) error {
	switch i := inv.(type) {
	case DeleteCreated:
		return store.Delete(ctx, i.Category, i.RecordID)
	case RestoreFields:
		_, err := store.Update(ctx, i.Category, i.RecordID, i.Previous)
		return err
	case Reinsert:
		return store.Restore(ctx, i.Record)
	default:
		panic(fmt.Sprintf("undo: unhandled inverse %T", inv))
	}
}

type wireInverse struct {
	Kind      string           `json:"kind"`
	Category  records.Category `json:"category"`
	RecordID  int64            `json:"record_id"`
	Fields    json.RawMessage  `json:"fields,omitempty"`
	CreatedAt string           `json:"created_at,omitempty"`
}

func marshalInverse(inv Inverse) (wireInverse, error) {
	switch i := inv.(type) {
	case DeleteCreated:
		return wireInverse{Kind: "delete_created", Category: i.Category, RecordID: i.RecordID}, nil
	case RestoreFields:
		f, err := records.MarshalFields(i.Previous)
		if err != nil {
			return wireInverse{}, err
		}
		return wireInverse{Kind: "restore_fields", Category: i.Category, RecordID: i.RecordID, Fields: f}, nil
	case Reinsert:
		f, err := records.MarshalFields(i.Record.Fields)
		if err != nil {
			return wireInverse{}, err
		}
		ts, err := i.Record.CreatedAt.MarshalText()
		if err != nil {
			return wireInverse{}, err
		}
		return wireInverse{
			Kind: "reinsert", Category: i.Record.Category, RecordID: i.Record.ID,
			Fields: f, CreatedAt: string(ts),
		}, nil
	}
	return wireInverse{}, fmt.Errorf("unhandled inverse %T", inv)
}

func unmarshalInverse(w wireInverse) (Inverse, error) {
	switch w.Kind {
	case "delete_created":
		return DeleteCreated{Category: w.Category, RecordID: w.RecordID}, nil
	case "restore_fields":
		f, err := records.UnmarshalFields(w.Fields)
		if err != nil {
			return nil, err
		}
		return RestoreFields{Category: w.Category, RecordID: w.RecordID, Previous: f}, nil
	case "reinsert":
		f, err := records.UnmarshalFields(w.Fields)
		if err != nil {
			return nil, err
		}
		rec := records.Record{ID: w.RecordID, Category: w.Category, Fields: f}
		if err := rec.CreatedAt.UnmarshalText([]byte(w.CreatedAt)); err != nil {
			return nil, fmt.Errorf("reinsert created_at: %w", err)
		}
		return Reinsert{Record: rec}, nil
	}
	return nil, fmt.Errorf("unknown inverse kind %q", w.Kind)
}
