// Package undo keeps a bounded history of reversible actions and reverses
// the most recent one on request.
package undo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/roach88/carelog/internal/ids"
	"github.com/roach88/carelog/internal/records"
	"github.com/roach88/carelog/internal/slots"
)

// Capacity is the number of entries kept. Appending past it evicts the
// oldest entry.
const Capacity = 50

// ErrNothingToUndo indicates no executed, not yet undone entry exists.
var ErrNothingToUndo = errors.New("nothing to undo")

// Entry is one executed action.
type Entry struct {
	ID        string       `json:"id"`
	Timestamp time.Time    `json:"timestamp"`
	Intent    string       `json:"intent"`
	Params    slots.Params `json:"params"`
	// Message is the confirmation shown when the action ran.
	Message string `json:"message"`
	// RecordID is the record the action created, changed or deleted.
	RecordID int64   `json:"record_id"`
	Executed bool    `json:"executed"`
	Undone   bool    `json:"undone"`
	Inverse  Inverse `json:"-"`
}

// MarshalJSON includes the inverse with its variant tag.
func (e Entry) MarshalJSON() ([]byte, error) {
	type plain Entry
	inv, err := marshalInverse(e.Inverse)
	if err != nil {
		return nil, fmt.Errorf("entry %s: %w", e.ID, err)
	}
	return json.Marshal(struct {
		plain
		Inverse wireInverse `json:"inverse"`
	}{plain(e), inv})
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (e *Entry) UnmarshalJSON(data []byte) error {
	type plain Entry
	var w struct {
		plain
		Inverse wireInverse `json:"inverse"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	inv, err := unmarshalInverse(w.Inverse)
	if err != nil {
		return fmt.Errorf("entry %s: %w", w.ID, err)
	}
	*e = Entry(w.plain)
	e.Inverse = inv
	return nil
}

// Result reports an undo attempt.
type Result struct {
	Success bool
	Message string
	// Entry is the entry that was (or failed to be) undone.
	Entry *Entry
	Err   error
}

// Log is the bounded action history.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Log struct {
	mu      sync.Mutex
	entries []Entry
	ids     ids.Generator
	now     func() time.Time
	logger  *slog.Logger
}

// NewLog creates an empty log. Nil arguments select UUIDv7 ids, time.Now
// and a discarding logger.
func NewLog(gen ids.Generator, now func() time.Time, logger *slog.Logger) *Log {
	if gen == nil {
		gen = ids.UUIDv7Generator{}
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Log{ids: gen, now: now, logger: logger}
}

// Record appends an entry, assigning its ID and Timestamp when unset.
// Entries beyond Capacity are evicted oldest first. Record returns the
// stored entry.
func (l *Log) Record(e Entry) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e.ID == "" {
		e.ID = l.ids.Generate()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = l.now()
	}
	e.Params = e.Params.Clone()
	l.entries = append(l.entries, e)
	if over := len(l.entries) - Capacity; over > 0 {
		l.entries = slices.Delete(l.entries, 0, over)
	}
	return e
}

// UndoLast reverses the newest executed entry that is not yet undone. The
// entry is marked undone only after the inverse store call succeeds; on
// failure the log is unchanged.
func (l *Log) UndoLast(ctx context.Context, store records.Store) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.lastUndoable()
	if i < 0 {
		return Result{Message: "Nothing to undo.", Err: ErrNothingToUndo}
	}

	e := l.entries[i]
	if err := Apply(ctx, store, e.Inverse); err != nil {
		l.logger.Error("undo failed", "entry", e.ID, "inverse", e.Inverse.Describe(), "error", err)
		return Result{
			Message: fmt.Sprintf("Could not undo %q: %v", e.Message, err),
			Entry:   &e,
			Err:     fmt.Errorf("undo %s: %w", e.ID, err),
		}
	}

	l.entries[i].Undone = true
	e.Undone = true
	l.logger.Info("undone", "entry", e.ID, "inverse", e.Inverse.Describe())
	return Result{Success: true, Message: "Undone: " + e.Message, Entry: &e}
}

func (l *Log) lastUndoable() int {
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].Executed && !l.entries[i].Undone {
			return i
		}
	}
	return -1
}

// Entries returns a copy of the log, oldest first.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.entries)
}

// Len returns the number of entries held.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Restore replaces the log contents, keeping at most the newest Capacity
// entries.
func (l *Log) Restore(entries []Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(entries) > Capacity {
		entries = entries[len(entries)-Capacity:]
	}
	l.entries = slices.Clone(entries)
}
