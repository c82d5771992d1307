package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/carelog/internal/dialogue"
	"github.com/roach88/carelog/internal/records"
	"github.com/roach88/carelog/internal/slots"
	"github.com/roach88/carelog/internal/undo"
)

// Snapshot is the persisted state of a session.
type Snapshot struct {
	ID      string           `json:"id"`
	Turn    int64            `json:"turn"`
	Pending *PendingSnapshot `json:"pending,omitempty"`
	Undo    []undo.Entry     `json:"undo"`
	SavedAt time.Time        `json:"saved_at"`
}

// PendingSnapshot stores a pending follow-up by intent name; Restore looks
// the definition up in the session's catalog.
type PendingSnapshot struct {
	Intent     string           `json:"intent"`
	Params     slots.Params     `json:"params"`
	Missing    []string         `json:"missing,omitempty"`
	Candidates []records.Record `json:"candidates,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

// SnapshotStore persists session snapshots as opaque JSON.
type SnapshotStore interface {
	// SaveSnapshot writes or replaces a session's snapshot.
	SaveSnapshot(ctx context.Context, id string, data []byte) error

	// LoadSnapshot returns a session's snapshot or ErrNoSnapshot.
	LoadSnapshot(ctx context.Context, id string) ([]byte, error)
}

// Snapshot captures the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:      s.id,
		Turn:    s.turn,
		Undo:    s.log.Entries(),
		SavedAt: s.now().UTC(),
	}
	if p, ok := s.state.Pending(); ok {
		snap.Pending = &PendingSnapshot{
			Intent:     p.Intent.Name,
			Params:     p.Params,
			Missing:    p.Missing,
			Candidates: p.Candidates,
			CreatedAt:  p.CreatedAt,
		}
	}
	return snap
}

// Restore replaces the session state with snap. A pending follow-up for an
// intent the catalog no longer has is dropped with an error; the undo log
// and turn counter are restored regardless.
func (s *Session) Restore(snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turn = snap.Turn
	s.log.Restore(snap.Undo)
	s.state.Clear()

	if snap.Pending == nil {
		return nil
	}
	def, err := s.classifier.Catalog().Find(snap.Pending.Intent)
	if err != nil {
		return &SnapshotError{SessionID: s.id, Op: "restore", Err: err}
	}
	s.state.Restore(&dialogue.Pending{
		Intent:     def,
		Params:     snap.Pending.Params.Clone(),
		Missing:    snap.Pending.Missing,
		Candidates: snap.Pending.Candidates,
		CreatedAt:  snap.Pending.CreatedAt,
	})
	return nil
}

// Save writes the session snapshot to store.
func (s *Session) Save(ctx context.Context, store SnapshotStore) error {
	data, err := json.Marshal(s.Snapshot())
	if err != nil {
		return &SnapshotError{SessionID: s.id, Op: "save", Err: err}
	}
	if err := store.SaveSnapshot(ctx, s.id, data); err != nil {
		return &SnapshotError{SessionID: s.id, Op: "save", Err: err}
	}
	return nil
}

// Load restores the session from store. It returns false without error
// when the store has no snapshot for the session.
func (s *Session) Load(ctx context.Context, store SnapshotStore) (bool, error) {
	data, err := store.LoadSnapshot(ctx, s.id)
	if errors.Is(err, ErrNoSnapshot) {
		return false, nil
	}
	if err != nil {
		return false, &SnapshotError{SessionID: s.id, Op: "load", Err: err}
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return false, &SnapshotError{SessionID: s.id, Op: "load", Err: fmt.Errorf("decode: %w", err)}
	}
	if err := s.Restore(snap); err != nil {
		return true, err
	}
	return true, nil
}

// Tiered reads through a fast cache to a durable store and writes to both.
// The durable store is written first and is authoritative. Cache entries
// are expected to expire, which bounds how long a failed cache write can
// leave a stale snapshot visible.
type Tiered struct {
	Cache   SnapshotStore
	Durable SnapshotStore

	// Logger receives cache refill failures. Nil discards them.
	Logger *slog.Logger
}

// SaveSnapshot implements SnapshotStore.
func (t Tiered) SaveSnapshot(ctx context.Context, id string, data []byte) error {
	if err := t.Durable.SaveSnapshot(ctx, id, data); err != nil {
		return err
	}
	if err := t.Cache.SaveSnapshot(ctx, id, data); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	return nil
}

// LoadSnapshot implements SnapshotStore.
func (t Tiered) LoadSnapshot(ctx context.Context, id string) ([]byte, error) {
	if data, err := t.Cache.LoadSnapshot(ctx, id); err == nil {
		return data, nil
	}
	data, err := t.Durable.LoadSnapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := t.Cache.SaveSnapshot(ctx, id, data); err != nil && t.Logger != nil {
		t.Logger.Warn("cache refill failed", "session", id, "error", err)
	}
	return data, nil
}
