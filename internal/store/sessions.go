package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/carelog/internal/engine"
)

var _ engine.SnapshotStore = (*Store)(nil)

// SessionInfo describes a stored session.
type SessionInfo struct {
	ID        string    `json:"id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SaveSnapshot implements engine.SnapshotStore.
func (s *Store) SaveSnapshot(ctx context.Context, id string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, snapshot, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			snapshot = excluded.snapshot,
			updated_at = excluded.updated_at
	`, id, string(data), formatTime(s.now()))
	if err != nil {
		return fmt.Errorf("save session %s: %w", id, err)
	}
	return nil
}

// LoadSnapshot implements engine.SnapshotStore.
func (s *Store) LoadSnapshot(ctx context.Context, id string) ([]byte, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		"SELECT snapshot FROM sessions WHERE id = ?", id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, engine.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	return []byte(data), nil
}

// ListSessions returns stored sessions, most recently updated first.
func (s *Store) ListSessions(ctx context.Context) ([]SessionInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, updated_at FROM sessions
		ORDER BY updated_at DESC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionInfo
	for rows.Next() {
		var (
			info    SessionInfo
			updated string
		)
		if err := rows.Scan(&info.ID, &updated); err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		if info.UpdatedAt, err = time.Parse(timeLayout, updated); err != nil {
			return nil, fmt.Errorf("list sessions: parse updated_at: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// PurgeSessions deletes sessions not updated since before and returns how
// many were removed.
func (s *Store) PurgeSessions(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE updated_at < ?", formatTime(before),
	)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return res.RowsAffected()
}
