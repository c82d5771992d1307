// Package pgstore keeps journal records and session snapshots in
// PostgreSQL. It is the shared-database counterpart of the SQLite store and
// follows the same table layout.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roach88/carelog/internal/engine"
	"github.com/roach88/carelog/internal/records"
)

var (
	_ records.Store        = (*Store)(nil)
	_ engine.SnapshotStore = (*Store)(nil)
)

// Store is a pgxpool-backed records.Store and engine.SnapshotStore.
//
// Thread-safety: All methods are safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// Connect opens a pool for dsn and verifies it with a ping. A nil now uses
// time.Now.
func Connect(ctx context.Context, dsn string, now func() time.Time) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MaxConnLifetime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return New(pool, now), nil
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{pool: pool, now: now}
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Migrate creates the tables when they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS records (
			category   TEXT        NOT NULL,
			id         BIGINT      NOT NULL,
			fields     JSONB       NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (category, id)
		)`,
		`CREATE TABLE IF NOT EXISTS record_sequences (
			category TEXT   PRIMARY KEY,
			last_id  BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id         TEXT        PRIMARY KEY,
			snapshot   BYTEA       NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions (updated_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// List implements records.Store.
func (s *Store) List(ctx context.Context, cat records.Category) ([]records.Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, fields::text, created_at
		FROM records
		WHERE category = $1
		ORDER BY id ASC
	`, string(cat))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", cat, err)
	}
	defer rows.Close()

	out := []records.Record{}
	for rows.Next() {
		r, err := scanRecord(rows, cat)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", cat, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", cat, err)
	}
	return out, nil
}

// Get implements records.Store.
func (s *Store) Get(ctx context.Context, cat records.Category, id int64) (records.Record, error) {
	r, err := scanRecord(s.pool.QueryRow(ctx, `
		SELECT id, fields::text, created_at
		FROM records
		WHERE category = $1 AND id = $2
	`, string(cat), id), cat)
	if errors.Is(err, pgx.ErrNoRows) {
		return records.Record{}, fmt.Errorf("get %s %d: %w", cat, id, records.ErrNotFound)
	}
	if err != nil {
		return records.Record{}, fmt.Errorf("get %s %d: %w", cat, id, err)
	}
	return r, nil
}

// Create implements records.Store.
func (s *Store) Create(ctx context.Context, cat records.Category, fields records.Fields) (records.Record, error) {
	data, err := records.MarshalFields(fields)
	if err != nil {
		return records.Record{}, fmt.Errorf("create %s: %w", cat, err)
	}
	r := records.Record{
		Category:  cat,
		Fields:    fields.Clone(),
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
	}

	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
			INSERT INTO record_sequences (category, last_id) VALUES ($1, 1)
			ON CONFLICT (category) DO UPDATE SET last_id = record_sequences.last_id + 1
			RETURNING last_id
		`, string(cat)).Scan(&r.ID); err != nil {
			return fmt.Errorf("next id: %w", err)
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO records (category, id, fields, created_at)
			VALUES ($1, $2, $3::jsonb, $4)
		`, string(cat), r.ID, string(data), r.CreatedAt)
		return err
	})
	if err != nil {
		return records.Record{}, fmt.Errorf("create %s: %w", cat, err)
	}
	return r, nil
}

// Update implements records.Store. The listed fields are merged into the
// stored JSON object in one statement.
func (s *Store) Update(ctx context.Context, cat records.Category, id int64, fields records.Fields) (records.Record, error) {
	data, err := records.MarshalFields(fields)
	if err != nil {
		return records.Record{}, fmt.Errorf("update %s %d: %w", cat, id, err)
	}
	r, err := scanRecord(s.pool.QueryRow(ctx, `
		UPDATE records SET fields = fields || $3::jsonb
		WHERE category = $1 AND id = $2
		RETURNING id, fields::text, created_at
	`, string(cat), id, string(data)), cat)
	if errors.Is(err, pgx.ErrNoRows) {
		return records.Record{}, fmt.Errorf("update %s %d: %w", cat, id, records.ErrNotFound)
	}
	if err != nil {
		return records.Record{}, fmt.Errorf("update %s %d: %w", cat, id, err)
	}
	return r, nil
}

// Delete implements records.Store.
func (s *Store) Delete(ctx context.Context, cat records.Category, id int64) error {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM records WHERE category = $1 AND id = $2", string(cat), id)
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", cat, id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete %s %d: %w", cat, id, records.ErrNotFound)
	}
	return nil
}

// Restore implements records.Store.
func (s *Store) Restore(ctx context.Context, rec records.Record) error {
	data, err := records.MarshalFields(rec.Fields)
	if err != nil {
		return fmt.Errorf("restore %s %d: %w", rec.Category, rec.ID, err)
	}

	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			INSERT INTO records (category, id, fields, created_at)
			VALUES ($1, $2, $3::jsonb, $4)
			ON CONFLICT (category, id) DO NOTHING
		`, string(rec.Category), rec.ID, string(data), rec.CreatedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return records.ErrDuplicateID
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO record_sequences (category, last_id) VALUES ($1, $2)
			ON CONFLICT (category) DO UPDATE
			SET last_id = GREATEST(record_sequences.last_id, EXCLUDED.last_id)
		`, string(rec.Category), rec.ID)
		return err
	})
	if err != nil {
		return fmt.Errorf("restore %s %d: %w", rec.Category, rec.ID, err)
	}
	return nil
}

// SaveSnapshot implements engine.SnapshotStore.
func (s *Store) SaveSnapshot(ctx context.Context, id string, data []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sessions (id, snapshot, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			snapshot = EXCLUDED.snapshot,
			updated_at = EXCLUDED.updated_at
	`, id, data, s.now().UTC())
	if err != nil {
		return fmt.Errorf("save session %s: %w", id, err)
	}
	return nil
}

// LoadSnapshot implements engine.SnapshotStore.
func (s *Store) LoadSnapshot(ctx context.Context, id string) ([]byte, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, "SELECT snapshot FROM sessions WHERE id = $1", id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, engine.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	return data, nil
}

func scanRecord(row pgx.Row, cat records.Category) (records.Record, error) {
	var (
		r      records.Record
		fields string
	)
	if err := row.Scan(&r.ID, &fields, &r.CreatedAt); err != nil {
		return records.Record{}, err
	}
	f, err := records.UnmarshalFields([]byte(fields))
	if err != nil {
		return records.Record{}, err
	}
	r.Category = cat
	r.Fields = f
	r.CreatedAt = r.CreatedAt.UTC()
	return r, nil
}
