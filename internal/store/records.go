package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/carelog/internal/records"
)

var _ records.Store = (*Store)(nil)

// List implements records.Store.
func (s *Store) List(ctx context.Context, cat records.Category) ([]records.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, fields, created_at
		FROM records
		WHERE category = ?
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
	row := s.db.QueryRowContext(ctx, `
		SELECT id, fields, created_at
		FROM records
		WHERE category = ? AND id = ?
	`, string(cat), id)
	r, err := scanRecord(row, cat)
	if errors.Is(err, sql.ErrNoRows) {
		return records.Record{}, fmt.Errorf("get %s %d: %w", cat, id, records.ErrNotFound)
	}
	if err != nil {
		return records.Record{}, fmt.Errorf("get %s %d: %w", cat, id, err)
	}
	return r, nil
}

// Create implements records.Store. The id is drawn from the category
// sequence inside the same transaction as the insert.
func (s *Store) Create(ctx context.Context, cat records.Category, fields records.Fields) (records.Record, error) {
	data, err := records.MarshalFields(fields)
	if err != nil {
		return records.Record{}, fmt.Errorf("create %s: %w", cat, err)
	}
	r := records.Record{
		Category:  cat,
		Fields:    fields.Clone(),
		CreatedAt: s.now().UTC(),
	}

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO record_sequences (category, last_id) VALUES (?, 1)
			ON CONFLICT(category) DO UPDATE SET last_id = last_id + 1
			RETURNING last_id
		`, string(cat)).Scan(&r.ID); err != nil {
			return fmt.Errorf("next id: %w", err)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO records (category, id, fields, created_at)
			VALUES (?, ?, ?, ?)
		`, string(cat), r.ID, string(data), formatTime(r.CreatedAt))
		return err
	})
	if err != nil {
		return records.Record{}, fmt.Errorf("create %s: %w", cat, err)
	}
	return r, nil
}

// Update implements records.Store.
func (s *Store) Update(ctx context.Context, cat records.Category, id int64, fields records.Fields) (records.Record, error) {
	var r records.Record
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			SELECT id, fields, created_at
			FROM records
			WHERE category = ? AND id = ?
		`, string(cat), id)
		cur, err := scanRecord(row, cat)
		if errors.Is(err, sql.ErrNoRows) {
			return records.ErrNotFound
		}
		if err != nil {
			return err
		}

		for k, v := range fields {
			cur.Fields[k] = v
		}
		data, err := records.MarshalFields(cur.Fields)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE records SET fields = ?
			WHERE category = ? AND id = ?
		`, string(data), string(cat), id); err != nil {
			return err
		}
		r = cur
		return nil
	})
	if err != nil {
		return records.Record{}, fmt.Errorf("update %s %d: %w", cat, id, err)
	}
	return r, nil
}

// Delete implements records.Store.
func (s *Store) Delete(ctx context.Context, cat records.Category, id int64) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM records WHERE category = ? AND id = ?
	`, string(cat), id)
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", cat, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", cat, id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete %s %d: %w", cat, id, records.ErrNotFound)
	}
	return nil
}

// Restore implements records.Store. The category sequence is raised to at
// least rec.ID so later creates do not collide with it.
func (s *Store) Restore(ctx context.Context, rec records.Record) error {
	data, err := records.MarshalFields(rec.Fields)
	if err != nil {
		return fmt.Errorf("restore %s %d: %w", rec.Category, rec.ID, err)
	}

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO records (category, id, fields, created_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(category, id) DO NOTHING
		`, string(rec.Category), rec.ID, string(data), formatTime(rec.CreatedAt))
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return records.ErrDuplicateID
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO record_sequences (category, last_id) VALUES (?, ?)
			ON CONFLICT(category) DO UPDATE SET last_id = max(last_id, excluded.last_id)
		`, string(rec.Category), rec.ID)
		return err
	})
	if err != nil {
		return fmt.Errorf("restore %s %d: %w", rec.Category, rec.ID, err)
	}
	return nil
}

// Count returns the number of records in a category.
func (s *Store) Count(ctx context.Context, cat records.Category) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM records WHERE category = ?", string(cat),
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", cat, err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner, cat records.Category) (records.Record, error) {
	var (
		r       records.Record
		fields  string
		created string
	)
	if err := row.Scan(&r.ID, &fields, &created); err != nil {
		return records.Record{}, err
	}
	f, err := records.UnmarshalFields([]byte(fields))
	if err != nil {
		return records.Record{}, err
	}
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return records.Record{}, fmt.Errorf("parse created_at: %w", err)
	}
	r.Category = cat
	r.Fields = f
	r.CreatedAt = t
	return r, nil
}

// timeLayout is fixed-width so stored times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// inTx runs fn in a transaction, committing on nil and rolling back
// otherwise.
func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
