package records

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Memory is an in-process Store. It backs tests and the "memory" store
// mode of the CLI.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Memory struct {
	mu     sync.Mutex
	now    func() time.Time
	data   map[Category]map[int64]Record
	nextID map[Category]int64
}

// NewMemory creates an empty store. A nil now uses time.Now.
func NewMemory(now func() time.Time) *Memory {
	if now == nil {
		now = time.Now
	}
	return &Memory{
		now:    now,
		data:   make(map[Category]map[int64]Record),
		nextID: make(map[Category]int64),
	}
}

func (m *Memory) bucket(cat Category) map[int64]Record {
	b, ok := m.data[cat]
	if !ok {
		b = make(map[int64]Record)
		m.data[cat] = b
	}
	return b
}

// List implements Store.
func (m *Memory) List(_ context.Context, cat Category) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b := m.data[cat]
	out := make([]Record, 0, len(b))
	for _, r := range b {
		out = append(out, r.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, cat Category, id int64) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.data[cat][id]
	if !ok {
		return Record{}, fmt.Errorf("get %s %d: %w", cat, id, ErrNotFound)
	}
	return r.Clone(), nil
}

// Create implements Store.
func (m *Memory) Create(_ context.Context, cat Category, fields Fields) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID[cat]++
	r := Record{
		ID:        m.nextID[cat],
		Category:  cat,
		Fields:    fields.Clone(),
		CreatedAt: m.now().UTC(),
	}
	m.bucket(cat)[r.ID] = r
	return r.Clone(), nil
}

// Update implements Store.
func (m *Memory) Update(_ context.Context, cat Category, id int64, fields Fields) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.data[cat][id]
	if !ok {
		return Record{}, fmt.Errorf("update %s %d: %w", cat, id, ErrNotFound)
	}
	r = r.Clone()
	for k, v := range fields {
		r.Fields[k] = v
	}
	m.data[cat][id] = r
	return r.Clone(), nil
}

// Delete implements Store.
func (m *Memory) Delete(_ context.Context, cat Category, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.data[cat][id]; !ok {
		return fmt.Errorf("delete %s %d: %w", cat, id, ErrNotFound)
	}
	delete(m.data[cat], id)
	return nil
}

// Restore implements Store.
func (m *Memory) Restore(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b := m.bucket(rec.Category)
	if _, ok := b[rec.ID]; ok {
		return fmt.Errorf("restore %s %d: %w", rec.Category, rec.ID, ErrDuplicateID)
	}
	b[rec.ID] = rec.Clone()
	if rec.ID > m.nextID[rec.Category] {
		m.nextID[rec.Category] = rec.ID
	}
	return nil
}

// Count returns the number of records in a category.
func (m *Memory) Count(cat Category) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data[cat])
}
