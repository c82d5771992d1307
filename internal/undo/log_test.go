package undo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/carelog/internal/ids"
	"github.com/roach88/carelog/internal/records"
	"github.com/roach88/carelog/internal/slots"
	"github.com/roach88/carelog/internal/testutil"
)

var now = time.Date(2026, 10, 17, 15, 4, 0, 0, time.UTC)

func newLog() *Log {
	return NewLog(testutil.NewSequenceGenerator("entry"), func() time.Time { return now }, nil)
}

func created(t *testing.T, ctx context.Context, store *records.Memory, l *Log, fields records.Fields) records.Record {
	t.Helper()
	rec, err := store.Create(ctx, records.Weight, fields)
	require.NoError(t, err)
	l.Record(Entry{
		Intent:   "log_weight",
		Message:  fmt.Sprintf("Logged weight %v kg.", fields["weight_kg"]),
		RecordID: rec.ID,
		Executed: true,
		Inverse:  DeleteCreated{Category: records.Weight, RecordID: rec.ID},
	})
	return rec
}

func TestRecord_AssignsIDAndTimestamp(t *testing.T) {
	l := NewLog(ids.NewFixedGenerator("e-1"), func() time.Time { return now }, nil)

	e := l.Record(Entry{Intent: "log_mood", Executed: true, Inverse: DeleteCreated{Category: records.Mood, RecordID: 1}})

	assert.Equal(t, "e-1", e.ID)
	assert.Equal(t, now, e.Timestamp)
	assert.Equal(t, 1, l.Len())
}

func TestUndoLast_RemovesExactlyCreatedRecord(t *testing.T) {
	ctx := context.Background()
	store := records.NewMemory(func() time.Time { return now })
	l := newLog()

	keep := created(t, ctx, store, l, records.Fields{"weight_kg": 64.0})
	undone := created(t, ctx, store, l, records.Fields{"weight_kg": 65.0})

	res := l.UndoLast(ctx, store)
	require.True(t, res.Success, res.Message)
	assert.Contains(t, res.Message, "65")
	assert.Equal(t, undone.ID, res.Entry.RecordID)

	_, err := store.Get(ctx, records.Weight, undone.ID)
	assert.ErrorIs(t, err, records.ErrNotFound)
	_, err = store.Get(ctx, records.Weight, keep.ID)
	assert.NoError(t, err)
}

func TestUndoLast_SecondCallWalksBack(t *testing.T) {
	ctx := context.Background()
	store := records.NewMemory(nil)
	l := newLog()
	created(t, ctx, store, l, records.Fields{"weight_kg": 64.0})

	require.True(t, l.UndoLast(ctx, store).Success)

	res := l.UndoLast(ctx, store)
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, ErrNothingToUndo)
	assert.Equal(t, "Nothing to undo.", res.Message)
	assert.Equal(t, 0, store.Count(records.Weight))
}

func TestUndoLast_EmptyLog(t *testing.T) {
	res := newLog().UndoLast(context.Background(), records.NewMemory(nil))
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, ErrNothingToUndo)
	assert.Nil(t, res.Entry)
}

func TestUndoLast_SkipsUnexecuted(t *testing.T) {
	ctx := context.Background()
	store := records.NewMemory(nil)
	l := newLog()
	rec := created(t, ctx, store, l, records.Fields{"weight_kg": 64.0})
	l.Record(Entry{Intent: "log_weight", Executed: false, Inverse: DeleteCreated{Category: records.Weight, RecordID: 99}})

	res := l.UndoLast(ctx, store)
	require.True(t, res.Success)
	assert.Equal(t, rec.ID, res.Entry.RecordID)
}

func TestUndoLast_RestoreFields(t *testing.T) {
	ctx := context.Background()
	store := records.NewMemory(nil)
	rec, err := store.Create(ctx, records.Appointment, records.Fields{"title": "checkup", "date": "2026-10-18", "time": "10:00"})
	require.NoError(t, err)
	_, err = store.Update(ctx, records.Appointment, rec.ID, records.Fields{"date": "2026-10-23"})
	require.NoError(t, err)

	l := newLog()
	l.Record(Entry{
		Intent: "update_appointment", Executed: true, RecordID: rec.ID,
		Inverse: RestoreFields{Category: records.Appointment, RecordID: rec.ID, Previous: records.Fields{"date": "2026-10-18"}},
	})

	require.True(t, l.UndoLast(ctx, store).Success)

	got, err := store.Get(ctx, records.Appointment, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-18", got.Fields.String("date"))
	assert.Equal(t, "10:00", got.Fields.String("time"))
}

func TestUndoLast_Reinsert(t *testing.T) {
	ctx := context.Background()
	store := records.NewMemory(func() time.Time { return now })
	rec, err := store.Create(ctx, records.Task, records.Fields{"title": "pack bag", "done": false})
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, records.Task, rec.ID))

	l := newLog()
	l.Record(Entry{Intent: "delete_task", Executed: true, RecordID: rec.ID, Inverse: Reinsert{Record: rec}})

	require.True(t, l.UndoLast(ctx, store).Success)

	got, err := store.Get(ctx, records.Task, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

type failingStore struct {
	records.Store
}

func (failingStore) Delete(context.Context, records.Category, int64) error {
	return errors.New("disk full")
}

func TestUndoLast_FailedInverseLeavesEntry(t *testing.T) {
	ctx := context.Background()
	store := records.NewMemory(nil)
	l := newLog()
	created(t, ctx, store, l, records.Fields{"weight_kg": 64.0})

	res := l.UndoLast(ctx, failingStore{store})
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "disk full")
	assert.False(t, l.Entries()[0].Undone)

	// The entry is still undoable once the store recovers.
	assert.True(t, l.UndoLast(ctx, store).Success)
	assert.True(t, l.Entries()[0].Undone)
}

func TestRecord_EvictsOldestPastCapacity(t *testing.T) {
	l := newLog()
	for i := 1; i <= Capacity+1; i++ {
		l.Record(Entry{Intent: "log_mood", Executed: true, RecordID: int64(i), Inverse: DeleteCreated{Category: records.Mood, RecordID: int64(i)}})
	}

	entries := l.Entries()
	require.Len(t, entries, Capacity)
	assert.Equal(t, int64(2), entries[0].RecordID)
	assert.Equal(t, "entry-2", entries[0].ID)
	assert.Equal(t, int64(Capacity+1), entries[len(entries)-1].RecordID)
}

func TestEntry_JSONKeepsInverseVariant(t *testing.T) {
	params := slots.Params{}
	params.Set("title", slots.Text("checkup"))
	entries := []Entry{
		{ID: "a", Timestamp: now, Intent: "create_task", Params: params, Executed: true,
			Inverse: DeleteCreated{Category: records.Task, RecordID: 3}},
		{ID: "b", Timestamp: now, Intent: "update_appointment", Params: slots.Params{}, Executed: true, Undone: true,
			Inverse: RestoreFields{Category: records.Appointment, RecordID: 1, Previous: records.Fields{"date": "2026-10-18"}}},
		{ID: "c", Timestamp: now, Intent: "delete_appointment", Params: slots.Params{}, Executed: true,
			Inverse: Reinsert{Record: records.Record{ID: 2, Category: records.Appointment, CreatedAt: now,
				Fields: records.Fields{"title": "scan", "week": int64(20)}}}},
	}

	data, err := json.Marshal(entries)
	require.NoError(t, err)

	var got []Entry
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, entries, got)
}

func TestEntry_UnmarshalRejectsUnknownInverse(t *testing.T) {
	var e Entry
	err := json.Unmarshal([]byte(`{"id":"x","inverse":{"kind":"teleport"}}`), &e)
	assert.ErrorContains(t, err, "teleport")
}

func TestRestore_KeepsNewest(t *testing.T) {
	entries := make([]Entry, Capacity+5)
	for i := range entries {
		entries[i] = Entry{ID: fmt.Sprint(i), Inverse: DeleteCreated{Category: records.Mood, RecordID: int64(i)}}
	}
	l := newLog()
	l.Restore(entries)

	got := l.Entries()
	require.Len(t, got, Capacity)
	assert.Equal(t, "5", got[0].ID)
}

func TestInverse_Describe(t *testing.T) {
	assert.Equal(t, "delete weight 4", DeleteCreated{Category: records.Weight, RecordID: 4}.Describe())
	assert.Equal(t, "reinsert task 2", Reinsert{Record: records.Record{ID: 2, Category: records.Task}}.Describe())
}
