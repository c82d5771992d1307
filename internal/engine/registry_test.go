package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_HandlePersistsSession(t *testing.T) {
	h := newHarness(t)
	snaps := newMemSnapshots()
	reg := NewRegistry(h.deps, snaps)

	res, id, err := reg.Handle(h.ctx, "", "make an appointment", uc)
	require.NoError(t, err)
	assert.True(t, res.RequiresFollowUp)
	assert.NotEmpty(t, id)
	assert.Contains(t, snaps.data, id)

	// A second registry over the same snapshots continues the follow-up.
	other := NewRegistry(h.deps, snaps)
	res, _, err = other.Handle(h.ctx, id, "Dr Smith", uc)
	require.NoError(t, err)
	assert.Equal(t, []string{"date", "time", "location"}, res.MissingFields)
}

func TestRegistry_GetReturnsSameSession(t *testing.T) {
	h := newHarness(t)
	reg := NewRegistry(h.deps, nil)

	a, err := reg.Get(h.ctx, "abc")
	require.NoError(t, err)
	b, err := reg.Get(h.ctx, "abc")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_UndoAndCancel(t *testing.T) {
	h := newHarness(t)
	reg := NewRegistry(h.deps, newMemSnapshots())

	_, id, err := reg.Handle(h.ctx, "u1", "log weight 65kg for week 12", uc)
	require.NoError(t, err)

	res, err := reg.Undo(h.ctx, id)
	require.NoError(t, err)
	assert.True(t, res.Success)

	had, err := reg.Cancel(h.ctx, id)
	require.NoError(t, err)
	assert.False(t, had)
}

func TestRegistry_EvictIdle(t *testing.T) {
	h := newHarness(t)
	snaps := newMemSnapshots()
	reg := NewRegistry(h.deps, snaps)

	_, _, err := reg.Handle(h.ctx, "old", "make an appointment", uc)
	require.NoError(t, err)
	h.clock.Advance(time.Hour)
	_, _, err = reg.Handle(h.ctx, "new", "make an appointment", uc)
	require.NoError(t, err)

	n := reg.Evict(h.ctx, 30*time.Minute)

	assert.Equal(t, 1, n)
	assert.Equal(t, 1, reg.Len())
	assert.Contains(t, snaps.data, "old")
}

func TestRegistry_GetKeepsSessionLive(t *testing.T) {
	h := newHarness(t)
	reg := NewRegistry(h.deps, newMemSnapshots())

	a, err := reg.Get(h.ctx, "abc")
	require.NoError(t, err)
	h.clock.Advance(time.Hour)

	b, err := reg.Get(h.ctx, "abc")
	require.NoError(t, err)
	require.Same(t, a, b)

	n := reg.Evict(h.ctx, 30*time.Minute)

	assert.Equal(t, 0, n, "a session just handed out is not idle")
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_RunStopsOnCancel(t *testing.T) {
	h := newHarness(t)
	reg := NewRegistry(h.deps, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- reg.Run(ctx, time.Millisecond, time.Hour)
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}
