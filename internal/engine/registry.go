package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/carelog/internal/dispatch"
)

// Registry holds live sessions by id and persists them through an optional
// SnapshotStore.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
// Turns on different sessions run concurrently; turns on one session are
// serialized by the session.
type Registry struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	deps      Deps
	snapshots SnapshotStore
	opts      []Option
	logger    *slog.Logger
}

// NewRegistry creates a registry. snapshots may be nil, in which case
// sessions live only in memory.
func NewRegistry(deps Deps, snapshots SnapshotStore, opts ...Option) *Registry {
	deps = deps.withDefaults()
	return &Registry{
		sessions:  make(map[string]*Session),
		deps:      deps,
		snapshots: snapshots,
		opts:      opts,
		logger:    deps.Logger,
	}
}

// Get returns the session for id, loading its snapshot on first use. An
// empty id creates a session with a fresh id.
func (r *Registry) Get(ctx context.Context, id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok && id != "" {
		// Evict re-checks idleness under r.mu before dropping a session.
		s.touch()
		return s, nil
	}

	opts := r.opts
	if id != "" {
		opts = append(opts[:len(opts):len(opts)], WithID(id))
	}
	s := New(r.deps, opts...)

	if id != "" && r.snapshots != nil {
		found, err := s.Load(ctx, r.snapshots)
		if err != nil && !found {
			return nil, err
		}
		if err != nil {
			// The undo log survived; only the pending follow-up was lost.
			r.logger.Warn("session restored partially", "session", id, "error", err)
		}
	}
	r.sessions[s.ID()] = s
	return s, nil
}

// Handle runs one turn on the session and saves it afterwards. The
// returned id is empty when the session could not be loaded; otherwise the
// turn ran and a non-nil error means only the save failed.
func (r *Registry) Handle(ctx context.Context, id, utterance string, uc dispatch.UserContext) (dispatch.Result, string, error) {
	s, err := r.Get(ctx, id)
	if err != nil {
		return dispatch.Result{}, "", err
	}
	res := s.Handle(ctx, utterance, uc)
	return res, s.ID(), r.Save(ctx, s)
}

// Undo reverses the last action of a session and saves it.
func (r *Registry) Undo(ctx context.Context, id string) (dispatch.Result, error) {
	s, err := r.Get(ctx, id)
	if err != nil {
		return dispatch.Result{}, err
	}
	res := s.Undo(ctx)
	return res, r.Save(ctx, s)
}

// Cancel drops a session's pending follow-up and saves it.
func (r *Registry) Cancel(ctx context.Context, id string) (bool, error) {
	s, err := r.Get(ctx, id)
	if err != nil {
		return false, err
	}
	had := s.Cancel()
	return had, r.Save(ctx, s)
}

// Save persists a session when a SnapshotStore is configured.
func (r *Registry) Save(ctx context.Context, s *Session) error {
	if r.snapshots == nil {
		return nil
	}
	return s.Save(ctx, r.snapshots)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Evict saves and drops sessions unused for longer than idle. It returns
// the number evicted. Sessions that fail to save stay live.
func (r *Registry) Evict(ctx context.Context, idle time.Duration) int {
	cutoff := r.deps.Now().Add(-idle)

	r.mu.Lock()
	var stale []*Session
	for _, s := range r.sessions {
		if s.idleSince(cutoff) {
			stale = append(stale, s)
		}
	}
	r.mu.Unlock()

	n := 0
	for _, s := range stale {
		if err := r.Save(ctx, s); err != nil {
			r.logger.Error("evict: save failed", "session", s.ID(), "error", err)
			continue
		}
		r.mu.Lock()
		if cur, ok := r.sessions[s.ID()]; ok && cur == s && s.idleSince(cutoff) {
			delete(r.sessions, s.ID())
			n++
		}
		r.mu.Unlock()
	}
	if n > 0 {
		r.logger.Info("sessions evicted", "count", n)
	}
	return n
}

// Run evicts idle sessions every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval, idle time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.Evict(ctx, idle)
		}
	}
}
