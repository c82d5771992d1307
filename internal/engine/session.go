package engine

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/carelog/internal/catalog"
	"github.com/roach88/carelog/internal/chatreply"
	"github.com/roach88/carelog/internal/classifier"
	"github.com/roach88/carelog/internal/dialogue"
	"github.com/roach88/carelog/internal/dispatch"
	"github.com/roach88/carelog/internal/ids"
	"github.com/roach88/carelog/internal/records"
	"github.com/roach88/carelog/internal/slots"
	"github.com/roach88/carelog/internal/textnorm"
	"github.com/roach88/carelog/internal/undo"
)

// DefaultInterruptConfidence is the classification confidence at which a
// reply to a follow-up is taken as a new request for a different intent,
// abandoning the follow-up.
const DefaultInterruptConfidence = 0.4

// cancelPhrases clear a pending follow-up when they are the whole reply.
var cancelPhrases = map[string]bool{
	"cancel": true, "cancel that": true, "cancel it": true,
	"never mind": true, "nevermind": true, "forget it": true, "stop": true,
}

// Deps are the collaborators a Session needs. Catalog and Store are
// required; the rest default.
type Deps struct {
	Catalog   *catalog.Catalog
	Store     records.Store
	Responder chatreply.Responder
	Logger    *slog.Logger
	Now       func() time.Time
	IDs       ids.Generator
}

func (d Deps) withDefaults() Deps {
	if d.Responder == nil {
		d.Responder = chatreply.Canned("")
	}
	if d.Logger == nil {
		d.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.IDs == nil {
		d.IDs = ids.UUIDv7Generator{}
	}
	return d
}

// Option configures a Session.
type Option func(*Session)

// WithID sets the session id. Without it New generates one.
func WithID(id string) Option {
	return func(s *Session) {
		s.id = id
	}
}

// WithInterruptConfidence sets the confidence a new intent needs to
// interrupt a follow-up.
//
// Default: 0.4 (DefaultInterruptConfidence)
// Use WithInterruptConfidence(1.1) to disable interrupts.
func WithInterruptConfidence(c float64) Option {
	return func(s *Session) {
		s.interrupt = c
	}
}

// Session is one conversation: its pending follow-up, its undo log and its
// turn counter.
//
// Thread-safety: All methods are safe for concurrent use; turns are
// serialized by an internal mutex.
type Session struct {
	mu sync.Mutex

	id         string
	classifier *classifier.Classifier
	state      *dialogue.State
	log        *undo.Log
	dispatcher *dispatch.Dispatcher
	responder  chatreply.Responder
	logger     *slog.Logger
	now        func() time.Time
	interrupt  float64

	turn     int64
	lastUsed time.Time
}

// New creates a session over the given collaborators.
func New(deps Deps, opts ...Option) *Session {
	deps = deps.withDefaults()
	s := &Session{
		classifier: classifier.New(deps.Catalog, deps.Logger),
		state:      dialogue.New(deps.Now),
		log:        undo.NewLog(deps.IDs, deps.Now, deps.Logger),
		dispatcher: dispatch.New(deps.Store, deps.Now, deps.Logger),
		responder:  deps.Responder,
		logger:     deps.Logger,
		now:        deps.Now,
		interrupt:  DefaultInterruptConfidence,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = deps.IDs.Generate()
	}
	s.logger = s.logger.With("session", s.id)
	s.lastUsed = s.now()
	return s
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Handle processes one utterance and returns the turn's result.
func (s *Session) Handle(ctx context.Context, utterance string, uc dispatch.UserContext) dispatch.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turn++
	s.lastUsed = s.now()

	res := s.handle(ctx, utterance, uc)
	res.Turn = s.turn
	return res
}

func (s *Session) handle(ctx context.Context, utterance string, uc dispatch.UserContext) dispatch.Result {
	if cancelPhrases[textnorm.Words(utterance)] {
		return s.cancel()
	}
	if s.state.HasPending() {
		return s.followUp(ctx, utterance, uc)
	}
	return s.run(ctx, utterance, s.classifier.Classify(utterance), uc)
}

func (s *Session) cancel() dispatch.Result {
	res := dispatch.Result{Success: true, Intent: "cancel", Action: catalog.ActionCancel}
	if s.state.HasPending() {
		s.state.Clear()
		s.logger.Debug("follow-up cancelled")
		res.Message = "Okay, cancelled."
		return res
	}
	res.Message = "There is nothing to cancel."
	return res
}

// followUp offers the utterance to the pending follow-up. A confident
// classification to a different intent interrupts it first, since free-text
// slots would otherwise swallow any reply as their answer.
func (s *Session) followUp(ctx context.Context, utterance string, uc dispatch.UserContext) dispatch.Result {
	pending, _ := s.state.Pending()
	cr := s.classifier.Classify(utterance)
	if !cr.IsFallback() && cr.Intent != pending.Intent.Name && cr.Confidence >= s.interrupt {
		s.logger.Debug("follow-up interrupted", "pending", pending.Intent.Name, "intent", cr.Intent)
		s.state.Clear()
		return s.run(ctx, utterance, cr, uc)
	}

	out := s.state.Merge(utterance)
	s.logger.Debug("follow-up merged", "intent", out.Intent.Name, "outcome", out.Kind)

	switch out.Kind {
	case dialogue.Ready:
		if len(out.Selected) > 0 {
			return s.dispatcher.DispatchSelected(ctx, out.Intent, out.Params, out.Selected, s.log)
		}
		return s.dispatch(ctx, out.Intent, out.Params, uc)

	case dialogue.StillMissing:
		return followUpResult(out)
	}

	// Disambiguation or failed to parse: the follow-up stays live.
	res := followUpResult(out)
	if len(out.Candidates) > 0 {
		res.RequiresSelection = true
		res.Candidates = out.Candidates
	}
	return res
}

func followUpResult(out dialogue.Outcome) dispatch.Result {
	return dispatch.Result{
		Message:          out.Prompt,
		Intent:           out.Intent.Name,
		Action:           out.Intent.Action,
		RequiresFollowUp: true,
		MissingFields:    out.Missing,
	}
}

// run handles a freshly classified utterance.
func (s *Session) run(ctx context.Context, utterance string, cr classifier.Result, uc dispatch.UserContext) dispatch.Result {
	if cr.IsFallback() {
		return s.chat(ctx, utterance)
	}

	def := cr.Definition
	params := slots.Extract(utterance, def)
	if missing := slots.Missing(params, def); len(missing) > 0 {
		s.state.Begin(def, params, missing)
		s.logger.Debug("follow-up begun", "intent", def.Name, "missing", missing)
		return dispatch.Result{
			Message:          dialogue.Prompt(missing),
			Intent:           def.Name,
			Action:           def.Action,
			RequiresFollowUp: true,
			MissingFields:    missing,
			Confidence:       cr.Confidence,
		}
	}

	res := s.dispatch(ctx, def, params, uc)
	res.Confidence = cr.Confidence
	return res
}

// dispatch executes a complete intent. A candidate list in the result
// starts a selection follow-up.
func (s *Session) dispatch(ctx context.Context, def catalog.Definition, params slots.Params, uc dispatch.UserContext) dispatch.Result {
	res := s.dispatcher.Dispatch(ctx, def, params, uc, s.log)
	if res.RequiresSelection {
		s.state.BeginSelection(def, params, res.Candidates)
		s.logger.Debug("selection begun", "intent", def.Name, "candidates", len(res.Candidates))
	}
	return res
}

func (s *Session) chat(ctx context.Context, utterance string) dispatch.Result {
	res := dispatch.Result{Intent: catalog.FallbackName, Action: catalog.ActionChat}
	reply, err := s.responder.Reply(ctx, utterance)
	if err != nil {
		s.logger.Warn("chat reply failed", "error", err)
		res.Message = "Sorry, I can't chat right now. Try logging something or asking for your history."
		res.Err = err
		return res
	}
	res.Success = true
	res.Message = reply
	return res
}

// Undo reverses the most recent action of the session.
func (s *Session) Undo(ctx context.Context) dispatch.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turn++
	s.lastUsed = s.now()
	def := catalog.Definition{Name: "undo", Action: catalog.ActionUndo}
	res := s.dispatcher.Dispatch(ctx, def, nil, dispatch.UserContext{}, s.log)
	res.Turn = s.turn
	return res
}

// Cancel drops the pending follow-up and reports whether one existed.
func (s *Session) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	had := s.state.HasPending()
	s.state.Clear()
	return had
}

// Pending returns a copy of the pending follow-up.
func (s *Session) Pending() (dialogue.Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Pending()
}

// History returns the undo log, oldest first.
func (s *Session) History() []undo.Entry {
	return s.log.Entries()
}

// Classify scores an utterance without changing the session.
func (s *Session) Classify(utterance string) classifier.Result {
	return s.classifier.Classify(utterance)
}

// touch marks the session as used now.
func (s *Session) touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = s.now()
}

// idleSince reports whether the session has been unused since t.
func (s *Session) idleSince(t time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed.Before(t)
}
