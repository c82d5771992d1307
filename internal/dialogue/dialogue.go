// Package dialogue holds the single pending follow-up of a conversation and
// merges follow-up replies into it.
//
// A follow-up is either collecting missing slots or waiting for the user to
// pick among candidate records. Merge never drops a filled slot: a value is
// only replaced by a newer non-empty value for the same slot.
package dialogue

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/roach88/carelog/internal/catalog"
	"github.com/roach88/carelog/internal/match"
	"github.com/roach88/carelog/internal/records"
	"github.com/roach88/carelog/internal/slots"
)

// OutcomeKind classifies the result of merging a follow-up reply.
type OutcomeKind int

const (
	// StillMissing means required slots remain unfilled.
	StillMissing OutcomeKind = iota
	// Ready means the parameters are complete; the pending state is cleared.
	Ready
	// Disambiguation means a refinement narrowed the candidates but more
	// than one remains.
	Disambiguation
	// FailedToParse means the reply added nothing. The pending state is kept.
	FailedToParse
)

func (k OutcomeKind) String() string {
	switch k {
	case StillMissing:
		return "still_missing"
	case Ready:
		return "ready"
	case Disambiguation:
		return "disambiguation"
	case FailedToParse:
		return "failed_to_parse"
	}
	return fmt.Sprintf("OutcomeKind(%d)", int(k))
}

// Outcome is the result of Merge.
type Outcome struct {
	Kind    OutcomeKind
	Intent  catalog.Definition
	Params  slots.Params
	Missing []string
	// Candidates is the current candidate list for Disambiguation.
	Candidates []records.Record
	// Selected holds the chosen records when a selection made the
	// follow-up Ready.
	Selected []records.Record
	Prompt   string
}

// Pending is the single live follow-up context.
type Pending struct {
	Intent     catalog.Definition
	Params     slots.Params
	Missing    []string
	Candidates []records.Record
	CreatedAt  time.Time
}

// Selecting reports whether the follow-up waits for a candidate choice.
func (p *Pending) Selecting() bool {
	return len(p.Candidates) > 0
}

// State owns at most one Pending. It is not safe for concurrent use; the
// session serializes access.
type State struct {
	pending *Pending
	now     func() time.Time
}

// New creates an empty state. A nil now uses time.Now.
func New(now func() time.Time) *State {
	if now == nil {
		now = time.Now
	}
	return &State{now: now}
}

// Begin creates or replaces the pending follow-up for an intent with
// missing slots.
func (s *State) Begin(def catalog.Definition, partial slots.Params, missing []string) {
	s.pending = &Pending{
		Intent:    def,
		Params:    partial.Clone(),
		Missing:   slices.Clone(missing),
		CreatedAt: s.now(),
	}
}

// BeginSelection creates or replaces the pending follow-up with a
// candidate choice.
func (s *State) BeginSelection(def catalog.Definition, params slots.Params, candidates []records.Record) {
	s.pending = &Pending{
		Intent:     def,
		Params:     params.Clone(),
		Candidates: slices.Clone(candidates),
		CreatedAt:  s.now(),
	}
}

// HasPending reports whether a follow-up is live.
func (s *State) HasPending() bool {
	return s.pending != nil
}

// Pending returns a copy of the live follow-up.
func (s *State) Pending() (Pending, bool) {
	if s.pending == nil {
		return Pending{}, false
	}
	p := *s.pending
	p.Params = p.Params.Clone()
	p.Missing = slices.Clone(p.Missing)
	p.Candidates = slices.Clone(p.Candidates)
	return p, true
}

// Restore replaces the state with p, as loaded from a session snapshot.
func (s *State) Restore(p *Pending) {
	s.pending = p
}

// Clear drops the pending follow-up.
func (s *State) Clear() {
	s.pending = nil
}

// Merge folds a follow-up reply into the pending context.
func (s *State) Merge(utterance string) Outcome {
	if s.pending == nil {
		return Outcome{Kind: FailedToParse, Prompt: "There is nothing waiting for an answer."}
	}
	if s.pending.Selecting() {
		return s.mergeSelection(utterance)
	}
	return s.mergeSlots(utterance)
}

func (s *State) mergeSlots(utterance string) Outcome {
	p := s.pending
	fresh := slots.Extract(utterance, p.Intent)

	if len(p.Missing) > 0 {
		first := p.Missing[0]
		bare := len(fresh) == 0 ||
			(len(fresh) == 1 && fresh.Has(first) && slots.Partial(first, utterance))
		if bare {
			if v, ok := slots.BareAnswer(utterance, first); ok {
				fresh.Set(first, v)
			}
		}
	}
	if len(fresh) == 0 {
		return Outcome{
			Kind:    FailedToParse,
			Intent:  p.Intent,
			Params:  p.Params.Clone(),
			Missing: slices.Clone(p.Missing),
			Prompt:  "Sorry, I didn't catch that. " + Prompt(p.Missing),
		}
	}

	p.Params.Merge(fresh)
	p.Missing = slots.Missing(p.Params, p.Intent)

	if len(p.Missing) == 0 {
		s.pending = nil
		return Outcome{Kind: Ready, Intent: p.Intent, Params: p.Params}
	}
	return Outcome{
		Kind:    StillMissing,
		Intent:  p.Intent,
		Params:  p.Params.Clone(),
		Missing: slices.Clone(p.Missing),
		Prompt:  Prompt(p.Missing),
	}
}

func (s *State) mergeSelection(utterance string) Outcome {
	p := s.pending

	if idx, ok := ParseSelection(utterance, len(p.Candidates)); ok {
		selected := make([]records.Record, len(idx))
		for i, k := range idx {
			selected[i] = p.Candidates[k]
		}
		s.pending = nil
		return Outcome{Kind: Ready, Intent: p.Intent, Params: p.Params, Selected: selected}
	}

	c := refinement(utterance, p.Intent, s.now())
	if c.IsZero() {
		return s.selectionFailed()
	}
	narrowed := match.Filter(p.Candidates, c)
	switch len(narrowed) {
	case 0:
		return s.selectionFailed()
	case 1:
		s.pending = nil
		return Outcome{Kind: Ready, Intent: p.Intent, Params: p.Params, Selected: narrowed}
	}
	p.Candidates = narrowed
	return Outcome{
		Kind:       Disambiguation,
		Intent:     p.Intent,
		Params:     p.Params.Clone(),
		Candidates: slices.Clone(narrowed),
		Prompt:     SelectionPrompt(narrowed),
	}
}

// refinement reads record-describing slots from a reply that was not a
// selection ("the one on friday", "the dentist").
func refinement(utterance string, def catalog.Definition, now time.Time) match.Criteria {
	p := slots.Params{}
	titleSlot := match.TitleSlot(def.Category)
	for _, slot := range []string{titleSlot, catalog.SlotDate, catalog.SlotReference} {
		if v, ok := slots.ExtractSlot(slot, utterance); ok {
			p.Set(slot, v)
		}
	}
	return match.FromParams(p, titleSlot, now)
}

func (s *State) selectionFailed() Outcome {
	p := s.pending
	return Outcome{
		Kind:       FailedToParse,
		Intent:     p.Intent,
		Params:     p.Params.Clone(),
		Candidates: slices.Clone(p.Candidates),
		Prompt:     "Sorry, I didn't understand which one. " + SelectionPrompt(p.Candidates),
	}
}

// Prompt asks for the first missing slot and lists the rest.
func Prompt(missing []string) string {
	switch len(missing) {
	case 0:
		return ""
	case 1:
		return catalog.Question(missing[0])
	}
	return fmt.Sprintf("%s (still needed: %s)", catalog.Question(missing[0]), strings.Join(missing, ", "))
}

// SelectionPrompt lists candidates and asks for a choice.
func SelectionPrompt(candidates []records.Record) string {
	return fmt.Sprintf("I found %d matches:\n%s\nWhich one? Reply with a number, \"all\", \"first\" or \"last\".",
		len(candidates), match.List(candidates))
}
