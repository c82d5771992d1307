package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/roach88/carelog/internal/catalog"
	"github.com/roach88/carelog/internal/dispatch"
	"github.com/roach88/carelog/internal/engine"
	"github.com/roach88/carelog/internal/records"
	"github.com/roach88/carelog/internal/testutil"
)

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory store.
//
// Execution flow:
// 1. Freeze the clock at the scenario's now
// 2. Load the catalog and create one session
// 3. Store the setup records
// 4. Replay the turns, checking expect clauses
// 5. Evaluate assertions over the final state
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	now, err := scenario.clock()
	if err != nil {
		return nil, err
	}
	clock := testutil.NewFixedClock(now)
	store := records.NewMemory(clock.Now)

	cat := catalog.Default()
	if scenario.Catalog != "" {
		if cat, err = catalog.LoadCUE(scenario.Catalog); err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
	}

	session := engine.New(engine.Deps{
		Catalog: cat,
		Store:   store,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:     clock.Now,
		IDs:     testutil.NewSequenceGenerator("id"),
	}, engine.WithID(scenario.Name))

	if err := executeSetup(ctx, store, scenario.Setup); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}

	uc := dispatch.UserContext{CurrentWeek: scenario.CurrentWeek}
	if uc.CurrentWeek == 0 {
		uc.CurrentWeek = 1
	}

	result := NewResult()
	for i, turn := range scenario.Turns {
		var res dispatch.Result
		if turn.Undo {
			res = session.Undo(ctx)
		} else {
			res = session.Handle(ctx, turn.Say, uc)
		}
		result.Transcript = append(result.Transcript, Exchange{
			Turn:   res.Turn,
			Say:    turn.Say,
			Undo:   turn.Undo,
			Result: res,
		})
		for _, msg := range checkExpect(turn.Expect, res) {
			result.AddError(fmt.Sprintf("turns[%d] %q: %s", i, turnLabel(turn), msg))
		}
	}

	for _, c := range records.Categories {
		recs, err := store.List(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("failed to read final state: %w", err)
		}
		if len(recs) > 0 {
			result.Records[c] = recs
		}
	}

	_, pending := session.Pending()
	actx := &AssertionContext{Records: result.Records, Pending: pending}
	for _, msg := range EvaluateAssertions(scenario.Assertions, actx) {
		result.AddError(msg)
	}

	return result, nil
}

func turnLabel(t Turn) string {
	if t.Undo {
		return "undo"
	}
	return t.Say
}

// executeSetup stores the setup records in order.
func executeSetup(ctx context.Context, store records.Store, setup []SetupRecord) error {
	for i, rec := range setup {
		cat, err := records.ParseCategory(rec.Category)
		if err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
		fields := make(records.Fields, len(rec.Fields))
		for k, v := range rec.Fields {
			fields[k] = normalizeValue(v)
		}
		if _, err := store.Create(ctx, cat, fields); err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
	}
	return nil
}

// normalizeValue converts YAML scalars to record field types.
func normalizeValue(v any) any {
	switch tv := v.(type) {
	case int:
		return int64(tv)
	case uint64:
		return int64(tv)
	case time.Time:
		return tv.Format("2006-01-02")
	}
	return v
}

// checkExpect returns one message per property of res that differs from e.
func checkExpect(e *ExpectClause, res dispatch.Result) []string {
	if e == nil {
		return nil
	}
	var errs []string
	mismatch := func(field string, want, got any) {
		errs = append(errs, fmt.Sprintf("expected %s %v, got %v", field, want, got))
	}

	if e.Success != nil && *e.Success != res.Success {
		mismatch("success", *e.Success, res.Success)
	}
	if e.Intent != "" && e.Intent != res.Intent {
		mismatch("intent", e.Intent, res.Intent)
	}
	if e.Action != "" && e.Action != string(res.Action) {
		mismatch("action", e.Action, res.Action)
	}
	if e.Screen != "" && e.Screen != res.Screen {
		mismatch("screen", e.Screen, res.Screen)
	}
	if e.RequiresFollowUp != nil && *e.RequiresFollowUp != res.RequiresFollowUp {
		mismatch("requires_follow_up", *e.RequiresFollowUp, res.RequiresFollowUp)
	}
	if e.RequiresSelection != nil && *e.RequiresSelection != res.RequiresSelection {
		mismatch("requires_selection", *e.RequiresSelection, res.RequiresSelection)
	}
	if e.Missing != nil && !slices.Equal(e.Missing, res.MissingFields) {
		mismatch("missing", e.Missing, res.MissingFields)
	}
	if e.Message != "" && e.Message != res.Message {
		mismatch("message", fmt.Sprintf("%q", e.Message), fmt.Sprintf("%q", res.Message))
	}
	if e.MessageContains != "" && !strings.Contains(res.Message, e.MessageContains) {
		errs = append(errs, fmt.Sprintf("expected message containing %q, got %q", e.MessageContains, res.Message))
	}
	return errs
}
