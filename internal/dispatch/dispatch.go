// Package dispatch executes completed intents against the record store.
//
// Each handler issues at most one store mutation per record, builds a
// confirmation from the stored values and, for reversible actions, appends
// an undo entry carrying the inverse operation. Failures come back as
// Result values with Success false; nothing panics or returns an error
// past Dispatch.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/roach88/carelog/internal/catalog"
	"github.com/roach88/carelog/internal/dialogue"
	"github.com/roach88/carelog/internal/match"
	"github.com/roach88/carelog/internal/records"
	"github.com/roach88/carelog/internal/slots"
	"github.com/roach88/carelog/internal/undo"
)

// UserContext carries per-user defaults.
type UserContext struct {
	// CurrentWeek is the pregnancy week used when an utterance names none.
	CurrentWeek int64 `json:"current_week"`
}

// Result is the outcome of one turn.
type Result struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Intent  string         `json:"intent,omitempty"`
	Action  catalog.Action `json:"action,omitempty"`
	// Screen names the screen a navigate, view or analytics result opens.
	Screen string `json:"screen,omitempty"`

	RequiresFollowUp bool     `json:"requires_follow_up,omitempty"`
	MissingFields    []string `json:"missing_fields,omitempty"`

	// RequiresSelection is set with Candidates when a reference matched
	// more than one record.
	RequiresSelection bool             `json:"requires_selection,omitempty"`
	Candidates        []records.Record `json:"candidates,omitempty"`

	// RecordID is the record created, changed or deleted.
	RecordID int64            `json:"record_id,omitempty"`
	Records  []records.Record `json:"records,omitempty"`

	Confidence float64 `json:"confidence,omitempty"`
	// Turn numbers the utterance within its session, starting at 1.
	Turn int64 `json:"turn,omitempty"`
	Err  error `json:"-"`
}

// Dispatcher runs intent handlers against a store.
type Dispatcher struct {
	store  records.Store
	now    func() time.Time
	logger *slog.Logger
}

// New creates a dispatcher. A nil now uses time.Now; a nil logger
// discards.
func New(store records.Store, now func() time.Time, logger *slog.Logger) *Dispatcher {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Dispatcher{store: store, now: now, logger: logger}
}

// Store returns the record store the dispatcher writes to.
func (d *Dispatcher) Store() records.Store {
	return d.store
}

// Dispatch executes def with complete params. Successful reversible
// actions are appended to log.
func (d *Dispatcher) Dispatch(ctx context.Context, def catalog.Definition, params slots.Params, uc UserContext, log *undo.Log) Result {
	if missing := slots.Missing(params, def); len(missing) > 0 {
		return d.fail(def, newError(CodeInvalidInput, def.Name,
			"missing required slots: "+strings.Join(missing, ", "), nil))
	}

	var res Result
	switch def.Action {
	case catalog.ActionCreate:
		res = d.create(ctx, def, params, uc, log)
	case catalog.ActionUpdate, catalog.ActionDelete:
		res = d.target(ctx, def, params, log)
	case catalog.ActionView:
		res = d.view(ctx, def, params)
	case catalog.ActionAnalytics:
		res = d.analytics(ctx, def, params)
	case catalog.ActionNavigate:
		screen := params.Text(catalog.SlotScreen)
		res = Result{Success: true, Message: "Opening " + screen + ".", Screen: screen}
	case catalog.ActionLogout:
		res = Result{Success: true, Message: "Logging you out."}
	case catalog.ActionEmergency:
		res = Result{
			Success: true,
			Message: "This sounds urgent. Call your local emergency number or go to the nearest hospital now.",
			Screen:  "emergency",
		}
	case catalog.ActionUndo:
		res = d.undo(ctx, def, log)
	case catalog.ActionCancel:
		res = Result{Success: true, Message: "Okay, cancelled."}
	default:
		res = d.fail(def, newError(CodeInvalidInput, def.Name,
			fmt.Sprintf("no handler for action %q", def.Action), nil))
	}
	return d.finish(def, res)
}

// DispatchSelected applies an update or delete intent to records the user
// picked from a candidate list. Each record is its own store call and its
// own undo entry.
func (d *Dispatcher) DispatchSelected(ctx context.Context, def catalog.Definition, params slots.Params, selected []records.Record, log *undo.Log) Result {
	if len(selected) == 0 {
		return d.finish(def, d.fail(def, newError(CodeInvalidInput, def.Name, "nothing selected", nil)))
	}

	var (
		messages []string
		failed   *Result
		last     Result
	)
	for _, rec := range selected {
		r := d.apply(ctx, def, params, rec, log)
		messages = append(messages, r.Message)
		if !r.Success && failed == nil {
			failed = &r
		}
		last = r
	}

	res := Result{Success: failed == nil, Message: strings.Join(messages, "\n")}
	if len(selected) == 1 {
		res.RecordID = last.RecordID
	}
	if failed != nil {
		res.Err = failed.Err
	}
	return d.finish(def, res)
}

func (d *Dispatcher) finish(def catalog.Definition, res Result) Result {
	res.Intent = def.Name
	res.Action = def.Action
	if res.Success {
		d.logger.Info("dispatched", "intent", def.Name, "action", def.Action, "record", res.RecordID)
	} else if res.Err != nil {
		d.logger.Debug("dispatch failed", "intent", def.Name, "error", res.Err)
	}
	return res
}

func (d *Dispatcher) fail(def catalog.Definition, err *Error) Result {
	if err.Code == CodeStoreFailure {
		d.logger.Error("store failure", "intent", def.Name, "error", err.Err)
	}
	msg := err.Message
	if err.Code == CodeStoreFailure && err.Err != nil {
		msg = fmt.Sprintf("%s: %v", err.Message, err.Err)
	}
	return Result{Success: false, Message: msg, Err: err}
}

func (d *Dispatcher) create(ctx context.Context, def catalog.Definition, params slots.Params, uc UserContext, log *undo.Log) Result {
	build, ok := builders[def.Category]
	if !ok {
		return d.fail(def, newError(CodeInvalidInput, def.Name,
			fmt.Sprintf("cannot create %q records", def.Category), nil))
	}
	fields, err := build(params, uc, d.now())
	if err != nil {
		return d.fail(def, newError(CodeInvalidInput, def.Name,
			fmt.Sprintf("Invalid %s: %v.", label(def.Category), err), err))
	}

	rec, err := d.store.Create(ctx, def.Category, fields)
	if err != nil {
		return d.fail(def, newError(CodeStoreFailure, def.Name, "Could not save the "+label(def.Category), err))
	}

	msg := created(rec)
	log.Record(undo.Entry{
		Intent:   def.Name,
		Params:   params,
		Message:  msg,
		RecordID: rec.ID,
		Executed: true,
		Inverse:  undo.DeleteCreated{Category: rec.Category, RecordID: rec.ID},
	})
	return Result{Success: true, Message: msg, RecordID: rec.ID, Records: []records.Record{rec}}
}

// target resolves the record an update or delete refers to. Exactly one
// match is acted on; several become a candidate list and nothing changes.
func (d *Dispatcher) target(ctx context.Context, def catalog.Definition, params slots.Params, log *undo.Log) Result {
	all, err := d.store.List(ctx, def.Category)
	if err != nil {
		return d.fail(def, newError(CodeStoreFailure, def.Name, "Could not read "+plural(def.Category), err))
	}
	if def.Action == catalog.ActionUpdate && def.Category == records.Task {
		all = openTasks(all)
	}

	c := match.FromParams(params, match.TitleSlot(def.Category), d.now())
	found := match.Filter(all, c)
	switch len(found) {
	case 0:
		return d.fail(def, newError(CodeNotFound, def.Name, notFound(def.Category, c), nil))
	case 1:
		return d.apply(ctx, def, params, found[0], log)
	}
	return Result{
		Message:           dialogue.SelectionPrompt(found),
		RequiresFollowUp:  true,
		RequiresSelection: true,
		Candidates:        found,
	}
}

func (d *Dispatcher) apply(ctx context.Context, def catalog.Definition, params slots.Params, rec records.Record, log *undo.Log) Result {
	if def.Action == catalog.ActionDelete {
		return d.remove(ctx, def, params, rec, log)
	}
	return d.change(ctx, def, params, rec, log)
}

func (d *Dispatcher) remove(ctx context.Context, def catalog.Definition, params slots.Params, rec records.Record, log *undo.Log) Result {
	if err := d.store.Delete(ctx, rec.Category, rec.ID); err != nil {
		return d.fail(def, storeError(def, "Could not delete "+match.Describe(rec), err))
	}
	msg := fmt.Sprintf("Deleted %s %s.", label(rec.Category), match.Describe(rec))
	log.Record(undo.Entry{
		Intent:   def.Name,
		Params:   params,
		Message:  msg,
		RecordID: rec.ID,
		Executed: true,
		Inverse:  undo.Reinsert{Record: rec},
	})
	return Result{Success: true, Message: msg, RecordID: rec.ID}
}

func (d *Dispatcher) change(ctx context.Context, def catalog.Definition, params slots.Params, rec records.Record, log *undo.Log) Result {
	fields := d.changes(def, params)
	if len(fields) == 0 {
		return d.fail(def, newError(CodeInvalidInput, def.Name, "Nothing to change.", nil))
	}

	// Missing keys restore to nil, which the store keeps as an empty value.
	previous := make(records.Fields, len(fields))
	for k := range fields {
		previous[k] = rec.Fields[k]
	}

	updated, err := d.store.Update(ctx, rec.Category, rec.ID, fields)
	if err != nil {
		return d.fail(def, storeError(def, "Could not update "+match.Describe(rec), err))
	}

	msg := changed(updated)
	log.Record(undo.Entry{
		Intent:   def.Name,
		Params:   params,
		Message:  msg,
		RecordID: rec.ID,
		Executed: true,
		Inverse:  undo.RestoreFields{Category: rec.Category, RecordID: rec.ID, Previous: previous},
	})
	return Result{Success: true, Message: msg, RecordID: rec.ID, Records: []records.Record{updated}}
}

// changes returns the fields an update intent writes.
func (d *Dispatcher) changes(def catalog.Definition, params slots.Params) records.Fields {
	if def.Category == records.Task {
		return records.Fields{"done": true}
	}
	f := records.Fields{}
	if phrase := params.Text(catalog.SlotNewDate); phrase != "" {
		f["date"] = resolveDate(phrase, d.now())
	}
	if phrase := params.Text(catalog.SlotNewTime); phrase != "" {
		f["time"] = resolveTime(phrase)
	}
	return f
}

func (d *Dispatcher) undo(ctx context.Context, def catalog.Definition, log *undo.Log) Result {
	r := log.UndoLast(ctx, d.store)
	if r.Success {
		return Result{Success: true, Message: r.Message, RecordID: r.Entry.RecordID}
	}
	code := CodeStoreFailure
	if r.Entry == nil {
		code = CodeNothingToUndo
	}
	return Result{Message: r.Message, Err: newError(code, def.Name, r.Message, r.Err)}
}

func storeError(def catalog.Definition, msg string, err error) *Error {
	if errors.Is(err, records.ErrNotFound) {
		return newError(CodeNotFound, def.Name, msg, err)
	}
	return newError(CodeStoreFailure, def.Name, msg, err)
}

func openTasks(recs []records.Record) []records.Record {
	out := recs[:0:0]
	for _, r := range recs {
		if !r.Fields.Bool("done") {
			out = append(out, r)
		}
	}
	return out
}

func notFound(cat records.Category, c match.Criteria) string {
	var parts []string
	if c.Title != "" {
		parts = append(parts, fmt.Sprintf("%q", c.Title))
	}
	if c.Date != "" {
		parts = append(parts, "on "+c.Date)
	}
	if c.ByWeekday {
		parts = append(parts, "on a "+c.Weekday.String())
	}
	if len(parts) == 0 {
		return fmt.Sprintf("You have no %s.", plural(cat))
	}
	return fmt.Sprintf("No %s found matching %s.", label(cat), strings.Join(parts, " "))
}
