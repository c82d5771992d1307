package harness

import (
	"github.com/roach88/carelog/internal/dispatch"
	"github.com/roach88/carelog/internal/records"
)

// Exchange is one replayed turn and the engine's answer.
type Exchange struct {
	Turn   int64           `json:"turn"`
	Say    string          `json:"say,omitempty"`
	Undo   bool            `json:"undo,omitempty"`
	Result dispatch.Result `json:"result"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Transcript holds the turns in order.
	Transcript []Exchange `json:"transcript"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Records is the final store content per category, for assertions and
	// debugging. Empty categories are omitted.
	Records map[records.Category][]records.Record `json:"records,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:       true,
		Transcript: []Exchange{},
		Errors:     []string{},
		Records:    make(map[records.Category][]records.Record),
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
