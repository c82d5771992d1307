// Package match resolves loose record references ("the checkup", "friday's
// appointment", "the last one") to stored records.
package match

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/roach88/carelog/internal/catalog"
	"github.com/roach88/carelog/internal/extract"
	"github.com/roach88/carelog/internal/records"
	"github.com/roach88/carelog/internal/slots"
	"github.com/roach88/carelog/internal/textnorm"
)

// Criteria narrows a record list. Zero fields do not filter.
type Criteria struct {
	// Title must occur in the record title (case-insensitive).
	Title string
	// Date is a canonical YYYY-MM-DD date the record must fall on.
	Date string
	// Weekday, when ByWeekday is set, is the weekday the record's date must
	// fall on. A bare weekday name matches any week.
	Weekday   time.Weekday
	ByWeekday bool
	// Reference picks the earliest ("first") or latest ("last") match.
	Reference string
}

// IsZero reports whether c filters nothing.
func (c Criteria) IsZero() bool {
	return c.Title == "" && c.Date == "" && !c.ByWeekday && c.Reference == ""
}

// FromParams builds criteria from an intent's parameters. titleSlot names
// the slot holding the record title ("title" for appointments, "task" for
// tasks).
func FromParams(p slots.Params, titleSlot string, now time.Time) Criteria {
	c := Criteria{
		Title:     p.Text(titleSlot),
		Reference: p.Text(catalog.SlotReference),
	}
	if phrase := p.Text(catalog.SlotDate); phrase != "" {
		if wd, ok := bareWeekday(phrase); ok {
			c.Weekday, c.ByWeekday = wd, true
		} else {
			c.Date = extract.ResolveDate(phrase, now)
		}
	}
	return c
}

func bareWeekday(phrase string) (time.Weekday, bool) {
	p := textnorm.Normalize(phrase)
	if strings.HasPrefix(p, "next ") {
		return 0, false
	}
	return extract.Weekday(p)
}

// Sort orders records by date, then time, then id. Records without a date
// sort first.
func Sort(recs []records.Record) {
	slices.SortStableFunc(recs, func(a, b records.Record) int {
		if c := strings.Compare(a.Date(), b.Date()); c != 0 {
			return c
		}
		if c := strings.Compare(a.Time(), b.Time()); c != 0 {
			return c
		}
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
}

// Filter returns the records matching c in Sort order. The input is not
// modified.
func Filter(recs []records.Record, c Criteria) []records.Record {
	out := make([]records.Record, 0, len(recs))
	title := textnorm.Normalize(c.Title)
	for _, r := range recs {
		if title != "" && !strings.Contains(textnorm.Normalize(r.Title()), title) {
			continue
		}
		if c.Date != "" && r.Date() != c.Date {
			continue
		}
		if c.ByWeekday && !onWeekday(r.Date(), c.Weekday) {
			continue
		}
		out = append(out, r)
	}
	Sort(out)

	if len(out) > 0 {
		switch c.Reference {
		case "first":
			out = out[:1]
		case "last":
			out = out[len(out)-1:]
		}
	}
	return out
}

func onWeekday(date string, wd time.Weekday) bool {
	t, err := time.Parse(extract.DateLayout, date)
	return err == nil && t.Weekday() == wd
}

// Describe renders a record for a candidate list.
func Describe(r records.Record) string {
	var b strings.Builder
	b.WriteString(r.Title())
	switch r.Category {
	case records.Appointment:
		if d := r.Date(); d != "" {
			fmt.Fprintf(&b, " on %s", d)
		}
		if t := r.Time(); t != "" {
			fmt.Fprintf(&b, " at %s", t)
		}
		if loc := r.Fields.String("location"); loc != "" {
			fmt.Fprintf(&b, " (%s)", loc)
		}
	case records.Task:
		if d := r.Date(); d != "" {
			fmt.Fprintf(&b, " (due %s)", d)
		}
		if r.Fields.Bool("done") {
			b.WriteString(" [done]")
		}
	default:
		if d := r.Date(); d != "" {
			fmt.Fprintf(&b, " on %s", d)
		}
	}
	return b.String()
}

// List renders candidates as a numbered list, one per line.
func List(recs []records.Record) string {
	lines := make([]string, len(recs))
	for i, r := range recs {
		lines[i] = fmt.Sprintf("%d. %s", i+1, Describe(r))
	}
	return strings.Join(lines, "\n")
}

// TitleSlot names the slot that carries a record's title for category.
func TitleSlot(cat records.Category) string {
	if cat == records.Task {
		return catalog.SlotTask
	}
	return catalog.SlotTitle
}
