package dispatch

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/carelog/internal/catalog"
	"github.com/roach88/carelog/internal/match"
	"github.com/roach88/carelog/internal/records"
	"github.com/roach88/carelog/internal/slots"
)

// maxListed caps the entries a history reply spells out.
const maxListed = 10

// scope returns the categories a view or analytics request covers: the
// named one, or all of them.
func scope(def catalog.Definition, p slots.Params) ([]records.Category, *Error) {
	name := p.Text(catalog.SlotCategory)
	if name == "" {
		return records.Categories, nil
	}
	cat, err := records.ParseCategory(name)
	if err != nil {
		return nil, newError(CodeInvalidInput, def.Name, fmt.Sprintf("Unknown category %q.", name), err)
	}
	return []records.Category{cat}, nil
}

func (d *Dispatcher) view(ctx context.Context, def catalog.Definition, p slots.Params) Result {
	cats, serr := scope(def, p)
	if serr != nil {
		return d.fail(def, serr)
	}
	var date string
	if phrase := p.Text(catalog.SlotDate); phrase != "" {
		date = resolveDate(phrase, d.now())
	}

	var found []records.Record
	for _, cat := range cats {
		recs, err := d.store.List(ctx, cat)
		if err != nil {
			return d.fail(def, newError(CodeStoreFailure, def.Name, "Could not read "+plural(cat), err))
		}
		found = append(found, match.Filter(recs, match.Criteria{Date: date})...)
	}

	what := "entries"
	if len(cats) == 1 {
		what = plural(cats[0])
	}
	if date != "" {
		what += " on " + date
	}
	if len(found) == 0 {
		return Result{Success: true, Message: "You have no " + what + " yet.", Screen: "journal"}
	}

	// Newest first.
	slices.Reverse(found)
	lines := []string{fmt.Sprintf("You have %d %s:", len(found), what)}
	for i, r := range found {
		if i == maxListed {
			lines = append(lines, fmt.Sprintf("...and %d more.", len(found)-maxListed))
			break
		}
		line := Summarize(r)
		if len(cats) > 1 {
			line = label(r.Category) + ": " + line
		}
		lines = append(lines, "- "+line)
	}
	return Result{Success: true, Message: strings.Join(lines, "\n"), Screen: "journal", Records: found}
}

func (d *Dispatcher) analytics(ctx context.Context, def catalog.Definition, p slots.Params) Result {
	cats, serr := scope(def, p)
	if serr != nil {
		return d.fail(def, serr)
	}

	var lines []string
	for _, cat := range cats {
		recs, err := d.store.List(ctx, cat)
		if err != nil {
			return d.fail(def, newError(CodeStoreFailure, def.Name, "Could not read "+plural(cat), err))
		}
		if len(recs) == 0 {
			continue
		}
		match.Sort(recs)
		lines = append(lines, insight(cat, recs))
	}
	if len(lines) == 0 {
		return Result{Success: true, Message: "There is no data to analyze yet.", Screen: "analytics"}
	}
	return Result{Success: true, Message: strings.Join(lines, "\n"), Screen: "analytics"}
}

// insight summarizes one category's records, sorted oldest first.
func insight(cat records.Category, recs []records.Record) string {
	head := fmt.Sprintf("%s: %d %s", label(cat), len(recs), entriesWord(len(recs)))
	switch cat {
	case records.Weight:
		first, _ := recs[0].Fields.Float("weight_kg")
		last, _ := recs[len(recs)-1].Fields.Float("weight_kg")
		return fmt.Sprintf("%s, latest %s kg, change %+.1f kg", head, number(last), last-first)
	case records.BloodPressure:
		var sys, dia int64
		for _, r := range recs {
			s, _ := r.Fields.Int("systolic")
			d, _ := r.Fields.Int("diastolic")
			sys += s
			dia += d
		}
		n := int64(len(recs))
		return fmt.Sprintf("%s, average %d/%d", head, sys/n, dia/n)
	case records.Sleep:
		var total float64
		for _, r := range recs {
			h, _ := r.Fields.Float("hours")
			total += h
		}
		return fmt.Sprintf("%s, average %.1f hours", head, total/float64(len(recs)))
	case records.Mood, records.Symptom:
		key := "mood"
		if cat == records.Symptom {
			key = "symptom"
		}
		return fmt.Sprintf("%s, most common %s", head, mostCommon(recs, key))
	case records.Task:
		done := 0
		for _, r := range recs {
			if r.Fields.Bool("done") {
				done++
			}
		}
		return fmt.Sprintf("%s, %d done", head, done)
	}
	return head
}

func entriesWord(n int) string {
	if n == 1 {
		return "entry"
	}
	return "entries"
}

// mostCommon returns the most frequent value of key. Ties go to the value
// seen first.
func mostCommon(recs []records.Record, key string) string {
	counts := map[string]int{}
	var order []string
	for _, r := range recs {
		v := r.Fields.String(key)
		if v == "" {
			continue
		}
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	best := ""
	for _, v := range order {
		if counts[v] > counts[best] {
			best = v
		}
	}
	return best
}
