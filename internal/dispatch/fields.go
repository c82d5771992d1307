package dispatch

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/carelog/internal/catalog"
	"github.com/roach88/carelog/internal/extract"
	"github.com/roach88/carelog/internal/match"
	"github.com/roach88/carelog/internal/records"
	"github.com/roach88/carelog/internal/slots"
)

// builder converts a create intent's parameters to stored fields.
type builder func(p slots.Params, uc UserContext, now time.Time) (records.Fields, error)

var builders = map[records.Category]builder{
	records.Weight:        weightFields,
	records.BloodPressure: pressureFields,
	records.Symptom:       symptomFields,
	records.Medicine:      medicineFields,
	records.Discharge:     dischargeFields,
	records.Mood:          moodFields,
	records.Sleep:         sleepFields,
	records.Appointment:   appointmentFields,
	records.Task:          taskFields,
}

func resolveDate(phrase string, now time.Time) string {
	return extract.ResolveDate(phrase, now)
}

func resolveTime(phrase string) string {
	return extract.ResolveTime(phrase)
}

// setText copies a non-empty text slot into f.
func setText(f records.Fields, key string, p slots.Params, slot string) {
	if v := p.Text(slot); v != "" {
		f[key] = v
	}
}

func weightFields(p slots.Params, uc UserContext, now time.Time) (records.Fields, error) {
	kg, _ := p.Decimal(catalog.SlotWeight)
	week, ok := p.Int(catalog.SlotWeekNumber)
	if !ok {
		week = uc.CurrentWeek
	}
	f := records.Fields{
		"weight_kg": kg,
		"date":      resolveDate(p.Text(catalog.SlotDate), now),
	}
	if week > 0 {
		f["week_number"] = week
	}
	return f, nil
}

func pressureFields(p slots.Params, _ UserContext, now time.Time) (records.Fields, error) {
	sys, okS := p.Int(catalog.SlotSystolic)
	dia, okD := p.Int(catalog.SlotDiastolic)
	if !okS || !okD {
		return nil, errors.New("both systolic and diastolic values are needed")
	}
	if sys <= dia {
		return nil, fmt.Errorf("systolic %d must be higher than diastolic %d", sys, dia)
	}
	return records.Fields{
		"systolic":  sys,
		"diastolic": dia,
		"date":      resolveDate(p.Text(catalog.SlotDate), now),
		"time":      clockOrNow(p, now),
	}, nil
}

// clockOrNow resolves the time slot, or uses the current time when the
// utterance named none.
func clockOrNow(p slots.Params, now time.Time) string {
	if phrase := p.Text(catalog.SlotTime); phrase != "" {
		return resolveTime(phrase)
	}
	return now.Format("15:04")
}

func symptomFields(p slots.Params, _ UserContext, now time.Time) (records.Fields, error) {
	f := records.Fields{
		"symptom": p.Text(catalog.SlotSymptom),
		"date":    resolveDate(p.Text(catalog.SlotDate), now),
	}
	setText(f, "severity", p, catalog.SlotSeverity)
	return f, nil
}

func medicineFields(p slots.Params, _ UserContext, now time.Time) (records.Fields, error) {
	f := records.Fields{
		"name": p.Text(catalog.SlotMedicine),
		"date": now.Format(extract.DateLayout),
		"time": clockOrNow(p, now),
	}
	setText(f, "dosage", p, catalog.SlotDosage)
	setText(f, "frequency", p, catalog.SlotFrequency)
	return f, nil
}

func dischargeFields(p slots.Params, _ UserContext, now time.Time) (records.Fields, error) {
	f := records.Fields{
		"color": p.Text(catalog.SlotColor),
		"date":  resolveDate(p.Text(catalog.SlotDate), now),
	}
	setText(f, "consistency", p, catalog.SlotConsistency)
	setText(f, "amount", p, catalog.SlotAmount)
	return f, nil
}

func moodFields(p slots.Params, _ UserContext, now time.Time) (records.Fields, error) {
	return records.Fields{
		"mood": p.Text(catalog.SlotMood),
		"date": resolveDate(p.Text(catalog.SlotDate), now),
	}, nil
}

func sleepFields(p slots.Params, _ UserContext, now time.Time) (records.Fields, error) {
	h, _ := p.Decimal(catalog.SlotHours)
	f := records.Fields{
		"hours": h,
		"date":  resolveDate(p.Text(catalog.SlotDate), now),
	}
	setText(f, "quality", p, catalog.SlotQuality)
	return f, nil
}

func appointmentFields(p slots.Params, _ UserContext, now time.Time) (records.Fields, error) {
	return records.Fields{
		"title":    p.Text(catalog.SlotTitle),
		"date":     resolveDate(p.Text(catalog.SlotDate), now),
		"time":     resolveTime(p.Text(catalog.SlotTime)),
		"location": p.Text(catalog.SlotLocation),
	}, nil
}

func taskFields(p slots.Params, _ UserContext, now time.Time) (records.Fields, error) {
	f := records.Fields{
		"title": p.Text(catalog.SlotTask),
		"done":  false,
	}
	if phrase := p.Text(catalog.SlotDueDate); phrase != "" {
		f["due_date"] = resolveDate(phrase, now)
	}
	return f, nil
}

func number(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// label is the singular user-facing name of a category.
func label(cat records.Category) string {
	return strings.ReplaceAll(string(cat), "_", " ")
}

func plural(cat records.Category) string {
	switch cat {
	case records.Sleep:
		return "sleep entries"
	case records.Weight, records.Mood, records.BloodPressure:
		return label(cat) + " entries"
	case records.Discharge:
		return "discharge entries"
	}
	return label(cat) + "s"
}

// Summarize renders the values of a record in one line.
func Summarize(r records.Record) string {
	f := r.Fields
	var s string
	switch r.Category {
	case records.Weight:
		kg, _ := f.Float("weight_kg")
		s = number(kg) + " kg"
		if w, ok := f.Int("week_number"); ok {
			s += fmt.Sprintf(", week %d", w)
		}
	case records.BloodPressure:
		sys, _ := f.Int("systolic")
		dia, _ := f.Int("diastolic")
		s = fmt.Sprintf("%d/%d", sys, dia)
	case records.Symptom:
		s = f.String("symptom")
		if sev := f.String("severity"); sev != "" {
			s += " (" + sev + ")"
		}
	case records.Medicine:
		s = joinNonEmpty(" ", f.String("name"), f.String("dosage"), f.String("frequency"))
	case records.Discharge:
		s = joinNonEmpty(", ", f.String("color"), f.String("consistency"), f.String("amount"))
	case records.Mood:
		s = f.String("mood")
	case records.Sleep:
		h, _ := f.Float("hours")
		s = number(h) + " hours"
		if q := f.String("quality"); q != "" {
			s += ", " + q
		}
	case records.Appointment, records.Task:
		return match.Describe(r)
	default:
		s = r.Title()
	}
	if d := r.Date(); d != "" {
		s += " on " + d
	}
	return s
}

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

// created is the confirmation for a new record.
func created(r records.Record) string {
	f := r.Fields
	switch r.Category {
	case records.Weight:
		kg, _ := f.Float("weight_kg")
		if w, ok := f.Int("week_number"); ok {
			return fmt.Sprintf("Logged weight %s kg for week %d.", number(kg), w)
		}
		return fmt.Sprintf("Logged weight %s kg on %s.", number(kg), r.Date())
	case records.BloodPressure:
		return fmt.Sprintf("Logged blood pressure %s at %s.", Summarize(r), r.Time())
	case records.Appointment:
		return fmt.Sprintf("Booked %s on %s at %s at %s.",
			f.String("title"), r.Date(), r.Time(), f.String("location"))
	case records.Task:
		if due := r.Date(); due != "" {
			return fmt.Sprintf("Added task %q due %s.", f.String("title"), due)
		}
		return fmt.Sprintf("Added task %q.", f.String("title"))
	case records.Medicine:
		return fmt.Sprintf("Logged medicine %s at %s.", Summarize(r), r.Time())
	}
	return fmt.Sprintf("Logged %s: %s.", label(r.Category), Summarize(r))
}

// changed is the confirmation for an updated record.
func changed(r records.Record) string {
	if r.Category == records.Task {
		return fmt.Sprintf("Marked task %q as done.", r.Title())
	}
	return fmt.Sprintf("Moved %s to %s at %s.", r.Title(), r.Date(), r.Time())
}
