// Package slots fills an intent's parameter set from an utterance.
//
// Each slot name has exactly one extractor. Extract runs the extractors for
// the slots an intent declares and keeps only the values found; Missing
// reports which required slots are still absent.
package slots

import (
	"slices"
	"strings"

	"github.com/roach88/carelog/internal/catalog"
	"github.com/roach88/carelog/internal/extract"
	"github.com/roach88/carelog/internal/textnorm"
)

type extractor func(text string) (Value, bool)

func text(f func(string) (string, bool)) extractor {
	return func(s string) (Value, bool) {
		v, ok := f(s)
		return Text(v), ok
	}
}

func vocab(v extract.Vocab) extractor {
	return text(v.Match)
}

func integer(f func(string) (int64, bool)) extractor {
	return func(s string) (Value, bool) {
		v, ok := f(s)
		return Int(v), ok
	}
}

func decimal(f func(string) (float64, bool)) extractor {
	return func(s string) (Value, bool) {
		v, ok := f(s)
		return Decimal(v), ok
	}
}

func date(s string) (Value, bool) {
	v, ok := extract.Date(s)
	return DateRef(v), ok
}

func clock(s string) (Value, bool) {
	v, ok := extract.Time(s)
	return TimeRef(v), ok
}

var extractors = map[string]extractor{
	catalog.SlotWeight:      decimal(extract.WeightKg),
	catalog.SlotWeekNumber:  integer(extract.WeekNumber),
	catalog.SlotDate:        date,
	catalog.SlotTime:        clock,
	catalog.SlotSystolic:    integer(extract.Systolic),
	catalog.SlotDiastolic:   integer(extract.Diastolic),
	catalog.SlotSymptom:     vocab(extract.Symptoms),
	catalog.SlotSeverity:    vocab(extract.Severities),
	catalog.SlotMedicine:    vocab(extract.Medicines),
	catalog.SlotDosage:      text(extract.Dosage),
	catalog.SlotFrequency:   vocab(extract.Frequencies),
	catalog.SlotColor:       vocab(extract.DischargeColors),
	catalog.SlotConsistency: vocab(extract.DischargeConsistencies),
	catalog.SlotAmount:      vocab(extract.DischargeAmounts),
	catalog.SlotMood:        vocab(extract.Moods),
	catalog.SlotHours:       decimal(extract.SleepHours),
	catalog.SlotQuality:     vocab(extract.SleepQualities),
	catalog.SlotTitle:       text(extract.AppointmentTitle),
	catalog.SlotLocation:    text(extract.Location),
	catalog.SlotNewDate:     date,
	catalog.SlotNewTime:     clock,
	catalog.SlotReference:   vocab(extract.References),
	catalog.SlotTask:        text(extract.TaskTitle),
	catalog.SlotDueDate:     date,
	catalog.SlotCategory:    vocab(extract.Categories),
	catalog.SlotScreen:      vocab(extract.Screens),
}

// targetSlots are read from the part of an update utterance after " to ";
// every other slot of such an intent is read from the part before it.
var targetSlots = map[string]bool{
	catalog.SlotNewDate: true,
	catalog.SlotNewTime: true,
}

// oldSlots describe the record being changed and are skipped when an update
// utterance has no " to " separator, so one date is not read twice.
var oldSlots = map[string]bool{
	catalog.SlotDate: true,
	catalog.SlotTime: true,
}

// Extract runs the extractor of every slot def declares against utterance
// and returns the values found.
//
// For intents with new_date/new_time slots the utterance is split on the
// first " to ": the record description comes from the left part and the
// new values from the right ("move my checkup on friday to monday").
func Extract(utterance string, def catalog.Definition) Params {
	norm := textnorm.Normalize(utterance)
	before, after, split := norm, norm, false
	update := def.HasSlot(catalog.SlotNewDate) || def.HasSlot(catalog.SlotNewTime)
	if update {
		if b, a, ok := strings.Cut(norm, " to "); ok {
			before, after, split = b, a, true
		}
	}

	p := Params{}
	for _, slot := range def.Slots() {
		src := before
		switch {
		case targetSlots[slot]:
			src = after
		case update && !split && oldSlots[slot]:
			continue
		}
		if v, ok := ExtractSlot(slot, src); ok {
			p.Set(slot, v)
		}
	}
	return p
}

// ExtractSlot runs one slot's extractor.
func ExtractSlot(slot, text string) (Value, bool) {
	ex, ok := extractors[slot]
	if !ok {
		return nil, false
	}
	v, ok := ex(text)
	if !ok || v.IsEmpty() {
		return nil, false
	}
	return v, true
}

// Missing returns def.Required minus the slots present in p, in catalog
// order. It does not modify p.
func Missing(p Params, def catalog.Definition) []string {
	var out []string
	for _, slot := range def.Required {
		if !p.Has(slot) {
			out = append(out, slot)
		}
	}
	return out
}

// freeTextSlots accept a whole follow-up reply as their value.
var freeTextSlots = []string{catalog.SlotTitle, catalog.SlotLocation, catalog.SlotTask}

// partialSlots report when their extractor kept only part of a reply that
// answers the slot directly.
var partialSlots = map[string]func(string) bool{
	catalog.SlotTitle: extract.AppointmentTitleIsKind,
}

// Partial reports whether slot's extractor reads only a fragment of text,
// so a direct answer should be taken whole with BareAnswer instead.
func Partial(slot, text string) bool {
	f, ok := partialSlots[slot]
	return ok && f(text)
}

type numericRange struct {
	integral bool
	lo, hi   float64
}

// numericSlots accept a reply that is only a number.
var numericSlots = map[string]numericRange{
	catalog.SlotWeight:     {lo: 20, hi: 300},
	catalog.SlotWeekNumber: {integral: true, lo: 1, hi: 45},
	catalog.SlotSystolic:   {integral: true, lo: 60, hi: 260},
	catalog.SlotDiastolic:  {integral: true, lo: 30, hi: 160},
	catalog.SlotHours:      {lo: 0, hi: 24},
}

// BareAnswer interprets a follow-up reply that the slot's extractor did not
// understand as a direct answer to the question for slot: free-text slots
// take the whole reply and numeric slots take a lone in-range number.
func BareAnswer(utterance, slot string) (Value, bool) {
	if slices.Contains(freeTextSlots, slot) {
		s := textnorm.Words(utterance)
		if s == "" {
			return nil, false
		}
		return Text(s), true
	}
	r, ok := numericSlots[slot]
	if !ok {
		return nil, false
	}
	n, ok := extract.Number(utterance)
	if !ok || n < r.lo || n > r.hi {
		return nil, false
	}
	if r.integral {
		if n != float64(int64(n)) {
			return nil, false
		}
		return Int(int64(n)), true
	}
	return Decimal(n), true
}
