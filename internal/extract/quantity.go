package extract

import (
	"math"
	"regexp"
	"strconv"

	"github.com/roach88/carelog/internal/textnorm"
)

const poundsToKg = 0.45359237

var weightRules = Rules[float64]{
	{
		Name:    "kilograms",
		Pattern: regexp.MustCompile(`\b(\d+(?:\.\d+)?) ?(?:kg|kgs|kilograms?|kilos?)\b`),
		Build: func(m []string) (float64, bool) {
			return floatInRange(m[1], 20, 300)
		},
	},
	{
		Name:    "pounds",
		Pattern: regexp.MustCompile(`\b(\d+(?:\.\d+)?) ?(?:lbs?|pounds?)\b`),
		Build: func(m []string) (float64, bool) {
			lb, ok := floatInRange(m[1], 44, 660)
			if !ok {
				return 0, false
			}
			return math.Round(lb*poundsToKg*10) / 10, true
		},
	},
	{
		Name:    "weigh_verb",
		Pattern: regexp.MustCompile(`\bweigh(?:t|s|ed|ing)? (?:is |was |of )?(?:about |around )?(\d+(?:\.\d+)?)\b`),
		Build: func(m []string) (float64, bool) {
			return floatInRange(m[1], 20, 300)
		},
	},
}

// WeightKg extracts a body weight anchored to a unit suffix. Pounds are
// converted to kilograms rounded to one decimal. A bare number directly
// after "weight"/"weigh" is read as kilograms.
func WeightKg(text string) (float64, bool) {
	return weightRules.First(textnorm.Normalize(text))
}

var weekRules = Rules[int64]{
	{
		Name:    "week_n",
		Pattern: regexp.MustCompile(`\bweek (?:number |no\.? |#)?(\d{1,2})\b`),
		Build: func(m []string) (int64, bool) {
			return intInRange(m[1], 1, 45)
		},
	},
	{
		Name:    "nth_week",
		Pattern: regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)? weeks?\b`),
		Build: func(m []string) (int64, bool) {
			return intInRange(m[1], 1, 45)
		},
	},
}

// WeekNumber extracts a pregnancy week number ("week 12", "12th week").
func WeekNumber(text string) (int64, bool) {
	return weekRules.First(textnorm.Normalize(text))
}

// pressure is a blood-pressure pair; either side may be zero when only one
// reading was named.
type pressure struct {
	systolic, diastolic int64
}

var pressureRules = Rules[pressure]{
	{
		Name:    "slash",
		Pattern: regexp.MustCompile(`\b(\d{2,3}) ?/ ?(\d{2,3})\b`),
		Build:   pressurePair,
	},
	{
		Name:    "over",
		Pattern: regexp.MustCompile(`\b(\d{2,3}) over (\d{2,3})\b`),
		Build:   pressurePair,
	},
	{
		Name:    "systolic",
		Pattern: regexp.MustCompile(`\bsystolic (?:is |of |reading )?(\d{2,3})\b`),
		Build: func(m []string) (pressure, bool) {
			s, ok := intInRange(m[1], 60, 260)
			return pressure{systolic: s}, ok
		},
	},
	{
		Name:    "diastolic",
		Pattern: regexp.MustCompile(`\bdiastolic (?:is |of |reading )?(\d{2,3})\b`),
		Build: func(m []string) (pressure, bool) {
			d, ok := intInRange(m[1], 30, 160)
			return pressure{diastolic: d}, ok
		},
	},
}

func pressurePair(m []string) (pressure, bool) {
	s, ok := intInRange(m[1], 60, 260)
	if !ok {
		return pressure{}, false
	}
	d, ok := intInRange(m[2], 30, 160)
	if !ok {
		return pressure{}, false
	}
	return pressure{systolic: s, diastolic: d}, true
}

// Systolic extracts the systolic reading. When a reading names only the
// diastolic side, Systolic reports absent.
func Systolic(text string) (int64, bool) {
	return pressureSide(text, func(p pressure) int64 { return p.systolic })
}

// Diastolic extracts the diastolic reading.
func Diastolic(text string) (int64, bool) {
	return pressureSide(text, func(p pressure) int64 { return p.diastolic })
}

func pressureSide(text string, side func(pressure) int64) (int64, bool) {
	norm := textnorm.Normalize(text)
	for _, r := range pressureRules {
		for _, m := range r.Pattern.FindAllStringSubmatch(norm, -1) {
			if p, ok := r.Build(m); ok && side(p) != 0 {
				return side(p), true
			}
		}
	}
	return 0, false
}

var hoursRules = Rules[float64]{
	{
		Name:    "hours_unit",
		Pattern: regexp.MustCompile(`\b(\d+(?:\.\d+)?) ?(?:hours?|hrs?|h)\b`),
		Build: func(m []string) (float64, bool) {
			return floatInRange(m[1], 0, 24)
		},
	},
	{
		Name:    "slept_n",
		Pattern: regexp.MustCompile(`\bslept (?:for )?(?:about |around )?(\d+(?:\.\d+)?)\b`),
		Build: func(m []string) (float64, bool) {
			return floatInRange(m[1], 0, 24)
		},
	},
}

// SleepHours extracts a sleep duration in hours.
func SleepHours(text string) (float64, bool) {
	return hoursRules.First(textnorm.Normalize(text))
}

var dosageRules = Rules[string]{
	{
		Name:    "amount_unit",
		Pattern: regexp.MustCompile(`\b(\d+(?:\.\d+)?) ?(mg|mcg|g|ml|iu|units?)\b`),
		Build: func(m []string) (string, bool) {
			return m[1] + m[2], true
		},
	},
	{
		Name:    "count_tablets",
		Pattern: regexp.MustCompile(`\b(\d{1,2}) (tablets?|pills?|capsules?|drops?)\b`),
		Build: func(m []string) (string, bool) {
			return m[1] + " " + m[2], true
		},
	},
}

// Dosage extracts a dose with its unit ("400mg", "2 tablets").
func Dosage(text string) (string, bool) {
	return dosageRules.First(textnorm.Normalize(text))
}

var bareNumber = regexp.MustCompile(`^(\d+(?:\.\d+)?)$`)

// Number reports a reply that is nothing but a number, as in a follow-up
// answer "65".
func Number(text string) (float64, bool) {
	m := bareNumber.FindStringSubmatch(textnorm.Words(text))
	if m == nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(m[1], 64)
	return f, err == nil
}
