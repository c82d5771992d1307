package extract

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/roach88/carelog/internal/textnorm"
)

// DateLayout is the canonical calendar representation stored in records.
const DateLayout = "2006-01-02"

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var months = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sept": time.September, "sep": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

const (
	weekdayAlt = `monday|tuesday|wednesday|thursday|friday|saturday|sunday`
	monthAlt   = `january|february|march|april|may|june|july|august|september|october|november|december|` +
		`jan|feb|mar|apr|jun|jul|aug|sept|sep|oct|nov|dec`
)

// dateRules lists date phrasings from most to least specific. Values are
// canonical phrases: an ISO date when the text pins one down, otherwise a
// relative phrase that ResolveDate understands.
var dateRules = Rules[string]{
	{
		Name:    "iso",
		Pattern: regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`),
		Build: func(m []string) (string, bool) {
			return isoDate(m[1], m[2], m[3])
		},
	},
	{
		Name:    "us_numeric",
		Pattern: regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`),
		Build: func(m []string) (string, bool) {
			return isoDate(m[3], m[1], m[2])
		},
	},
	{
		Name:    "day_after_tomorrow",
		Pattern: regexp.MustCompile(`\bday after tomorrow\b`),
		Build:   constant("day after tomorrow"),
	},
	{
		Name:    "today",
		Pattern: regexp.MustCompile(`\b(?:today|tonight|this morning|this evening)\b`),
		Build:   constant("today"),
	},
	{
		Name:    "tomorrow",
		Pattern: regexp.MustCompile(`\btomorrow\b`),
		Build:   constant("tomorrow"),
	},
	{
		Name:    "yesterday",
		Pattern: regexp.MustCompile(`\b(?:yesterday|last night)\b`),
		Build:   constant("yesterday"),
	},
	{
		Name:    "next_week",
		Pattern: regexp.MustCompile(`\bnext week\b`),
		Build:   constant("next week"),
	},
	{
		Name:    "next_weekday",
		Pattern: regexp.MustCompile(`\bnext (` + weekdayAlt + `)\b`),
		Build: func(m []string) (string, bool) {
			return "next " + m[1], true
		},
	},
	{
		Name:    "weekday",
		Pattern: regexp.MustCompile(`\b(` + weekdayAlt + `)\b`),
		Build:   group(1),
	},
	{
		Name:    "month_day",
		Pattern: regexp.MustCompile(`\b(` + monthAlt + `)\.? (\d{1,2})(?:st|nd|rd|th)?(?:,? (\d{4}))?\b`),
		Build: func(m []string) (string, bool) {
			return monthDay(m[1], m[2], m[3])
		},
	},
	{
		Name:    "day_month",
		Pattern: regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)? (?:of )?(` + monthAlt + `)\b\.?(?:,? (\d{4}))?`),
		Build: func(m []string) (string, bool) {
			return monthDay(m[2], m[1], m[3])
		},
	},
}

// Date extracts the first date phrase from text.
func Date(text string) (string, bool) {
	return dateRules.First(textnorm.Normalize(text))
}

// ResolveDate converts a date phrase into a canonical YYYY-MM-DD date
// relative to now. Unrecognized or empty phrases resolve to today's date.
//
// A bare weekday means its next occurrence, today included; "next <weekday>"
// excludes today. A month and day without a year land in now's year.
func ResolveDate(phrase string, now time.Time) string {
	p := textnorm.Normalize(phrase)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if t, err := time.Parse(DateLayout, p); err == nil {
		return t.Format(DateLayout)
	}

	switch p {
	case "today":
		return today.Format(DateLayout)
	case "tomorrow":
		return today.AddDate(0, 0, 1).Format(DateLayout)
	case "day after tomorrow":
		return today.AddDate(0, 0, 2).Format(DateLayout)
	case "yesterday":
		return today.AddDate(0, 0, -1).Format(DateLayout)
	case "next week":
		return today.AddDate(0, 0, 7).Format(DateLayout)
	}

	if wd, next, ok := parseWeekday(p); ok {
		ahead := (int(wd) - int(today.Weekday()) + 7) % 7
		if ahead == 0 && next {
			ahead = 7
		}
		return today.AddDate(0, 0, ahead).Format(DateLayout)
	}

	if fields := strings.Fields(p); len(fields) == 2 {
		if mo, ok := months[fields[0]]; ok {
			if d, ok := intInRange(fields[1], 1, 31); ok {
				t := time.Date(today.Year(), mo, int(d), 0, 0, 0, 0, now.Location())
				if t.Month() == mo {
					return t.Format(DateLayout)
				}
			}
		}
	}

	return today.Format(DateLayout)
}

// Weekday reports the weekday named by a phrase such as "friday" or
// "next friday".
func Weekday(phrase string) (time.Weekday, bool) {
	wd, _, ok := parseWeekday(textnorm.Normalize(phrase))
	return wd, ok
}

func parseWeekday(p string) (wd time.Weekday, next bool, ok bool) {
	if rest, found := strings.CutPrefix(p, "next "); found {
		p, next = rest, true
	}
	wd, ok = weekdays[p]
	return wd, next, ok
}

func isoDate(y, m, d string) (string, bool) {
	year, ok := intInRange(y, 1900, 2200)
	if !ok {
		return "", false
	}
	mo, ok := intInRange(m, 1, 12)
	if !ok {
		return "", false
	}
	day, ok := intInRange(d, 1, 31)
	if !ok {
		return "", false
	}
	t := time.Date(int(year), time.Month(mo), int(day), 0, 0, 0, 0, time.UTC)
	if t.Day() != int(day) {
		return "", false
	}
	return t.Format(DateLayout), true
}

// monthDay builds an ISO date when the year is known, otherwise the
// "<month> <day>" phrase ResolveDate completes with the current year.
func monthDay(month, day, year string) (string, bool) {
	mo, ok := months[month]
	if !ok {
		return "", false
	}
	d, ok := intInRange(day, 1, 31)
	if !ok {
		return "", false
	}
	if year != "" {
		return isoDate(year, fmt.Sprint(int(mo)), day)
	}
	// 2024 is a leap year, so Feb 29 survives the check.
	if t := time.Date(2024, mo, int(d), 0, 0, 0, 0, time.UTC); t.Month() != mo {
		return "", false
	}
	return fmt.Sprintf("%s %d", strings.ToLower(mo.String()), d), true
}

func constant(v string) func([]string) (string, bool) {
	return func([]string) (string, bool) { return v, true }
}
