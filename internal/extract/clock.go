package extract

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/roach88/carelog/internal/textnorm"
)

// DefaultTime is used when a time phrase is missing or not understood.
const DefaultTime = "09:00"

var partsOfDay = map[string]string{
	"noon":      "12:00",
	"midday":    "12:00",
	"midnight":  "00:00",
	"morning":   "09:00",
	"afternoon": "14:00",
	"evening":   "18:00",
	"night":     "21:00",
}

var timeRules = Rules[string]{
	{
		Name:    "clock_meridiem",
		Pattern: regexp.MustCompile(`\b(\d{1,2}):(\d{2}) ?(am|pm)\b`),
		Build: func(m []string) (string, bool) {
			return clock12(m[1], m[2], m[3])
		},
	},
	{
		Name:    "clock_24h",
		Pattern: regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`),
		Build: func(m []string) (string, bool) {
			h, ok := intInRange(m[1], 0, 23)
			if !ok {
				return "", false
			}
			mi, ok := intInRange(m[2], 0, 59)
			if !ok {
				return "", false
			}
			return fmt.Sprintf("%02d:%02d", h, mi), true
		},
	},
	{
		Name:    "hour_meridiem",
		Pattern: regexp.MustCompile(`\b(\d{1,2}) ?(am|pm)\b`),
		Build: func(m []string) (string, bool) {
			return clock12(m[1], "00", m[2])
		},
	},
	{
		Name:    "oclock",
		Pattern: regexp.MustCompile(`\b(\d{1,2}) ?o'?clock\b`),
		Build: func(m []string) (string, bool) {
			h, ok := intInRange(m[1], 1, 12)
			if !ok {
				return "", false
			}
			// Appointments are daytime events; 1-7 o'clock reads as afternoon.
			if h < 8 {
				h += 12
			}
			return fmt.Sprintf("%02d:00", h), true
		},
	},
	{
		Name:    "part_of_day",
		Pattern: regexp.MustCompile(`\b(noon|midday|midnight|morning|afternoon|evening|night)\b`),
		Build:   group(1),
	},
}

// Time extracts the first time-of-day phrase. Clock times come back in
// canonical HH:MM form; parts of the day ("evening") come back as words.
func Time(text string) (string, bool) {
	return timeRules.First(textnorm.Normalize(text))
}

// ResolveTime converts a time phrase into canonical HH:MM. Empty or
// unrecognized phrases resolve to DefaultTime.
func ResolveTime(phrase string) string {
	p := textnorm.Normalize(phrase)
	if v, ok := partsOfDay[p]; ok {
		return v
	}
	if v, ok := timeRules.First(p); ok {
		if pd, ok := partsOfDay[v]; ok {
			return pd
		}
		return v
	}
	return DefaultTime
}

func clock12(hour, minute, meridiem string) (string, bool) {
	h, ok := intInRange(hour, 1, 12)
	if !ok {
		return "", false
	}
	mi, err := strconv.Atoi(minute)
	if err != nil || mi < 0 || mi > 59 {
		return "", false
	}
	pm := meridiem == "pm"
	switch {
	case pm && h != 12:
		h += 12
	case !pm && h == 12:
		h = 0
	}
	return fmt.Sprintf("%02d:%02d", h, mi), true
}
