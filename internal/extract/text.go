package extract

import (
	"regexp"
	"strings"

	"github.com/roach88/carelog/internal/textnorm"
)

// Words that never stand alone as a title.
var titleStopwords = map[string]bool{
	"": true, "a": true, "an": true, "the": true, "my": true, "new": true, "another": true,
	"it": true, "this": true, "that": true, "one": true, "task": true, "todo": true,
	"appointment": true, "an appointment": true,
	"first": true, "last": true, "latest": true, "earliest": true, "next": true,
}

var leadingArticle = regexp.MustCompile(`^(?:a|an|the|my|new|another) `)

// dateOnlyTitle matches titles that are really a date reference, as in
// "remove tomorrow's appointment".
var dateOnlyTitle = regexp.MustCompile(`^(?:today|tonight|tomorrow|yesterday|next week|(?:next |this )?(?:` +
	weekdayAlt + `))(?:'s)?$`)

const maxTitleLen = 80

// cleanTitle strips leading articles and rejects titles made only of
// filler words.
func cleanTitle(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for {
		t := leadingArticle.ReplaceAllString(s, "")
		if t == s {
			break
		}
		s = t
	}
	s = strings.Trim(s, " .,!?;:")
	if titleStopwords[s] || dateOnlyTitle.MatchString(s) || len(s) > maxTitleLen {
		return "", false
	}
	return s, true
}

func titleGroup(i int) func([]string) (string, bool) {
	return func(m []string) (string, bool) {
		return cleanTitle(m[i])
	}
}

var appointmentTitleRules = Rules[string]{
	{
		Name:    "with_whom",
		Pattern: regexp.MustCompile(`\b(?:appointment|visit) (?:with|for) (.+?)(?: (?:on|at|in|to|for|tomorrow|today|tonight|next|this)\b|$)`),
		Build:   titleGroup(1),
	},
	{
		Name:    "verb_title_appointment",
		Pattern: regexp.MustCompile(`\b(?:book|schedule|make|add|create|set up|delete|remove|cancel|reschedule|move|change|update) (.+?) appointment\b`),
		Build:   titleGroup(1),
	},
	{
		Name:    "kind",
		Pattern: regexp.MustCompile(`.+`),
		Build: func(m []string) (string, bool) {
			return AppointmentKinds.Match(m[0])
		},
	},
}

// AppointmentTitle extracts what an appointment is for: a named person
// ("with dr smith"), the words between the verb and "appointment", or a
// known visit kind.
func AppointmentTitle(text string) (string, bool) {
	return appointmentTitleRules.First(textnorm.Normalize(text))
}

// AppointmentTitleIsKind reports whether AppointmentTitle reads text only
// through the visit-kind vocabulary, so the title is one word picked out of
// a longer phrase.
func AppointmentTitleIsKind(text string) bool {
	rule, _, ok := appointmentTitleRules.Match(textnorm.Normalize(text))
	return ok && rule == "kind"
}

var placeSuffix = `(?:clinic|hospital|center|centre|office|practice|lab|laboratory|surgery|pharmacy|ward)`

var locationRules = Rules[string]{
	{
		Name:    "place_noun",
		Pattern: regexp.MustCompile(`\b(?:at|in) ((?:[a-z0-9'&.-]+ ){0,4}` + placeSuffix + `)\b`),
		Build:   lastPlace,
	},
	{
		Name:    "location_label",
		Pattern: regexp.MustCompile(`\blocation(?: is|:)? (.+)$`),
		Build:   titleGroup(1),
	},
}

// lastPlace keeps only the words after the last preposition so "at 3pm at
// city clinic" yields "city clinic".
func lastPlace(m []string) (string, bool) {
	words := strings.Fields(m[1])
	start := 0
	for i, w := range words {
		switch w {
		case "at", "in", "on", "the":
			start = i + 1
		}
	}
	return cleanTitle(strings.Join(words[start:], " "))
}

// Location extracts a place name ending in a facility noun ("city clinic",
// "st mary's hospital") or following an explicit "location" label.
func Location(text string) (string, bool) {
	return locationRules.First(textnorm.Normalize(text))
}

var trailingDate = regexp.MustCompile(`(?: (?:by|on|due|before|for))? (?:today|tonight|tomorrow|day after tomorrow|next week|next (?:` +
	weekdayAlt + `)|(?:` + weekdayAlt + `)|\d{4}-\d{1,2}-\d{1,2})$`)

func taskGroup(i int) func([]string) (string, bool) {
	return func(m []string) (string, bool) {
		s := strings.TrimSpace(m[i])
		for {
			t := trailingDate.ReplaceAllString(s, "")
			if t == s {
				break
			}
			s = t
		}
		return cleanTitle(s)
	}
}

var taskTitleRules = Rules[string]{
	{
		Name:    "remind_me",
		Pattern: regexp.MustCompile(`\bremind me to (.+)$`),
		Build:   taskGroup(1),
	},
	{
		Name:    "add_task",
		Pattern: regexp.MustCompile(`\b(?:add|create|new|make)(?: a| an| new)* (?:task|todo|to-do)(?: to| for|:)? (.+)$`),
		Build:   taskGroup(1),
	},
	{
		Name:    "task_label",
		Pattern: regexp.MustCompile(`\b(?:task|todo|to-do) ?: ?(.+)$`),
		Build:   taskGroup(1),
	},
	{
		Name: "act_on_task",
		Pattern: regexp.MustCompile(`\b(?:complete|completed|finish|finished|done with|mark|check off|tick off|delete|remove) ` +
			`(?:the )?(?:task |todo )?(.+?)(?: task| todo)?(?: as done| as complete| as completed| done| off)?$`),
		Build: taskGroup(1),
	},
}

// TaskTitle extracts the text of a to-do item. Trailing due-date phrases
// are stripped; the due date has its own extractor.
func TaskTitle(text string) (string, bool) {
	return taskTitleRules.First(textnorm.Normalize(text))
}
