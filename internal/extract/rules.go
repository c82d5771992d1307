// Package extract implements the slot extractors: pure, total functions that
// map raw utterance text to a typed value or report it absent.
//
// Extractors are built from ordered rule lists. Rules are tried top to bottom
// and the first rule that both matches and builds a valid value wins, so more
// specific patterns sit above generic ones. Rule lists are slices on purpose:
// reordering them changes observable behavior.
//
// Every exported extractor normalizes its input with textnorm.Normalize, so
// callers may pass raw user text.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/roach88/carelog/internal/textnorm"
)

// Rule is one entry in an ordered extraction list.
type Rule[T any] struct {
	// Name identifies the rule in tests and debug output.
	Name string

	// Pattern is matched against normalized text. Non-overlapping matches
	// are tried left to right until one builds.
	Pattern *regexp.Regexp

	// Build converts the submatches into a value. Returning false rejects
	// the match (e.g. an out-of-range number); the next match of the same
	// pattern is tried, then the next rule.
	Build func(m []string) (T, bool)
}

// Rules is an ordered rule list. First match wins.
type Rules[T any] []Rule[T]

// First runs the rules in order against text and returns the first built value.
func (rs Rules[T]) First(text string) (T, bool) {
	_, v, ok := rs.Match(text)
	return v, ok
}

// Match is First plus the name of the winning rule.
func (rs Rules[T]) Match(text string) (string, T, bool) {
	for _, r := range rs {
		for _, m := range r.Pattern.FindAllStringSubmatch(text, -1) {
			if v, ok := r.Build(m); ok {
				return r.Name, v, true
			}
		}
	}
	var zero T
	return "", zero, false
}

// Term is one closed-vocabulary entry: any of Phrases maps to Value.
type Term struct {
	Value   string
	Phrases []string
}

// Vocab is an ordered closed vocabulary. Multi-word phrases must precede
// the single words they contain ("back pain" before "pain").
type Vocab []Term

// Match returns the Value of the first term with a phrase occurring in text
// on token boundaries.
func (v Vocab) Match(text string) (string, bool) {
	words := " " + textnorm.Words(text) + " "
	for _, t := range v {
		for _, p := range t.Phrases {
			if strings.Contains(words, " "+p+" ") {
				return t.Value, true
			}
		}
	}
	return "", false
}

// Values lists the canonical values in vocabulary order.
func (v Vocab) Values() []string {
	out := make([]string, len(v))
	for i, t := range v {
		out[i] = t.Value
	}
	return out
}

func group(i int) func([]string) (string, bool) {
	return func(m []string) (string, bool) {
		s := strings.TrimSpace(m[i])
		return s, s != ""
	}
}

func intInRange(s string, lo, hi int64) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < lo || n > hi {
		return 0, false
	}
	return n, true
}

func floatInRange(s string, lo, hi float64) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < lo || f > hi {
		return 0, false
	}
	return f, true
}
