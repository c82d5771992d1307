// Package textnorm provides the shared utterance normalization and
// tokenization used by the classifier, the slot filler, and the extractors.
//
// Every component that compares text against rule tables goes through
// Normalize first, so "Log Weight  65KG" and "log weight 65kg" are the same
// input everywhere.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases, trims, and collapses internal whitespace.
//
// NFKC normalization runs first so full-width digits and compatibility
// characters ("６５ｋｇ") match the ASCII patterns in the rule tables.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	// Casers carry state, so each call gets its own.
	s = cases.Fold().String(s)
	return strings.Join(strings.Fields(s), " ")
}

// Tokens splits normalized text on whitespace and strips punctuation that
// surrounds each token. Inner punctuation is kept ("120/80", "7.5", "10:30").
// Tokens that are pure punctuation are dropped.
func Tokens(s string) []string {
	fields := strings.Fields(Normalize(s))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		t := strings.TrimFunc(f, isEdgePunct)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Words returns the tokens joined by single spaces. Phrase matching is done
// against " " + Words(s) + " " so keywords only match on token boundaries.
func Words(s string) string {
	return strings.Join(Tokens(s), " ")
}

// ContainsPhrase reports whether phrase occurs in text on token boundaries.
// Both sides are tokenized, so "Blood Pressure!" contains "blood pressure"
// but "background" does not contain "kg".
func ContainsPhrase(text, phrase string) bool {
	p := Words(phrase)
	if p == "" {
		return false
	}
	return strings.Contains(" "+Words(text)+" ", " "+p+" ")
}

func isEdgePunct(r rune) bool {
	return unicode.IsPunct(r) && r != '#' || unicode.IsSymbol(r)
}
