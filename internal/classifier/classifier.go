// Package classifier maps an utterance to the best-matching catalog intent.
//
// Classification is deterministic. Priority overrides are checked first and
// resolve with confidence 1.0. Otherwise every intent is scored:
//
//	score = (2 * keywordHits + sum(similarity(utterance, example))) / (len(keywords) + len(examples))
//
// where similarity is the number of shared tokens, each occurrence matched
// at most once, divided by the larger token count of the two. The highest
// score wins and ties keep the intent that appears first in the catalog. A
// best score under Floor yields the general conversation fallback with
// confidence 0.
package classifier

import (
	"io"
	"log/slog"

	"github.com/roach88/carelog/internal/catalog"
	"github.com/roach88/carelog/internal/extract"
	"github.com/roach88/carelog/internal/textnorm"
)

// Floor is the minimum score for a scored (non-override) match.
const Floor = 0.1

// Result is the outcome of classifying one utterance.
type Result struct {
	Intent     string             `json:"intent"`
	Definition catalog.Definition `json:"-"`
	Confidence float64            `json:"confidence"`
	// Override is set when a priority override decided the result.
	Override bool `json:"override,omitempty"`
}

// IsFallback reports whether the utterance fell through to general
// conversation.
func (r Result) IsFallback() bool {
	return r.Definition.IsFallback()
}

// Score is one intent's raw score, exposed for debugging.
type Score struct {
	Intent string  `json:"intent"`
	Score  float64 `json:"score"`
}

type scoredIntent struct {
	def      catalog.Definition
	keywords []string
	examples [][]string
}

// Classifier scores utterances against a catalog. It is immutable after
// construction and safe for concurrent use.
type Classifier struct {
	cat     *catalog.Catalog
	intents []scoredIntent
	logger  *slog.Logger
}

// New prepares a classifier for cat. A nil logger discards output.
func New(cat *catalog.Catalog, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	c := &Classifier{cat: cat, logger: logger}
	for _, d := range cat.Intents() {
		si := scoredIntent{def: d, keywords: d.Keywords}
		for _, ex := range d.Examples {
			si.examples = append(si.examples, textnorm.Tokens(ex))
		}
		c.intents = append(c.intents, si)
	}
	return c
}

// Catalog returns the catalog the classifier was built from.
func (c *Classifier) Catalog() *catalog.Catalog {
	return c.cat
}

// Classify returns the best intent for utterance. It never fails: empty or
// unmatched input resolves to the fallback intent.
func (c *Classifier) Classify(utterance string) Result {
	text := textnorm.Normalize(utterance)
	if text == "" {
		return fallback()
	}

	if r, ok := c.override(text); ok {
		c.logger.Debug("classified by override", "intent", r.Intent)
		return r
	}

	tokens := textnorm.Tokens(text)
	best, bestScore := -1, 0.0
	for i := range c.intents {
		s := c.intents[i].score(text, tokens)
		if best < 0 || s > bestScore {
			best, bestScore = i, s
		}
	}

	if best < 0 || bestScore < Floor {
		c.logger.Debug("classified as fallback", "best_score", bestScore)
		return fallback()
	}

	r := Result{
		Intent:     c.intents[best].def.Name,
		Definition: c.intents[best].def,
		Confidence: min(bestScore, 1),
	}
	c.logger.Debug("classified", "intent", r.Intent, "confidence", r.Confidence)
	return r
}

// Scores returns the raw score of every intent in catalog order, ignoring
// overrides.
func (c *Classifier) Scores(utterance string) []Score {
	text := textnorm.Normalize(utterance)
	tokens := textnorm.Tokens(text)
	out := make([]Score, len(c.intents))
	for i := range c.intents {
		out[i] = Score{Intent: c.intents[i].def.Name, Score: c.intents[i].score(text, tokens)}
	}
	return out
}

func (c *Classifier) override(text string) (Result, bool) {
	for _, o := range c.cat.Overrides() {
		if !containsAny(text, o.Terms) {
			continue
		}
		if o.RequireCategory {
			if _, ok := extract.Categories.Match(text); !ok {
				continue
			}
		}
		def, err := c.cat.Find(o.Intent)
		if err != nil {
			continue
		}
		return Result{Intent: def.Name, Definition: def, Confidence: 1, Override: true}, true
	}
	return Result{}, false
}

func (si *scoredIntent) score(text string, tokens []string) float64 {
	n := len(si.keywords) + len(si.examples)
	if n == 0 {
		return 0
	}
	var total float64
	for _, kw := range si.keywords {
		if textnorm.ContainsPhrase(text, kw) {
			total += 2
		}
	}
	for _, ex := range si.examples {
		total += similarity(tokens, ex)
	}
	return total / float64(n)
}

// similarity is the shared token count over max(len(a), len(b)). A token
// repeated in both lists counts as often as it occurs in the shorter run.
func similarity(a, b []string) float64 {
	longest := max(len(a), len(b))
	if longest == 0 {
		return 0
	}
	inB := make(map[string]int, len(b))
	for _, t := range b {
		inB[t]++
	}
	shared := 0
	for _, t := range a {
		if inB[t] > 0 {
			inB[t]--
			shared++
		}
	}
	return float64(shared) / float64(longest)
}

func containsAny(text string, terms []string) bool {
	for _, t := range terms {
		if textnorm.ContainsPhrase(text, t) {
			return true
		}
	}
	return false
}

func fallback() Result {
	return Result{Intent: catalog.FallbackName, Definition: catalog.Fallback()}
}
