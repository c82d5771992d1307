package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/carelog/internal/records"
)

// DefaultNow is the clock used by scenarios that omit now. It is a
// Saturday afternoon.
var DefaultNow = time.Date(2026, 10, 17, 15, 4, 0, 0, time.UTC)

// Scenario defines a scripted conversation and its expected outcome.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Now is the RFC 3339 time the clock is frozen at.
	Now string `yaml:"now,omitempty"`

	// CurrentWeek is the pregnancy week passed with every turn.
	// Defaults to 1.
	CurrentWeek int64 `yaml:"current_week,omitempty"`

	// Catalog is an optional CUE intent catalog, relative to the scenario
	// file. The built-in catalog is used when empty.
	Catalog string `yaml:"catalog,omitempty"`

	// Setup lists records stored before the first turn.
	Setup []SetupRecord `yaml:"setup,omitempty"`

	// Turns are replayed in order through one session.
	Turns []Turn `yaml:"turns"`

	// Assertions validate the final state.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// SetupRecord is a record created before the conversation starts.
type SetupRecord struct {
	Category string         `yaml:"category"`
	Fields   map[string]any `yaml:"fields"`
}

// Turn is one user action: an utterance or an explicit undo.
type Turn struct {
	Say    string        `yaml:"say,omitempty"`
	Undo   bool          `yaml:"undo,omitempty"`
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause lists the result properties a turn must have. Unset fields
// are not checked.
type ExpectClause struct {
	Success           *bool    `yaml:"success,omitempty"`
	Intent            string   `yaml:"intent,omitempty"`
	Action            string   `yaml:"action,omitempty"`
	Screen            string   `yaml:"screen,omitempty"`
	RequiresFollowUp  *bool    `yaml:"requires_follow_up,omitempty"`
	RequiresSelection *bool    `yaml:"requires_selection,omitempty"`
	Missing           []string `yaml:"missing,omitempty"`
	Message           string   `yaml:"message,omitempty"`
	MessageContains   string   `yaml:"message_contains,omitempty"`
}

// Assertion validates the final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Category is the record category (record_count, record_exists).
	Category string `yaml:"category,omitempty"`

	// Count is the expected number of records (record_count).
	Count int `yaml:"count,omitempty"`

	// Where lists field values a record must have (record_exists).
	Where map[string]any `yaml:"where,omitempty"`
}

// Assertion type constants.
const (
	AssertRecordCount  = "record_count"
	AssertRecordExists = "record_exists"
	AssertNoPending    = "no_pending"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A relative catalog path is resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Catalog != "" && !filepath.IsAbs(scenario.Catalog) {
		scenario.Catalog = filepath.Join(filepath.Dir(path), scenario.Catalog)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// clock returns the scenario's frozen time.
func (s *Scenario) clock() (time.Time, error) {
	if s.Now == "" {
		return DefaultNow, nil
	}
	t, err := time.Parse(time.RFC3339, s.Now)
	if err != nil {
		return time.Time{}, fmt.Errorf("now: %w", err)
	}
	return t, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if _, err := s.clock(); err != nil {
		return err
	}

	if s.CurrentWeek < 0 {
		return fmt.Errorf("current_week must be non-negative")
	}

	if s.Catalog != "" {
		if _, err := os.Stat(s.Catalog); os.IsNotExist(err) {
			return fmt.Errorf("catalog file not found: %s", s.Catalog)
		}
	}

	if len(s.Turns) == 0 {
		return fmt.Errorf("turns list is required and must be non-empty")
	}

	for i, rec := range s.Setup {
		if _, err := records.ParseCategory(rec.Category); err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
		if len(rec.Fields) == 0 {
			return fmt.Errorf("setup[%d]: fields is required", i)
		}
	}

	for i, turn := range s.Turns {
		if (strings.TrimSpace(turn.Say) == "") == !turn.Undo {
			return fmt.Errorf("turns[%d]: exactly one of say or undo is required", i)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertRecordCount:
		if _, err := records.ParseCategory(a.Category); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for record_count", index)
		}
	case AssertRecordExists:
		if _, err := records.ParseCategory(a.Category); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
		if len(a.Where) == 0 {
			return fmt.Errorf("assertions[%d]: where is required for record_exists", index)
		}
	case AssertNoPending:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

// FindScenarios returns the YAML files under dir, optionally filtered by a
// glob matched against the file name without extension.
func FindScenarios(dir, filter string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})

	return files, err
}
