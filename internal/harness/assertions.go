package harness

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/roach88/carelog/internal/records"
)

// AssertionError is returned when an assertion fails.
// It includes the final records of the category to help debug the failure.
type AssertionError struct {
	Type     string           // Assertion type for categorization
	Expected string           // Human-readable expected outcome
	Actual   string           // Human-readable actual outcome
	Records  []records.Record // Records of the asserted category
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Records) > 0 {
		fmt.Fprintf(&buf, "\nRecords:\n")
		for _, r := range e.Records {
			fmt.Fprintf(&buf, "  [%d] %s\n", r.ID, formatFields(r.Fields))
		}
	}

	return buf.String()
}

// AssertionContext provides the final state for evaluating assertions.
type AssertionContext struct {
	Records map[records.Category][]records.Record
	Pending bool
}

// assertRecordCount checks the number of records in a category.
func assertRecordCount(actx *AssertionContext, a Assertion) error {
	recs := actx.Records[records.Category(a.Category)]
	if len(recs) == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertRecordCount,
		Expected: fmt.Sprintf("%d %s record(s)", a.Count, a.Category),
		Actual:   fmt.Sprintf("%d record(s)", len(recs)),
		Records:  recs,
	}
}

// assertRecordExists checks that some record has every field in Where.
func assertRecordExists(actx *AssertionContext, a Assertion) error {
	recs := actx.Records[records.Category(a.Category)]
	for _, r := range recs {
		if matchFields(r.Fields, a.Where) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertRecordExists,
		Expected: fmt.Sprintf("%s record with %s", a.Category, formatFields(a.Where)),
		Actual:   "not found",
		Records:  recs,
	}
}

// matchFields checks if actual contains all expected fields (subset match).
func matchFields(actual records.Fields, expected map[string]any) bool {
	for key, want := range expected {
		got, ok := actual[key]
		if !ok || !valuesEqual(got, normalizeValue(want)) {
			return false
		}
	}
	return true
}

// valuesEqual compares field values. Numbers compare by value whatever
// their Go type, so 65 in a scenario matches a stored 65.0. Text compares
// case-insensitively since extracted titles are normalized.
func valuesEqual(actual, expected any) bool {
	if af, ok := number(actual); ok {
		ef, ok := number(expected)
		return ok && af == ef
	}
	if as, ok := actual.(string); ok {
		es, ok := expected.(string)
		return ok && strings.EqualFold(as, es)
	}
	return reflect.DeepEqual(actual, expected)
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// formatFields renders a field map with sorted keys.
func formatFields[M ~map[string]any](m M) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, m[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// EvaluateAssertions evaluates all assertions against the final state.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertRecordCount:
			err = assertRecordCount(actx, assertion)
		case AssertRecordExists:
			err = assertRecordExists(actx, assertion)
		case AssertNoPending:
			if actx.Pending {
				err = &AssertionError{
					Type:     AssertNoPending,
					Expected: "no pending follow-up",
					Actual:   "a follow-up is still waiting for an answer",
				}
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
