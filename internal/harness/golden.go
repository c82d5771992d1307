package harness

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RenderTranscript formats a transcript as plain text for golden
// comparison. Confidence scores are left out so catalog tuning does not
// churn every golden file.
func RenderTranscript(name string, transcript []Exchange) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "scenario: %s\n", name)

	for _, ex := range transcript {
		res := ex.Result
		fmt.Fprintf(&buf, "\nturn %d\n", ex.Turn)
		if ex.Undo {
			buf.WriteString("  undo\n")
		} else {
			fmt.Fprintf(&buf, "  say: %s\n", ex.Say)
		}
		if res.Intent != "" {
			fmt.Fprintf(&buf, "  intent: %s\n", res.Intent)
		}
		fmt.Fprintf(&buf, "  success: %t\n", res.Success)
		if len(res.MissingFields) > 0 {
			fmt.Fprintf(&buf, "  missing: %s\n", strings.Join(res.MissingFields, ", "))
		}
		if len(res.Candidates) > 0 {
			fmt.Fprintf(&buf, "  candidates: %d\n", len(res.Candidates))
		}
		if res.Screen != "" {
			fmt.Fprintf(&buf, "  screen: %s\n", res.Screen)
		}
		for i, line := range strings.Split(res.Message, "\n") {
			if i == 0 {
				fmt.Fprintf(&buf, "  message: %s\n", line)
				continue
			}
			fmt.Fprintf(&buf, "    %s\n", line)
		}
	}
	return buf.Bytes()
}

// RunWithGolden executes a scenario and compares its transcript against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the transcript doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares an already computed result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, RenderTranscript(name, result.Transcript))
}
