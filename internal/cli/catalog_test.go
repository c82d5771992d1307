package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyCommand(t *testing.T) {
	out, _, err := execute(t, "", "classify", "log", "weight", "65kg", "for", "week", "12")
	require.NoError(t, err)
	assert.Contains(t, out, "intent: log_weight\n")
	assert.Contains(t, out, "confidence: ")
	assert.NotContains(t, out, "scores:")
}

func TestClassifyCommandVerboseScores(t *testing.T) {
	out, _, err := execute(t, "", "--verbose", "classify", "there is heavy bleeding")
	require.NoError(t, err)
	assert.Contains(t, out, "intent: emergency\n")
	assert.Contains(t, out, "override: true\n")
	assert.Contains(t, out, "scores:\n")
}

func TestClassifyCommandJSON(t *testing.T) {
	out, _, err := execute(t, "", "--format", "json", "classify", "i weigh 68 kilograms")
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   ClassifyResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "log_weight", resp.Data.Result.Intent)
	assert.Positive(t, resp.Data.Result.Confidence)
}

func TestIntentsCommand(t *testing.T) {
	out, _, err := execute(t, "", "intents")
	require.NoError(t, err)
	assert.Contains(t, out, "INTENT")
	assert.Contains(t, out, "log_weight")
	assert.Contains(t, out, "create_appointment")
}

func TestIntentsCommandBadCatalog(t *testing.T) {
	_, _, err := execute(t, "", "--catalog", "/nonexistent/intents.cue", "intents")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load catalog")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
