package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/carelog/internal/records"
)

func TestDefault_Order(t *testing.T) {
	c := Default()

	var names []string
	for _, d := range c.Intents() {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{
		"log_weight", "log_blood_pressure", "log_symptom", "log_medicine", "log_discharge",
		"log_mood", "log_sleep", "create_appointment", "update_appointment", "delete_appointment",
		"create_task", "complete_task", "delete_task", "view_history", "view_analytics",
		"navigate", "logout", "emergency", "undo", "cancel",
	}, names)
}

func TestDefault_Overrides(t *testing.T) {
	ov := Default().Overrides()
	require.Len(t, ov, 3)
	assert.Equal(t, "emergency", ov[0].Intent)
	assert.Equal(t, "view_analytics", ov[1].Intent)
	assert.Equal(t, "view_history", ov[2].Intent)
	assert.True(t, ov[2].RequireCategory)
}

func TestFind(t *testing.T) {
	c := Default()

	d, err := c.Find("create_appointment")
	require.NoError(t, err)
	assert.Equal(t, ActionCreate, d.Action)
	assert.Equal(t, records.Appointment, d.Category)
	assert.Equal(t, []string{SlotTitle, SlotDate, SlotTime, SlotLocation}, d.Required)

	fb, err := c.Find(FallbackName)
	require.NoError(t, err)
	assert.True(t, fb.IsFallback())
	assert.Empty(t, fb.Required)
	assert.Empty(t, fb.Optional)

	_, err = c.Find("order_pizza")
	assert.ErrorIs(t, err, ErrUnknownIntent)
}

func TestDefinition_Slots(t *testing.T) {
	d, err := Default().Find("log_weight")
	require.NoError(t, err)

	assert.Equal(t, []string{SlotWeight, SlotWeekNumber, SlotDate}, d.Slots())
	assert.True(t, d.HasSlot(SlotWeekNumber))
	assert.False(t, d.HasSlot(SlotTitle))
}

func TestAction_Reversible(t *testing.T) {
	assert.True(t, ActionCreate.Reversible())
	assert.True(t, ActionUpdate.Reversible())
	assert.True(t, ActionDelete.Reversible())
	assert.False(t, ActionNavigate.Reversible())
	assert.False(t, ActionUndo.Reversible())
}

func TestNew_Rejects(t *testing.T) {
	valid := Definition{Name: "x", Keywords: []string{"x"}, Action: ActionView}

	tests := []struct {
		name      string
		intents   []Definition
		overrides []Override
	}{
		{"duplicate", []Definition{valid, valid}, nil},
		{"reserved", []Definition{{Name: FallbackName, Keywords: []string{"x"}, Action: ActionChat}}, nil},
		{"bad action", []Definition{{Name: "y", Keywords: []string{"y"}, Action: "fly"}}, nil},
		{"no keywords or examples", []Definition{{Name: "y", Action: ActionView}}, nil},
		{"unknown slot", []Definition{{Name: "y", Keywords: []string{"y"}, Action: ActionView, Required: []string{"shoe_size"}}}, nil},
		{"bad category", []Definition{{Name: "y", Keywords: []string{"y"}, Action: ActionCreate, Category: "pets"}}, nil},
		{"override unknown intent", []Definition{valid}, []Override{{Intent: "nope", Terms: []string{"a"}}}},
		{"override without terms", []Definition{valid}, []Override{{Intent: "x"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.intents, tt.overrides)
			assert.Error(t, err)
		})
	}
}

func TestQuestion(t *testing.T) {
	assert.Equal(t, "What time?", Question(SlotTime))
	assert.Equal(t, "Could you tell me the shoe_size?", Question("shoe_size"))
	assert.True(t, KnownSlot(SlotLocation))
	assert.False(t, KnownSlot("shoe_size"))
}

const sampleCUE = `
intent: log_weight: {
	keywords: ["weight", "kg"]
	examples: ["log weight 65kg"]
	action:   "create"
	category: "weight"
	required: ["weight"]
	optional: ["week_number"]
}
intent: say_hello: {
	keywords: ["hello"]
	action:   "chat"
}
override: [{intent: "say_hello", terms: ["good morning"]}]
`

func TestCompileCUE(t *testing.T) {
	c, err := CompileCUE([]byte(sampleCUE), "sample.cue")
	require.NoError(t, err)

	intents := c.Intents()
	require.Len(t, intents, 2)
	assert.Equal(t, "log_weight", intents[0].Name, "declaration order is kept")
	assert.Equal(t, "say_hello", intents[1].Name)
	assert.Equal(t, records.Weight, intents[0].Category)
	assert.Equal(t, []string{SlotWeight}, intents[0].Required)
	assert.Empty(t, intents[1].Required)

	require.Len(t, c.Overrides(), 1)
	assert.Equal(t, []string{"good morning"}, c.Overrides()[0].Terms)
}

func TestCompileCUE_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `intent: {`},
		{"bad action", `intent: x: {keywords: ["x"], action: "fly"}`},
		{"unknown top-level field", `intent: x: {keywords: ["x"], action: "view"}
colour: "red"`},
		{"empty override terms", `intent: x: {keywords: ["x"], action: "view"}
override: [{intent: "x", terms: []}]`},
		{"unknown slot", `intent: x: {keywords: ["x"], action: "view", required: ["shoe_size"]}`},
		{"no intents", `intent: {}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileCUE([]byte(tt.src), "bad.cue")
			assert.Error(t, err)
		})
	}
}

func TestLoadCUE(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.cue")
	require.NoError(t, os.WriteFile(path, []byte(sampleCUE), 0o644))

	c, err := LoadCUE(path)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	_, err = LoadCUE(filepath.Join(t.TempDir(), "missing.cue"))
	assert.Error(t, err)
}
