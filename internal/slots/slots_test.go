package slots

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/carelog/internal/catalog"
)

func intent(t *testing.T, name string) catalog.Definition {
	t.Helper()
	d, err := catalog.Default().Find(name)
	require.NoError(t, err)
	return d
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name      string
		intent    string
		utterance string
		want      Params
	}{
		{
			name:      "weight with week",
			intent:    "log_weight",
			utterance: "log weight 65kg for week 12",
			want:      Params{"weight": Decimal(65), "week_number": Int(12)},
		},
		{
			name:      "appointment with nothing",
			intent:    "create_appointment",
			utterance: "make an appointment",
			want:      Params{},
		},
		{
			name:      "appointment fully specified",
			intent:    "create_appointment",
			utterance: "schedule a checkup appointment next monday at 10am at City Clinic",
			want: Params{
				"title":    Text("checkup"),
				"date":     DateRef("next monday"),
				"time":     TimeRef("10:00"),
				"location": Text("city clinic"),
			},
		},
		{
			name:      "blood pressure",
			intent:    "log_blood_pressure",
			utterance: "bp 120/80 this morning",
			want: Params{
				"systolic":  Int(120),
				"diastolic": Int(80),
				"date":      DateRef("today"),
				"time":      TimeRef("morning"),
			},
		},
		{
			name:      "update splits on to",
			intent:    "update_appointment",
			utterance: "move the appointment with dr smith on friday to next monday at 2pm",
			want: Params{
				"title":    Text("dr smith"),
				"date":     DateRef("friday"),
				"new_date": DateRef("next monday"),
				"new_time": TimeRef("14:00"),
			},
		},
		{
			name:      "update without to reads only the new date",
			intent:    "update_appointment",
			utterance: "friday",
			want:      Params{"new_date": DateRef("friday")},
		},
		{
			name:      "delete by reference",
			intent:    "delete_appointment",
			utterance: "delete the last appointment",
			want:      Params{"reference": Text("last")},
		},
		{
			name:      "medicine",
			intent:    "log_medicine",
			utterance: "took 400 mg folic acid twice a day",
			want: Params{
				"medicine":  Text("folic acid"),
				"dosage":    Text("400mg"),
				"frequency": Text("twice daily"),
			},
		},
		{
			name:      "task with due date",
			intent:    "create_task",
			utterance: "remind me to call the midwife tomorrow",
			want:      Params{"task": Text("call the midwife"), "due_date": DateRef("tomorrow")},
		},
		{
			name:      "fallback has no slots",
			intent:    catalog.FallbackName,
			utterance: "log weight 65kg",
			want:      Params{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.utterance, intent(t, tt.intent))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMissing(t *testing.T) {
	appt := intent(t, "create_appointment")

	assert.Equal(t, []string{"title", "date", "time", "location"}, Missing(Params{}, appt))

	p := Params{"date": DateRef("tomorrow"), "location": Text("city clinic")}
	assert.Equal(t, []string{"title", "time"}, Missing(p, appt))
	assert.Equal(t, Missing(p, appt), Missing(p, appt), "Missing is idempotent")
	assert.Len(t, p, 2, "Missing does not modify params")

	assert.Empty(t, Missing(Params{"weight": Decimal(65)}, intent(t, "log_weight")))
}

func TestParams_SetSkipsEmpty(t *testing.T) {
	p := Params{}
	p.Set("title", Text(""))
	p.Set("date", nil)
	p.Set("week_number", Int(0))

	assert.False(t, p.Has("title"))
	assert.False(t, p.Has("date"))
	assert.True(t, p.Has("week_number"), "zero is an explicit number")
}

func TestParams_MergeLastWriteWins(t *testing.T) {
	p := Params{"title": Text("checkup"), "date": DateRef("friday")}
	p.Merge(Params{"date": DateRef("monday"), "time": TimeRef("15:00"), "location": Text("")})

	want := Params{"title": Text("checkup"), "date": DateRef("monday"), "time": TimeRef("15:00")}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}
}

func TestParams_Accessors(t *testing.T) {
	p := Params{"weight": Decimal(65.5), "week_number": Int(12), "whole": Decimal(70)}

	w, ok := p.Decimal("weight")
	require.True(t, ok)
	assert.InDelta(t, 65.5, w, 1e-9)

	n, ok := p.Int("week_number")
	require.True(t, ok)
	assert.Equal(t, int64(12), n)

	n, ok = p.Int("whole")
	require.True(t, ok)
	assert.Equal(t, int64(70), n)

	_, ok = p.Int("weight")
	assert.False(t, ok)

	assert.Equal(t, "65.5", p.Text("weight"))
	assert.Equal(t, "", p.Text("missing"))
	assert.Equal(t, []string{"week_number", "weight", "whole"}, p.Keys())
}

func TestParams_JSONKeepsVariants(t *testing.T) {
	p := Params{
		"title":       Text("checkup"),
		"week_number": Int(12),
		"weight":      Decimal(65.5),
		"date":        DateRef("tomorrow"),
		"time":        TimeRef("15:00"),
	}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var got Params
	require.NoError(t, json.Unmarshal(data, &got))
	if diff := cmp.Diff(p, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	assert.Error(t, json.Unmarshal([]byte(`{"x":{"kind":"blob","value":"1"}}`), &got))
}

func TestBareAnswer(t *testing.T) {
	tests := []struct {
		utterance string
		slot      string
		want      Value
		ok        bool
	}{
		{"Dr Smith", "title", Text("dr smith"), true},
		{"City Clinic", "location", Text("city clinic"), true},
		{"65", "weight", Decimal(65), true},
		{"12", "week_number", Int(12), true},
		{"12.5", "week_number", nil, false},
		{"500", "weight", nil, false},
		{"tomorrow", "date", nil, false},
		{"   ", "title", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.slot+"/"+tt.utterance, func(t *testing.T) {
			got, ok := BareAnswer(tt.utterance, tt.slot)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPartial(t *testing.T) {
	assert.True(t, Partial("title", "dentist checkup"))
	assert.True(t, Partial("title", "Checkup"))
	assert.False(t, Partial("title", "Dr Smith"), "nothing extracted")
	assert.False(t, Partial("title", "appointment with dr smith"), "named person is the whole title")
	assert.False(t, Partial("location", "dentist checkup"))
	assert.False(t, Partial("weight", "65"))
}

func TestExtractSlot_Unknown(t *testing.T) {
	_, ok := ExtractSlot("shoe_size", "size 9")
	assert.False(t, ok)
}
