package dialogue

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/carelog/internal/catalog"
	"github.com/roach88/carelog/internal/records"
	"github.com/roach88/carelog/internal/slots"
)

// Saturday.
var now = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func newState() *State {
	return New(func() time.Time { return now })
}

func intent(t *testing.T, name string) catalog.Definition {
	t.Helper()
	d, err := catalog.Default().Find(name)
	require.NoError(t, err)
	return d
}

func appt(id int64, title, date string) records.Record {
	return records.Record{
		ID:       id,
		Category: records.Appointment,
		Fields:   records.Fields{"title": title, "date": date, "time": "09:00", "location": "City Clinic"},
	}
}

func TestBegin_ReplacesPending(t *testing.T) {
	s := newState()
	assert.False(t, s.HasPending())

	s.Begin(intent(t, "log_weight"), slots.Params{}, []string{"weight"})
	s.Begin(intent(t, "create_appointment"), slots.Params{}, []string{"title", "date", "time", "location"})

	p, ok := s.Pending()
	require.True(t, ok)
	assert.Equal(t, "create_appointment", p.Intent.Name)
	assert.Equal(t, now, p.CreatedAt)
	assert.False(t, p.Selecting())
}

func TestMerge_CollectsAppointment(t *testing.T) {
	s := newState()
	s.Begin(intent(t, "create_appointment"), slots.Params{}, []string{"title", "date", "time", "location"})

	out := s.Merge("Dr Smith")
	assert.Equal(t, StillMissing, out.Kind)
	assert.Equal(t, []string{"date", "time", "location"}, out.Missing)
	assert.Equal(t, slots.Text("dr smith"), out.Params["title"])
	assert.Contains(t, out.Prompt, "What date?")

	out = s.Merge("tomorrow at 3pm")
	assert.Equal(t, StillMissing, out.Kind)
	assert.Equal(t, []string{"location"}, out.Missing)
	assert.Equal(t, "Where is it?", out.Prompt)

	out = s.Merge("City Clinic")
	require.Equal(t, Ready, out.Kind)
	assert.False(t, s.HasPending(), "ready clears the pending follow-up")

	want := slots.Params{
		"title":    slots.Text("dr smith"),
		"date":     slots.DateRef("tomorrow"),
		"time":     slots.TimeRef("15:00"),
		"location": slots.Text("city clinic"),
	}
	if diff := cmp.Diff(want, out.Params); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_TitleReplyKeptWhole(t *testing.T) {
	s := newState()
	s.Begin(intent(t, "create_appointment"), slots.Params{}, []string{"title", "date", "time", "location"})

	out := s.Merge("dentist checkup")
	assert.Equal(t, StillMissing, out.Kind)
	assert.Equal(t, slots.Text("dentist checkup"), out.Params["title"])
	assert.Equal(t, []string{"date", "time", "location"}, out.Missing)

	// A reply that answers more than the title keeps the extracted values.
	s.Begin(intent(t, "create_appointment"), slots.Params{}, []string{"title", "date", "time", "location"})
	out = s.Merge("checkup tomorrow at 3pm")
	assert.Equal(t, StillMissing, out.Kind)
	assert.Equal(t, slots.Text("checkup"), out.Params["title"])
	assert.Equal(t, slots.DateRef("tomorrow"), out.Params["date"])
	assert.Equal(t, []string{"location"}, out.Missing)
}

func TestMerge_NeverDropsFilledSlot(t *testing.T) {
	s := newState()
	s.Begin(intent(t, "create_appointment"),
		slots.Params{"title": slots.Text("checkup"), "date": slots.DateRef("friday")},
		[]string{"time", "location"})

	out := s.Merge("at 10am")
	assert.Equal(t, StillMissing, out.Kind)
	assert.Equal(t, slots.Text("checkup"), out.Params["title"])
	assert.Equal(t, slots.DateRef("friday"), out.Params["date"])

	out = s.Merge("actually monday")
	assert.Equal(t, StillMissing, out.Kind)
	assert.Equal(t, slots.DateRef("monday"), out.Params["date"], "explicit newer value wins")
	assert.Equal(t, slots.Text("checkup"), out.Params["title"])
}

func TestMerge_FailedToParseKeepsPending(t *testing.T) {
	s := newState()
	s.Begin(intent(t, "log_weight"), slots.Params{"week_number": slots.Int(12)}, []string{"weight"})

	out := s.Merge("hmm not sure")
	assert.Equal(t, FailedToParse, out.Kind)
	assert.True(t, s.HasPending())
	assert.Contains(t, out.Prompt, "What is your weight")

	out = s.Merge("65")
	require.Equal(t, Ready, out.Kind)
	assert.Equal(t, slots.Decimal(65), out.Params["weight"])
	assert.Equal(t, slots.Int(12), out.Params["week_number"])
}

func TestMerge_NothingPending(t *testing.T) {
	out := newState().Merge("65")
	assert.Equal(t, FailedToParse, out.Kind)
}

func TestMerge_SelectOrdinal(t *testing.T) {
	s := newState()
	candidates := []records.Record{appt(3, "checkup", "2026-10-18"), appt(1, "checkup", "2026-10-23")}
	s.BeginSelection(intent(t, "delete_appointment"), slots.Params{"title": slots.Text("checkup")}, candidates)

	p, _ := s.Pending()
	assert.True(t, p.Selecting())

	out := s.Merge("1")
	require.Equal(t, Ready, out.Kind)
	require.Len(t, out.Selected, 1)
	assert.Equal(t, int64(3), out.Selected[0].ID, "1 selects the first listed candidate")
	assert.False(t, s.HasPending())
}

func TestMerge_SelectBothWithThreeMeansAll(t *testing.T) {
	s := newState()
	candidates := []records.Record{
		appt(1, "checkup", "2026-10-18"),
		appt(2, "checkup", "2026-10-19"),
		appt(3, "checkup", "2026-10-20"),
	}
	s.BeginSelection(intent(t, "delete_appointment"), slots.Params{}, candidates)

	out := s.Merge("both")
	require.Equal(t, Ready, out.Kind)
	assert.Len(t, out.Selected, 3, "both with more than two candidates behaves as all")
}

func TestMerge_SelectionUnrecognized(t *testing.T) {
	s := newState()
	candidates := []records.Record{appt(1, "checkup", "2026-10-18"), appt(2, "checkup", "2026-10-19")}
	s.BeginSelection(intent(t, "delete_appointment"), slots.Params{}, candidates)

	out := s.Merge("purple")
	assert.Equal(t, FailedToParse, out.Kind)
	assert.True(t, s.HasPending(), "unrecognized selection keeps the pending state")
	assert.Len(t, out.Candidates, 2)
	assert.Contains(t, out.Prompt, "1. checkup on 2026-10-18")

	out = s.Merge("7")
	assert.Equal(t, FailedToParse, out.Kind, "out of range")
}

func TestMerge_RefinementNarrows(t *testing.T) {
	s := newState()
	candidates := []records.Record{
		appt(1, "checkup", "2026-10-18"), // sunday
		appt(2, "dentist", "2026-10-23"), // friday
		appt(3, "checkup", "2026-10-30"), // friday
	}
	s.BeginSelection(intent(t, "delete_appointment"), slots.Params{}, candidates)

	out := s.Merge("the one on friday")
	require.Equal(t, Disambiguation, out.Kind)
	assert.Len(t, out.Candidates, 2)

	out = s.Merge("the dentist")
	require.Equal(t, Ready, out.Kind)
	require.Len(t, out.Selected, 1)
	assert.Equal(t, int64(2), out.Selected[0].ID)
}

func TestMerge_RefinementNoMatch(t *testing.T) {
	s := newState()
	s.BeginSelection(intent(t, "delete_appointment"), slots.Params{},
		[]records.Record{appt(1, "checkup", "2026-10-18"), appt(2, "checkup", "2026-10-19")})

	out := s.Merge("the dentist")
	assert.Equal(t, FailedToParse, out.Kind)
	assert.True(t, s.HasPending())
}

func TestClearAndRestore(t *testing.T) {
	s := newState()
	s.Begin(intent(t, "log_weight"), slots.Params{}, []string{"weight"})
	p, ok := s.Pending()
	require.True(t, ok)

	s.Clear()
	assert.False(t, s.HasPending())

	s.Restore(&p)
	assert.True(t, s.HasPending())
}

func TestPrompt(t *testing.T) {
	assert.Equal(t, "", Prompt(nil))
	assert.Equal(t, "What time?", Prompt([]string{"time"}))
	assert.Equal(t, "What is the appointment for? (still needed: title, date, time, location)",
		Prompt([]string{"title", "date", "time", "location"}))
}

func TestOutcomeKind_String(t *testing.T) {
	assert.Equal(t, "ready", Ready.String())
	assert.Equal(t, "OutcomeKind(9)", OutcomeKind(9).String())
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want []int
		ok   bool
	}{
		{"1", 2, []int{0}, true},
		{"2, 3", 3, []int{1, 2}, true},
		{"1 and 3", 3, []int{0, 2}, true},
		{"#2", 2, []int{1}, true},
		{"the 2nd one", 2, []int{1}, true},
		{"first", 3, []int{0}, true},
		{"the first one", 3, []int{0}, true},
		{"last", 3, []int{2}, true},
		{"second and third", 3, []int{1, 2}, true},
		{"all", 3, []int{0, 1, 2}, true},
		{"all of them", 2, []int{0, 1}, true},
		{"both", 2, []int{0, 1}, true},
		{"both", 3, []int{0, 1, 2}, true},
		{"both", 1, nil, false},
		{"3", 2, nil, false},
		{"0", 2, nil, false},
		{"2 2", 2, []int{1}, true},
		{"banana", 2, nil, false},
		{"", 2, nil, false},
		{"1", 0, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseSelection(tt.in, tt.n)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
