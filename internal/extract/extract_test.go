package extract

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRules_FirstMatchWins(t *testing.T) {
	rs := Rules[string]{
		{Name: "specific", Pattern: regexp.MustCompile(`blood pressure`), Build: constant("bp")},
		{Name: "generic", Pattern: regexp.MustCompile(`pressure`), Build: constant("generic")},
	}

	name, v, ok := rs.Match("my blood pressure is high")
	require.True(t, ok)
	assert.Equal(t, "specific", name)
	assert.Equal(t, "bp", v)

	v, ok = rs.First("pressure at work")
	require.True(t, ok)
	assert.Equal(t, "generic", v)
}

func TestRules_RejectedBuildFallsThrough(t *testing.T) {
	rs := Rules[int64]{
		{Name: "small", Pattern: regexp.MustCompile(`(\d+)`), Build: func(m []string) (int64, bool) {
			return intInRange(m[1], 0, 9)
		}},
		{Name: "any", Pattern: regexp.MustCompile(`(\d+)`), Build: func(m []string) (int64, bool) {
			return intInRange(m[1], 0, 1000)
		}},
	}

	name, v, ok := rs.Match("42")
	require.True(t, ok)
	assert.Equal(t, "any", name)
	assert.Equal(t, int64(42), v)
}

func TestRules_RejectedMatchTriesNextOccurrence(t *testing.T) {
	rs := Rules[int64]{
		{Name: "pair", Pattern: regexp.MustCompile(`(\d+)/(\d+)`), Build: func(m []string) (int64, bool) {
			return intInRange(m[1], 60, 260)
		}},
	}

	name, v, ok := rs.Match("on 10/15 it was 120/80")
	require.True(t, ok)
	assert.Equal(t, "pair", name)
	assert.Equal(t, int64(120), v)
}

func TestRules_NoMatch(t *testing.T) {
	_, ok := Rules[string]{}.First("anything")
	assert.False(t, ok)
}

func TestVocab_TokenBoundaries(t *testing.T) {
	v, ok := Symptoms.Match("Terrible BACK PAIN today")
	require.True(t, ok)
	assert.Equal(t, "back pain", v)

	_, ok = Medicines.Match("ironing the shirts")
	assert.False(t, ok, "iron must not match inside ironing")

	v, ok = Categories.Match("show my bp")
	require.True(t, ok)
	assert.Equal(t, "blood_pressure", v)
}

func TestVocab_Values(t *testing.T) {
	assert.Equal(t, []string{"mild", "moderate", "severe"}, Severities.Values())
}

func TestDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"on 2026-03-05", "2026-03-05", true},
		{"3/5/2026", "2026-03-05", true},
		{"the day after tomorrow", "day after tomorrow", true},
		{"tomorrow at 3pm", "tomorrow", true},
		{"Today", "today", true},
		{"tonight", "today", true},
		{"last night", "yesterday", true},
		{"next week", "next week", true},
		{"next Friday", "next friday", true},
		{"on monday", "monday", true},
		{"March 5th", "march 5", true},
		{"mar 5, 2027", "2027-03-05", true},
		{"5 of march", "march 5", true},
		{"2026-02-30", "", false},
		{"february 30", "", false},
		{"log weight 65kg", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Date(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveDate(t *testing.T) {
	// Saturday.
	now := time.Date(2026, 10, 17, 15, 4, 0, 0, time.UTC)

	tests := []struct {
		phrase string
		want   string
	}{
		{"", "2026-10-17"},
		{"gibberish", "2026-10-17"},
		{"today", "2026-10-17"},
		{"tomorrow", "2026-10-18"},
		{"day after tomorrow", "2026-10-19"},
		{"yesterday", "2026-10-16"},
		{"next week", "2026-10-24"},
		{"monday", "2026-10-19"},
		{"saturday", "2026-10-17"},
		{"next saturday", "2026-10-24"},
		{"march 5", "2026-03-05"},
		{"2027-01-02", "2027-01-02"},
	}
	for _, tt := range tests {
		t.Run(tt.phrase, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveDate(tt.phrase, now))
		})
	}
}

func TestWeekday(t *testing.T) {
	wd, ok := Weekday("next Friday")
	require.True(t, ok)
	assert.Equal(t, time.Friday, wd)

	_, ok = Weekday("tomorrow")
	assert.False(t, ok)
}

func TestTime(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"at 3pm", "15:00", true},
		{"at 3 PM", "15:00", true},
		{"10:30am", "10:30", true},
		{"12am", "00:00", true},
		{"12pm", "12:00", true},
		{"at 15:45", "15:45", true},
		{"at 4 o'clock", "16:00", true},
		{"in the evening", "evening", true},
		{"3 amazing days", "", false},
		{"25:00", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Time(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveTime(t *testing.T) {
	assert.Equal(t, "18:00", ResolveTime("evening"))
	assert.Equal(t, "15:00", ResolveTime("3pm"))
	assert.Equal(t, "07:05", ResolveTime("07:05"))
	assert.Equal(t, DefaultTime, ResolveTime(""))
	assert.Equal(t, DefaultTime, ResolveTime("whenever"))
}

func TestWeightKg(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"log weight 65kg for week 12", 65, true},
		{"72.5 kilograms", 72.5, true},
		{"150 lbs", 68, true},
		{"my weight is 70", 70, true},
		{"weighed 68.2 this morning", 68.2, true},
		{"5kg", 0, false},
		{"week 12", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := WeightKg(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestWeekNumber(t *testing.T) {
	n, ok := WeekNumber("log weight 65kg for week 12")
	require.True(t, ok)
	assert.Equal(t, int64(12), n)

	n, ok = WeekNumber("I'm in my 20th week")
	require.True(t, ok)
	assert.Equal(t, int64(20), n)

	_, ok = WeekNumber("week 60")
	assert.False(t, ok)

	_, ok = WeekNumber("next week")
	assert.False(t, ok)
}

func TestBloodPressure(t *testing.T) {
	tests := []struct {
		in       string
		sys, dia int64
		sysOK    bool
		diaOK    bool
	}{
		{"bp 120/80", 120, 80, true, true},
		{"blood pressure 118 over 76", 118, 76, true, true},
		{"systolic 130", 130, 0, true, false},
		{"diastolic is 85", 0, 85, false, true},
		{"120/300", 0, 0, false, false},
		{"my bp on 10/15/2026 was 120/80", 120, 80, true, true},
		{"checked 3/4 times, bp 118/76", 118, 76, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			sys, ok := Systolic(tt.in)
			assert.Equal(t, tt.sysOK, ok)
			assert.Equal(t, tt.sys, sys)

			dia, ok := Diastolic(tt.in)
			assert.Equal(t, tt.diaOK, ok)
			assert.Equal(t, tt.dia, dia)
		})
	}
}

func TestSleepHours(t *testing.T) {
	h, ok := SleepHours("slept 7.5 hours")
	require.True(t, ok)
	assert.InDelta(t, 7.5, h, 0.001)

	h, ok = SleepHours("I slept for 6 last night")
	require.True(t, ok)
	assert.InDelta(t, 6.0, h, 0.001)

	_, ok = SleepHours("slept 30 hours")
	assert.False(t, ok)
}

func TestDosage(t *testing.T) {
	d, ok := Dosage("took 400 mg of folic acid")
	require.True(t, ok)
	assert.Equal(t, "400mg", d)

	d, ok = Dosage("2 tablets of iron")
	require.True(t, ok)
	assert.Equal(t, "2 tablets", d)
}

func TestNumber(t *testing.T) {
	n, ok := Number(" 65 ")
	require.True(t, ok)
	assert.InDelta(t, 65.0, n, 0.001)

	_, ok = Number("65 kg")
	assert.False(t, ok)
}

func TestAppointmentTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"book an appointment with Dr Smith tomorrow at 3pm", "dr smith", true},
		{"delete checkup appointment", "checkup", true},
		{"schedule a checkup appointment next monday at 10am at city clinic", "checkup", true},
		{"reschedule my dentist appointment to friday", "dentist", true},
		{"I need an ultrasound", "ultrasound", true},
		{"make an appointment", "", false},
		{"delete appointment", "", false},
		{"remove tomorrow's appointment", "", false},
		{"delete the first appointment", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := AppointmentTitle(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAppointmentTitleIsKind(t *testing.T) {
	assert.True(t, AppointmentTitleIsKind("dentist checkup"))
	assert.True(t, AppointmentTitleIsKind("I need an ultrasound"))
	assert.False(t, AppointmentTitleIsKind("book an appointment with Dr Smith"))
	assert.False(t, AppointmentTitleIsKind("delete checkup appointment"))
	assert.False(t, AppointmentTitleIsKind("Dr Smith"))
}

func TestLocation(t *testing.T) {
	loc, ok := Location("schedule a checkup appointment next monday at 10am at City Clinic")
	require.True(t, ok)
	assert.Equal(t, "city clinic", loc)

	loc, ok = Location("location: riverside")
	require.True(t, ok)
	assert.Equal(t, "riverside", loc)

	_, ok = Location("make an appointment")
	assert.False(t, ok)
}

func TestTaskTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"remind me to call the midwife tomorrow", "call the midwife", true},
		{"add a task to buy vitamins", "buy vitamins", true},
		{"todo: pack hospital bag by friday", "pack hospital bag", true},
		{"mark buy vitamins as done", "buy vitamins", true},
		{"complete the pack hospital bag task", "pack hospital bag", true},
		{"delete task buy vitamins", "buy vitamins", true},
		{"complete task", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := TaskTitle(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
