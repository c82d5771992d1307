package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/carelog/internal/records"
	"github.com/roach88/carelog/internal/slots"
)

// Saturday.
var now = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func appt(id int64, title, date, tm string) records.Record {
	return records.Record{
		ID:       id,
		Category: records.Appointment,
		Fields:   records.Fields{"title": title, "date": date, "time": tm, "location": "City Clinic"},
	}
}

func fixture() []records.Record {
	return []records.Record{
		appt(1, "checkup", "2026-10-23", "09:00"), // friday
		appt(2, "Ultrasound", "2026-10-19", "14:00"),
		appt(3, "checkup", "2026-10-18", "10:00"),
		appt(4, "dentist", "2026-10-30", "08:30"), // friday
	}
}

func ids(recs []records.Record) []int64 {
	out := make([]int64, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name string
		c    Criteria
		want []int64
	}{
		{"zero criteria sorts all", Criteria{}, []int64{3, 2, 1, 4}},
		{"title", Criteria{Title: "checkup"}, []int64{3, 1}},
		{"title is case-insensitive", Criteria{Title: "ULTRA"}, []int64{2}},
		{"date", Criteria{Date: "2026-10-18"}, []int64{3}},
		{"weekday", Criteria{Weekday: time.Friday, ByWeekday: true}, []int64{1, 4}},
		{"first", Criteria{Reference: "first"}, []int64{3}},
		{"last checkup", Criteria{Title: "checkup", Reference: "last"}, []int64{1}},
		{"no match", Criteria{Title: "midwife"}, []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(fixture(), tt.c)))
		})
	}
}

func TestFilter_DoesNotModifyInput(t *testing.T) {
	in := fixture()
	Filter(in, Criteria{})
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(in))
}

func TestFromParams(t *testing.T) {
	c := FromParams(slots.Params{"title": slots.Text("checkup"), "date": slots.DateRef("friday")}, "title", now)
	assert.Equal(t, "checkup", c.Title)
	assert.True(t, c.ByWeekday)
	assert.Equal(t, time.Friday, c.Weekday)
	assert.Empty(t, c.Date)

	c = FromParams(slots.Params{"date": slots.DateRef("tomorrow"), "reference": slots.Text("last")}, "title", now)
	assert.Equal(t, "2026-10-18", c.Date)
	assert.Equal(t, "last", c.Reference)
	assert.False(t, c.ByWeekday)

	c = FromParams(slots.Params{"date": slots.DateRef("next friday")}, "title", now)
	assert.Equal(t, "2026-10-23", c.Date)

	assert.True(t, FromParams(slots.Params{}, "title", now).IsZero())
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "checkup on 2026-10-18 at 10:00 (City Clinic)", Describe(appt(3, "checkup", "2026-10-18", "10:00")))

	task := records.Record{Category: records.Task, Fields: records.Fields{"title": "pack bag", "due_date": "2026-10-20", "done": true}}
	assert.Equal(t, "pack bag (due 2026-10-20) [done]", Describe(task))

	mood := records.Record{Category: records.Mood, Fields: records.Fields{"mood": "calm", "date": "2026-10-17"}}
	assert.Equal(t, "calm on 2026-10-17", Describe(mood))
}

func TestList(t *testing.T) {
	recs := Filter(fixture(), Criteria{Title: "checkup"})
	require.Len(t, recs, 2)
	assert.Equal(t,
		"1. checkup on 2026-10-18 at 10:00 (City Clinic)\n2. checkup on 2026-10-23 at 09:00 (City Clinic)",
		List(recs))
}
