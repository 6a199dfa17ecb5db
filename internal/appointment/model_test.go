package appointment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/clinicdesk/clinic-scheduling/internal/slotgrid"
)

func mustDate(t *testing.T, s string) slotgrid.Date {
	t.Helper()
	d, err := slotgrid.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func mustClock(t *testing.T, s string) slotgrid.TimeOfDay {
	t.Helper()
	c, err := slotgrid.ParseClock(s)
	if err != nil {
		t.Fatalf("parse clock %q: %v", s, err)
	}
	return c
}

func TestClassify(t *testing.T) {
	today := mustDate(t, "2026-09-14")
	appt := &Appointment{
		ID:       uuid.New(),
		DoctorID: uuid.New(),
		Date:     today,
		Hour:     mustClock(t, "10:00"),
	}

	cases := []struct {
		name string
		date slotgrid.Date
		now  time.Time
		want TemporalState
	}{
		{"yesterday is past", today.AddDays(-1), today.At(mustClock(t, "09:00")), StatePast},
		{"tomorrow is future", today.AddDays(1), today.At(mustClock(t, "09:00")), StateFuture},
		{"before start today is today-upcoming", today, today.At(mustClock(t, "09:59")), StateTodayUpcoming},
		{"exactly at start is ongoing", today, today.At(mustClock(t, "10:00")), StateOngoing},
		{"one second before end is ongoing", today, today.At(mustClock(t, "10:30")).Add(-time.Second), StateOngoing},
		{"exactly at end is past", today, today.At(mustClock(t, "10:30")), StatePast},
		{"later today after end is past", today, today.At(mustClock(t, "15:00")), StatePast},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			appt.Date = tc.date
			assert.Equal(t, tc.want, appt.Classify(tc.now))
		})
	}
}
