package appointment

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/clinic-scheduling/internal/slotgrid"
)

func newTestStore() *Store {
	return NewStore(NewMemoryRepository())
}

func insertAppt(t *testing.T, s *Store, doctorID, patientID uuid.UUID, date string, hour string, flags Flags) *Appointment {
	t.Helper()
	a := &Appointment{
		DoctorID:  doctorID,
		PatientID: patientID,
		Date:      mustDate(t, date),
		Hour:      mustClock(t, hour),
		Flags:     flags,
	}
	require.NoError(t, s.Insert(context.Background(), a))
	return a
}

func TestInsertRejectsDuplicateKey(t *testing.T) {
	s := newTestStore()
	doctor := uuid.New()

	insertAppt(t, s, doctor, uuid.New(), "2026-09-14", "09:30", Flags{})

	dup := &Appointment{
		DoctorID:  doctor,
		PatientID: uuid.New(),
		Date:      mustDate(t, "2026-09-14"),
		Hour:      mustClock(t, "09:30"),
	}
	err := s.Insert(context.Background(), dup)
	assert.ErrorIs(t, err, ErrDuplicateSlot)

	// same hour on another date, and another doctor on the same key, are fine
	insertAppt(t, s, doctor, uuid.New(), "2026-09-21", "09:30", Flags{})
	insertAppt(t, s, uuid.New(), uuid.New(), "2026-09-14", "09:30", Flags{})
}

func TestInsertIsAtomicUnderConcurrency(t *testing.T) {
	s := newTestStore()
	doctor := uuid.New()
	date := mustDate(t, "2026-09-14")
	hour := mustClock(t, "10:00")

	const contenders = 32
	var wg sync.WaitGroup
	results := make(chan error, contenders)

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a := &Appointment{DoctorID: doctor, PatientID: uuid.New(), Date: date, Hour: hour}
			results <- s.Insert(context.Background(), a)
		}()
	}
	wg.Wait()
	close(results)

	wins, losses := 0, 0
	for err := range results {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, ErrDuplicateSlot)
			losses++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, contenders-1, losses)
}

func TestCancelFreesTheKey(t *testing.T) {
	s := newTestStore()
	doctor := uuid.New()

	a := insertAppt(t, s, doctor, uuid.New(), "2026-09-14", "09:30", Flags{})
	require.NoError(t, s.Cancel(context.Background(), a.ID))

	assert.ErrorIs(t, s.Cancel(context.Background(), a.ID), ErrAppointmentNotFound)

	// the slot is bookable again
	insertAppt(t, s, doctor, uuid.New(), "2026-09-14", "09:30", Flags{})
}

func TestFindByDoctorAndWeekday(t *testing.T) {
	s := newTestStore()
	doctor := uuid.New()
	// 2026-09-14 is a Monday
	insertAppt(t, s, doctor, uuid.New(), "2026-09-14", "10:00", Flags{})
	insertAppt(t, s, doctor, uuid.New(), "2026-09-21", "09:00", Flags{})
	insertAppt(t, s, doctor, uuid.New(), "2026-09-15", "10:00", Flags{}) // Tuesday
	insertAppt(t, s, doctor, uuid.New(), "2026-09-07", "10:00", Flags{}) // Monday, past

	from := mustDate(t, "2026-09-14")
	got, err := s.FindByDoctorAndWeekday(context.Background(), doctor, slotgrid.Monday, from)
	require.NoError(t, err)

	require.Len(t, got, 2, "past Mondays and other weekdays are excluded")
	assert.Equal(t, "2026-09-14", got[0].Date.String())
	assert.Equal(t, "2026-09-21", got[1].Date.String())
}

func TestTemporalQueries(t *testing.T) {
	s := newTestStore()
	doctor := uuid.New()
	now := mustDate(t, "2026-09-14").At(mustClock(t, "10:15"))

	past := insertAppt(t, s, doctor, uuid.New(), "2026-09-11", "09:00", Flags{})
	earlier := insertAppt(t, s, doctor, uuid.New(), "2026-09-14", "09:00", Flags{})
	ongoing := insertAppt(t, s, doctor, uuid.New(), "2026-09-14", "10:00", Flags{})
	laterToday := insertAppt(t, s, doctor, uuid.New(), "2026-09-14", "14:30", Flags{})
	future := insertAppt(t, s, doctor, uuid.New(), "2026-09-18", "11:00", Flags{})

	ctx := context.Background()

	got, err := s.QueryOngoing(ctx, doctor, now, Filter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ongoing.ID, got[0].ID)

	got, err = s.QueryToday(ctx, doctor, now, Filter{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, ongoing.ID, got[0].ID)
	assert.Equal(t, laterToday.ID, got[1].ID)

	got, err = s.QueryUpcoming(ctx, doctor, now, Filter{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, laterToday.ID, got[0].ID)
	assert.Equal(t, future.ID, got[1].ID)

	// past is most recent first
	got, err = s.QueryPast(ctx, doctor, now, Filter{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, earlier.ID, got[0].ID)
	assert.Equal(t, past.ID, got[1].ID)
}

func TestQueryFlagFilters(t *testing.T) {
	s := newTestStore()
	doctor := uuid.New()
	now := mustDate(t, "2026-09-14").At(mustClock(t, "08:00"))

	vaccine := insertAppt(t, s, doctor, uuid.New(), "2026-09-16", "09:00", Flags{IsVaccine: true})
	insertAppt(t, s, doctor, uuid.New(), "2026-09-16", "09:30", Flags{})
	pending := insertAppt(t, s, doctor, uuid.New(), "2026-09-16", "10:00", Flags{ReportPending: true})

	yes := true
	got, err := s.QueryUpcoming(context.Background(), doctor, now, Filter{Vaccine: &yes})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, vaccine.ID, got[0].ID)

	got, err = s.QueryUpcoming(context.Background(), doctor, now, Filter{ReportPending: &yes})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, pending.ID, got[0].ID)
}

func TestAnnotate(t *testing.T) {
	s := newTestStore()
	a := insertAppt(t, s, uuid.New(), uuid.New(), "2026-09-14", "09:00", Flags{ReportPending: true})

	done := false
	updated, err := s.Annotate(context.Background(), a.ID, ClinicalRecord{
		Diagnosis:    "seasonal allergy",
		Prescription: "antihistamine",
	}, &done)
	require.NoError(t, err)
	assert.Equal(t, "seasonal allergy", updated.Clinical.Diagnosis)
	assert.False(t, updated.Flags.ReportPending)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt) || updated.UpdatedAt.Equal(updated.CreatedAt))

	_, err = s.Annotate(context.Background(), uuid.New(), ClinicalRecord{}, nil)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}
