package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/clinic-scheduling/internal/appointment"
	"github.com/clinicdesk/clinic-scheduling/internal/conflict"
	"github.com/clinicdesk/clinic-scheduling/internal/lock"
	"github.com/clinicdesk/clinic-scheduling/internal/slotgrid"
)

func mustDate(t *testing.T, s string) slotgrid.Date {
	t.Helper()
	d, err := slotgrid.ParseDate(s)
	require.NoError(t, err)
	return d
}

func mustClock(t *testing.T, s string) slotgrid.TimeOfDay {
	t.Helper()
	c, err := slotgrid.ParseClock(s)
	require.NoError(t, err)
	return c
}

type fixture struct {
	svc    *Service
	repo   *MemoryRepository
	store  *appointment.Store
	doctor uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := NewMemoryRepository()
	store := appointment.NewStore(appointment.NewMemoryRepository())
	svc := NewService(repo, store, lock.NewKeyedMutex(), slotgrid.DefaultWindow, zerolog.Nop())
	// pin "today" so weekday filtering is deterministic: 2026-09-14 is a Monday
	svc.now = func() time.Time { return time.Date(2026, 9, 14, 8, 0, 0, 0, time.Local) }
	return &fixture{svc: svc, repo: repo, store: store, doctor: uuid.New()}
}

func (f *fixture) book(t *testing.T, date, hour string) *appointment.Appointment {
	t.Helper()
	a := &appointment.Appointment{
		DoctorID:  f.doctor,
		PatientID: uuid.New(),
		Date:      mustDate(t, date),
		Hour:      mustClock(t, hour),
	}
	require.NoError(t, f.store.Insert(context.Background(), a))
	return a
}

func TestAddSlots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.svc.AddSlots(ctx, f.doctor, "mon", []SlotRequest{
		{Start: "09:00"},
		{Start: "09:30", End: "10:00"},
	})
	require.NoError(t, err)

	tmpl, err := f.svc.Get(ctx, f.doctor)
	require.NoError(t, err)
	assert.True(t, tmpl.HasSlot(slotgrid.Monday, mustClock(t, "09:00")))
	assert.True(t, tmpl.HasSlot(slotgrid.Monday, mustClock(t, "09:30")))
	assert.False(t, tmpl.HasSlot(slotgrid.Tuesday, mustClock(t, "09:00")))
}

func TestAddSlotsValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.svc.AddSlots(ctx, f.doctor, "monday", []SlotRequest{{Start: "09:00"}})
	assert.ErrorIs(t, err, slotgrid.ErrInvalidWeekday)

	err = f.svc.AddSlots(ctx, f.doctor, "mon", []SlotRequest{{Start: "09:15"}})
	assert.ErrorIs(t, err, slotgrid.ErrInvalidSlotGranularity)

	err = f.svc.AddSlots(ctx, f.doctor, "mon", []SlotRequest{{Start: "07:00"}})
	assert.ErrorIs(t, err, slotgrid.ErrOutsideOperatingHours)

	// end that is not start+30min
	err = f.svc.AddSlots(ctx, f.doctor, "mon", []SlotRequest{{Start: "09:00", End: "10:00"}})
	assert.ErrorIs(t, err, ErrInvalidSlotDuration)
}

func TestAddSlotsExistingSlotMergesSilently(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.AddSlots(ctx, f.doctor, "mon", []SlotRequest{{Start: "10:00"}}))

	// a future Monday appointment occupies 10:00, but re-adding the slot
	// the template already offers is a no-op, not a conflict
	f.book(t, "2026-09-21", "10:00")
	require.NoError(t, f.svc.AddSlots(ctx, f.doctor, "mon", []SlotRequest{{Start: "10:00"}}))
}

func TestAddSlotsRejectsConflictingNewSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booked := f.book(t, "2026-09-21", "10:00")

	err := f.svc.AddSlots(ctx, f.doctor, "mon", []SlotRequest{{Start: "10:00"}})
	var c *conflict.Conflict
	require.True(t, errors.As(err, &c))
	assert.Equal(t, booked.ID, c.AppointmentID)
	assert.Equal(t, slotgrid.Monday, c.Weekday)
	assert.Equal(t, "2026-09-21", c.Date.String())
}

func TestAddSlotsBatchIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.book(t, "2026-09-21", "10:00")

	err := f.svc.AddSlots(ctx, f.doctor, "mon", []SlotRequest{
		{Start: "09:00"},
		{Start: "10:00"},
	})
	var c *conflict.Conflict
	require.True(t, errors.As(err, &c))

	tmpl, err := f.svc.Get(ctx, f.doctor)
	require.NoError(t, err)
	assert.False(t, tmpl.HasSlot(slotgrid.Monday, mustClock(t, "09:00")),
		"rejected batch must leave nothing behind")
}

func TestAddSlotsIgnoresPastAppointments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// last Monday, already in the past relative to the pinned clock
	f.book(t, "2026-09-07", "10:00")

	require.NoError(t, f.svc.AddSlots(ctx, f.doctor, "mon", []SlotRequest{{Start: "10:00"}}))
}

func TestRemoveSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.AddSlots(ctx, f.doctor, "mon", []SlotRequest{{Start: "09:00"}}))

	// removal is permissive even when a future booking depends on the slot
	f.book(t, "2026-09-21", "09:00")
	require.NoError(t, f.svc.RemoveSlot(ctx, f.doctor, "mon", "09:00"))

	tmpl, err := f.svc.Get(ctx, f.doctor)
	require.NoError(t, err)
	assert.False(t, tmpl.HasSlot(slotgrid.Monday, mustClock(t, "09:00")))

	err = f.svc.RemoveSlot(ctx, f.doctor, "mon", "09:00")
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestUnavailableDates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	off := mustDate(t, "2026-09-21")
	require.NoError(t, f.svc.MarkUnavailable(ctx, f.doctor, off))
	require.NoError(t, f.svc.MarkUnavailable(ctx, f.doctor, off)) // idempotent

	tmpl, err := f.svc.Get(ctx, f.doctor)
	require.NoError(t, err)
	assert.True(t, tmpl.IsUnavailable(off))
	assert.Equal(t, []slotgrid.Date{off}, tmpl.UnavailableDates())

	require.NoError(t, f.svc.ClearUnavailable(ctx, f.doctor, off))
	require.NoError(t, f.svc.ClearUnavailable(ctx, f.doctor, off))

	tmpl, err = f.svc.Get(ctx, f.doctor)
	require.NoError(t, err)
	assert.False(t, tmpl.IsUnavailable(off))
}

func TestGetUnknownDoctorIsEmpty(t *testing.T) {
	f := newFixture(t)

	tmpl, err := f.svc.Get(context.Background(), uuid.New())
	require.NoError(t, err)
	require.NotNil(t, tmpl)
	assert.Empty(t, tmpl.Days)
	assert.Empty(t, tmpl.UnavailableDates())
}
