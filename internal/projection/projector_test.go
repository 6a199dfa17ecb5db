package projection

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/clinic-scheduling/internal/appointment"
	"github.com/clinicdesk/clinic-scheduling/internal/availability"
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
	proj   *Projector
	avail  *availability.MemoryRepository
	store  *appointment.Store
	doctor uuid.UUID
}

func newFixture(t *testing.T, offered ...string) *fixture {
	t.Helper()
	avail := availability.NewMemoryRepository()
	store := appointment.NewStore(appointment.NewMemoryRepository())
	doctor := uuid.New()
	window := slotgrid.DefaultWindow

	var slots []slotgrid.TimeSlot
	for _, start := range offered {
		slot, err := window.Quantize(start)
		require.NoError(t, err)
		slots = append(slots, slot)
	}
	// every fixture doctor works Mondays
	require.NoError(t, avail.AddSlots(context.Background(), doctor, slotgrid.Monday, slots))

	return &fixture{
		proj:   NewProjector(avail, store, window),
		avail:  avail,
		store:  store,
		doctor: doctor,
	}
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

func cellAt(t *testing.T, cells []Cell, date string, start string) Cell {
	t.Helper()
	d := mustDate(t, date)
	s := mustClock(t, start)
	for _, c := range cells {
		if c.Date == d && c.Slot.Start == s {
			return c
		}
	}
	t.Fatalf("no cell for %s %s", date, start)
	return Cell{}
}

func TestProjectSingleDay(t *testing.T) {
	f := newFixture(t, "09:00", "09:30", "10:00")
	day := mustDate(t, "2026-09-14") // Monday
	now := day.At(mustClock(t, "08:00"))

	booked := f.book(t, "2026-09-14", "09:30")

	cells, err := f.proj.Project(context.Background(), f.doctor, day, day, now)
	require.NoError(t, err)
	// one cell per canonical slot
	assert.Len(t, cells, len(slotgrid.DefaultWindow.Enumerate()))

	assert.Equal(t, StatusAvailable, cellAt(t, cells, "2026-09-14", "09:00").Status)
	got := cellAt(t, cells, "2026-09-14", "09:30")
	assert.Equal(t, StatusBookedUpcoming, got.Status)
	require.NotNil(t, got.ApptID)
	assert.Equal(t, booked.ID, *got.ApptID)
	assert.Equal(t, StatusAvailable, cellAt(t, cells, "2026-09-14", "10:00").Status)
	// hour outside the template
	assert.Equal(t, StatusUnavailable, cellAt(t, cells, "2026-09-14", "14:00").Status)
}

func TestProjectPastVersusUpcoming(t *testing.T) {
	f := newFixture(t, "09:00", "10:00")
	day := mustDate(t, "2026-09-14")
	now := day.At(mustClock(t, "09:45"))

	f.book(t, "2026-09-14", "09:00") // ended 09:30
	f.book(t, "2026-09-14", "10:00")

	cells, err := f.proj.Project(context.Background(), f.doctor, day, day, now)
	require.NoError(t, err)

	assert.Equal(t, StatusBookedPast, cellAt(t, cells, "2026-09-14", "09:00").Status)
	assert.Equal(t, StatusBookedUpcoming, cellAt(t, cells, "2026-09-14", "10:00").Status)
}

func TestProjectCancelledSlotIsAvailableAgain(t *testing.T) {
	f := newFixture(t, "09:30")
	day := mustDate(t, "2026-09-14")
	now := day.At(mustClock(t, "08:00"))
	ctx := context.Background()

	a := f.book(t, "2026-09-14", "09:30")

	cells, err := f.proj.Project(ctx, f.doctor, day, day, now)
	require.NoError(t, err)
	assert.Equal(t, StatusBookedUpcoming, cellAt(t, cells, "2026-09-14", "09:30").Status)

	require.NoError(t, f.store.Cancel(ctx, a.ID))

	cells, err = f.proj.Project(ctx, f.doctor, day, day, now)
	require.NoError(t, err)
	got := cellAt(t, cells, "2026-09-14", "09:30")
	assert.Equal(t, StatusAvailable, got.Status)
	assert.Nil(t, got.ApptID)
}

func TestProjectClosedDate(t *testing.T) {
	f := newFixture(t, "09:00", "09:30")
	day := mustDate(t, "2026-09-14")
	now := day.At(mustClock(t, "08:00"))
	ctx := context.Background()

	require.NoError(t, f.avail.MarkUnavailable(ctx, f.doctor, day))

	cells, err := f.proj.Project(ctx, f.doctor, day, day, now)
	require.NoError(t, err)
	for _, c := range cells {
		assert.Equal(t, StatusUnavailable, c.Status)
	}
}

func TestProjectMultiDayRange(t *testing.T) {
	f := newFixture(t, "09:00")
	from := mustDate(t, "2026-09-14") // Monday
	to := mustDate(t, "2026-09-15")   // Tuesday, no template slots
	now := from.At(mustClock(t, "08:00"))

	cells, err := f.proj.Project(context.Background(), f.doctor, from, to, now)
	require.NoError(t, err)
	assert.Len(t, cells, 2*len(slotgrid.DefaultWindow.Enumerate()))

	assert.Equal(t, StatusAvailable, cellAt(t, cells, "2026-09-14", "09:00").Status)
	assert.Equal(t, StatusUnavailable, cellAt(t, cells, "2026-09-15", "09:00").Status)
}

func TestProjectRejectsInvertedRange(t *testing.T) {
	f := newFixture(t, "09:00")
	_, err := f.proj.Project(context.Background(), f.doctor,
		mustDate(t, "2026-09-15"), mustDate(t, "2026-09-14"), time.Now())
	assert.Error(t, err)
}
