package availability

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-scheduling/internal/slotgrid"
)

var ErrSlotNotFound = errors.New("availability slot not found")

// Repository persists weekly templates. Writes must be readable immediately
// by subsequent Gets (read-your-writes, no eventual-consistency window).
type Repository interface {
	// Get returns the doctor's template, empty (never nil) when the doctor
	// has no recorded availability yet.
	Get(ctx context.Context, doctorID uuid.UUID) (*WeeklyTemplate, error)

	// AddSlots unions slots into the weekday set. Duplicate starts merge
	// silently.
	AddSlots(ctx context.Context, doctorID uuid.UUID, wd slotgrid.Weekday, slots []slotgrid.TimeSlot) error

	// RemoveSlot fails with ErrSlotNotFound when no slot starts at start.
	RemoveSlot(ctx context.Context, doctorID uuid.UUID, wd slotgrid.Weekday, start slotgrid.TimeOfDay) error

	// MarkUnavailable / ClearUnavailable are idempotent date overrides.
	MarkUnavailable(ctx context.Context, doctorID uuid.UUID, date slotgrid.Date) error
	ClearUnavailable(ctx context.Context, doctorID uuid.UUID, date slotgrid.Date) error
}
