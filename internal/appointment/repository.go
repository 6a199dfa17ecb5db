package appointment

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-scheduling/internal/slotgrid"
)

var (
	// ErrDuplicateSlot means an appointment already occupies the
	// (doctor, date, hour) key. Insert reports it atomically with the check.
	ErrDuplicateSlot = errors.New("slot already has an appointment")

	ErrAppointmentNotFound = errors.New("appointment not found")
)

// Repository contains all storage interactions needed by the engine.
// Insert must be linearizable per (doctor, date, hour) key: of any set of
// concurrent inserts for the same key exactly one succeeds and the rest get
// ErrDuplicateSlot.
type Repository interface {
	Insert(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// UpdateClinical replaces the clinical record and, when reportPending is
	// non-nil, the report flag.
	UpdateClinical(ctx context.Context, id uuid.UUID, rec ClinicalRecord, reportPending *bool) (*Appointment, error)

	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]Appointment, error)
	ListByDoctorAndDate(ctx context.Context, doctorID uuid.UUID, date slotgrid.Date) ([]Appointment, error)
}
