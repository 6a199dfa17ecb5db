// Package booking is the transactional entry point for creating, moving and
// cancelling appointments. The check-then-insert sequence for a slot runs
// under the doctor's lock, and the store's insert is itself atomic per key,
// so at most one appointment can ever occupy (doctor, date, hour).
package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinic-scheduling/internal/appointment"
	"github.com/clinicdesk/clinic-scheduling/internal/availability"
	"github.com/clinicdesk/clinic-scheduling/internal/lock"
	"github.com/clinicdesk/clinic-scheduling/internal/slotgrid"
)

// SentinelTimeSlotUnavailable is the literal wire value existing callers
// match on. Do not change it.
const SentinelTimeSlotUnavailable = "TIME_SLOT_UNAVAILABLE"

var (
	// ErrTimeSlotUnavailable covers every reason a slot cannot be booked:
	// the doctor never offers it, the date is marked unavailable, or
	// another appointment already holds it. Callers are deliberately not
	// told which; they should prompt for a different slot, not retry.
	ErrTimeSlotUnavailable = errors.New("time slot unavailable")

	ErrMissingParticipant = errors.New("doctor and patient identifiers are required")
)

// Request carries everything needed to book one slot.
type Request struct {
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	Date      slotgrid.Date
	Hour      string
	Reason    string
	IsVaccine bool
}

type Service struct {
	store  *appointment.Store
	avail  availability.Repository
	locker lock.Locker
	window slotgrid.Window
	log    zerolog.Logger
}

func NewService(store *appointment.Store, avail availability.Repository, locker lock.Locker, window slotgrid.Window, log zerolog.Logger) *Service {
	return &Service{
		store:  store,
		avail:  avail,
		locker: locker,
		window: window,
		log:    log,
	}
}

// Book validates the request against the grid and the doctor's template,
// then atomically claims the slot. Validation failures and unavailable
// slots are terminal outcomes; nothing here is retried.
func (s *Service) Book(ctx context.Context, req Request) (*appointment.Appointment, error) {
	if req.DoctorID == uuid.Nil || req.PatientID == uuid.Nil {
		return nil, ErrMissingParticipant
	}
	if req.Date.IsZero() {
		return nil, slotgrid.ErrInvalidDate
	}

	slot, err := s.window.Quantize(req.Hour)
	if err != nil {
		return nil, err
	}

	var booked *appointment.Appointment

	err = s.locker.WithDoctorLock(ctx, req.DoctorID, func(lockCtx context.Context) error {
		template, err := s.avail.Get(lockCtx, req.DoctorID)
		if err != nil {
			return fmt.Errorf("load template: %w", err)
		}

		wd := req.Date.Weekday()
		if template.IsUnavailable(req.Date) || !template.HasSlot(wd, slot.Start) {
			return ErrTimeSlotUnavailable
		}

		appt := &appointment.Appointment{
			DoctorID:  req.DoctorID,
			PatientID: req.PatientID,
			Date:      req.Date,
			Hour:      slot.Start,
			Reason:    req.Reason,
			Flags:     appointment.Flags{IsVaccine: req.IsVaccine},
		}

		if err := s.store.Insert(lockCtx, appt); err != nil {
			if errors.Is(err, appointment.ErrDuplicateSlot) {
				return ErrTimeSlotUnavailable
			}
			return fmt.Errorf("insert appointment: %w", err)
		}

		booked = appt
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrTimeSlotUnavailable) {
			s.log.Debug().
				Str("doctor_id", req.DoctorID.String()).
				Str("date", req.Date.String()).
				Str("hour", slot.Start.String()).
				Msg("booking rejected, slot unavailable")
		}
		return nil, err
	}

	s.log.Info().
		Str("appointment_id", booked.ID.String()).
		Str("doctor_id", req.DoctorID.String()).
		Str("date", req.Date.String()).
		Str("hour", slot.Start.String()).
		Msg("appointment booked")
	return booked, nil
}

// Cancel removes the appointment. A missing record reports
// appointment.ErrAppointmentNotFound; it is never retried.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Cancel(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("appointment_id", id.String()).Msg("appointment cancelled")
	return nil
}

// Reschedule is an explicit cancel-and-recreate: the destination slot is
// validated and claimed under the doctor's lock before the old record is
// removed, so a failed move leaves the original booking in place.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, date slotgrid.Date, hour string) (*appointment.Appointment, error) {
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	slot, err := s.window.Quantize(hour)
	if err != nil {
		return nil, err
	}

	var moved *appointment.Appointment

	err = s.locker.WithDoctorLock(ctx, existing.DoctorID, func(lockCtx context.Context) error {
		template, err := s.avail.Get(lockCtx, existing.DoctorID)
		if err != nil {
			return fmt.Errorf("load template: %w", err)
		}
		if template.IsUnavailable(date) || !template.HasSlot(date.Weekday(), slot.Start) {
			return ErrTimeSlotUnavailable
		}

		replacement := &appointment.Appointment{
			DoctorID:  existing.DoctorID,
			PatientID: existing.PatientID,
			Date:      date,
			Hour:      slot.Start,
			Reason:    existing.Reason,
			Clinical:  existing.Clinical,
			Flags:     existing.Flags,
		}

		if err := s.store.Insert(lockCtx, replacement); err != nil {
			if errors.Is(err, appointment.ErrDuplicateSlot) {
				return ErrTimeSlotUnavailable
			}
			return fmt.Errorf("insert replacement: %w", err)
		}

		if err := s.store.Cancel(lockCtx, existing.ID); err != nil && !errors.Is(err, appointment.ErrAppointmentNotFound) {
			// roll the claim back rather than leave the patient double-booked
			_ = s.store.Cancel(lockCtx, replacement.ID)
			return fmt.Errorf("remove original: %w", err)
		}

		moved = replacement
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("appointment_id", id.String()).
		Str("replacement_id", moved.ID.String()).
		Str("date", date.String()).
		Str("hour", slot.Start.String()).
		Msg("appointment rescheduled")
	return moved, nil
}

// Annotate attaches clinical documentation to a committed appointment.
func (s *Service) Annotate(ctx context.Context, id uuid.UUID, rec appointment.ClinicalRecord, reportPending *bool) (*appointment.Appointment, error) {
	return s.store.Annotate(ctx, id, rec, reportPending)
}
