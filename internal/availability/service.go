package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinic-scheduling/internal/appointment"
	"github.com/clinicdesk/clinic-scheduling/internal/conflict"
	"github.com/clinicdesk/clinic-scheduling/internal/lock"
	"github.com/clinicdesk/clinic-scheduling/internal/slotgrid"
)

var ErrInvalidSlotDuration = errors.New("slot must be exactly 30 minutes")

// SlotRequest is one proposed recurring slot as submitted by the caller.
// End is optional; when present it must be exactly Start + 30 minutes.
type SlotRequest struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

// Service mutates weekly templates, running every edit through the conflict
// checker under the doctor's lock so it cannot race a concurrent booking.
type Service struct {
	repo   Repository
	store  *appointment.Store
	locker lock.Locker
	window slotgrid.Window
	log    zerolog.Logger
	now    func() time.Time
}

func NewService(repo Repository, store *appointment.Store, locker lock.Locker, window slotgrid.Window, log zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		store:  store,
		locker: locker,
		window: window,
		log:    log,
		now:    time.Now,
	}
}

// Get returns the doctor's full template.
func (s *Service) Get(ctx context.Context, doctorID uuid.UUID) (*WeeklyTemplate, error) {
	return s.repo.Get(ctx, doctorID)
}

// AddSlots quantizes every proposed slot and unions them into the weekday
// set. The batch is all-or-nothing: if any genuinely new slot collides with
// a future dated appointment on that weekday the whole request is rejected
// with the conflict. Slots already in the template merge silently and are
// not re-checked.
func (s *Service) AddSlots(ctx context.Context, doctorID uuid.UUID, weekday string, reqs []SlotRequest) error {
	wd, err := slotgrid.ParseWeekday(weekday)
	if err != nil {
		return err
	}

	proposed := make([]slotgrid.TimeSlot, 0, len(reqs))
	for _, req := range reqs {
		slot, err := s.window.Quantize(req.Start)
		if err != nil {
			return err
		}
		if req.End != "" {
			end, err := slotgrid.ParseClock(req.End)
			if err != nil {
				return err
			}
			if end != slot.End {
				return fmt.Errorf("%w: %s-%s", ErrInvalidSlotDuration, req.Start, req.End)
			}
		}
		proposed = append(proposed, slot)
	}

	return s.locker.WithDoctorLock(ctx, doctorID, func(lockCtx context.Context) error {
		template, err := s.repo.Get(lockCtx, doctorID)
		if err != nil {
			return fmt.Errorf("load template: %w", err)
		}

		var fresh []slotgrid.TimeSlot
		for _, slot := range proposed {
			if !template.HasSlot(wd, slot.Start) {
				fresh = append(fresh, slot)
			}
		}
		if len(fresh) == 0 {
			// everything already offered, nothing to check
			return nil
		}

		appts, err := s.store.FindByDoctorAndWeekday(lockCtx, doctorID, wd, slotgrid.DateOf(s.now()))
		if err != nil {
			return fmt.Errorf("load weekday appointments: %w", err)
		}

		for _, slot := range fresh {
			if c := conflict.CheckAvailability(slot, appts); c != nil {
				s.log.Info().
					Str("doctor_id", doctorID.String()).
					Str("weekday", string(wd)).
					Str("start", slot.Start.String()).
					Str("appointment_id", c.AppointmentID.String()).
					Msg("availability edit rejected, slot has a dated appointment")
				return c
			}
		}

		if err := s.repo.AddSlots(lockCtx, doctorID, wd, fresh); err != nil {
			return err
		}

		s.log.Debug().
			Str("doctor_id", doctorID.String()).
			Str("weekday", string(wd)).
			Int("added", len(fresh)).
			Msg("availability slots added")
		return nil
	})
}

// RemoveSlot removes the recurring slot unconditionally, even when a
// future dated appointment depends on it. The appointment itself is not
// touched.
func (s *Service) RemoveSlot(ctx context.Context, doctorID uuid.UUID, weekday, start string) error {
	wd, err := slotgrid.ParseWeekday(weekday)
	if err != nil {
		return err
	}
	at, err := slotgrid.ParseClock(start)
	if err != nil {
		return err
	}
	return s.repo.RemoveSlot(ctx, doctorID, wd, at)
}

// MarkUnavailable closes a specific calendar date regardless of the weekday
// template.
func (s *Service) MarkUnavailable(ctx context.Context, doctorID uuid.UUID, date slotgrid.Date) error {
	return s.repo.MarkUnavailable(ctx, doctorID, date)
}

// ClearUnavailable reopens a previously closed date.
func (s *Service) ClearUnavailable(ctx context.Context, doctorID uuid.UUID, date slotgrid.Date) error {
	return s.repo.ClearUnavailable(ctx, doctorID, date)
}
