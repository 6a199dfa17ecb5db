package appointment

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-scheduling/internal/slotgrid"
)

// Filter narrows query results by the stored flags. Nil fields match
// everything.
type Filter struct {
	Vaccine       *bool
	ReportPending *bool
}

func (f Filter) matches(a *Appointment) bool {
	if f.Vaccine != nil && a.Flags.IsVaccine != *f.Vaccine {
		return false
	}
	if f.ReportPending != nil && a.Flags.ReportPending != *f.ReportPending {
		return false
	}
	return true
}

// Store is the durable appointment collection plus its temporal views.
type Store struct {
	repo Repository
}

func NewStore(repo Repository) *Store {
	return &Store{repo: repo}
}

func (s *Store) Insert(ctx context.Context, a *Appointment) error {
	return s.repo.Insert(ctx, a)
}

// Cancel removes the record, freeing the slot for that specific date only.
// The weekly template is untouched.
func (s *Store) Cancel(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Store) Annotate(ctx context.Context, id uuid.UUID, rec ClinicalRecord, reportPending *bool) (*Appointment, error) {
	return s.repo.UpdateClinical(ctx, id, rec, reportPending)
}

func (s *Store) ListForDate(ctx context.Context, doctorID uuid.UUID, date slotgrid.Date) ([]Appointment, error) {
	return s.repo.ListByDoctorAndDate(ctx, doctorID, date)
}

// FindByDoctorAndWeekday returns the doctor's appointments that fall on the
// given weekday on or after the evaluation date. Past appointments do not
// block future availability edits.
func (s *Store) FindByDoctorAndWeekday(ctx context.Context, doctorID uuid.UUID, wd slotgrid.Weekday, from slotgrid.Date) ([]Appointment, error) {
	all, err := s.repo.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	var result []Appointment
	for _, a := range all {
		if a.Date.Weekday() == wd && !a.Date.Before(from) {
			result = append(result, a)
		}
	}
	sortAscending(result)
	return result, nil
}

func (s *Store) QueryOngoing(ctx context.Context, doctorID uuid.UUID, now time.Time, f Filter) ([]Appointment, error) {
	return s.query(ctx, doctorID, now, f, StateOngoing, false)
}

// QueryToday returns today's not-yet-finished appointments: the ongoing one
// plus everything later today.
func (s *Store) QueryToday(ctx context.Context, doctorID uuid.UUID, now time.Time, f Filter) ([]Appointment, error) {
	return s.query(ctx, doctorID, now, f, StateOngoing, false, StateTodayUpcoming)
}

func (s *Store) QueryUpcoming(ctx context.Context, doctorID uuid.UUID, now time.Time, f Filter) ([]Appointment, error) {
	return s.query(ctx, doctorID, now, f, StateTodayUpcoming, false, StateFuture)
}

// QueryPast is ordered most recent first, matching how dashboards present
// history.
func (s *Store) QueryPast(ctx context.Context, doctorID uuid.UUID, now time.Time, f Filter) ([]Appointment, error) {
	return s.query(ctx, doctorID, now, f, StatePast, true)
}

func (s *Store) query(ctx context.Context, doctorID uuid.UUID, now time.Time, f Filter, first TemporalState, descending bool, rest ...TemporalState) ([]Appointment, error) {
	states := append([]TemporalState{first}, rest...)

	all, err := s.repo.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	var result []Appointment
	for _, a := range all {
		if !f.matches(&a) {
			continue
		}
		state := a.Classify(now)
		for _, want := range states {
			if state == want {
				result = append(result, a)
				break
			}
		}
	}

	if descending {
		sortDescending(result)
	} else {
		sortAscending(result)
	}
	return result, nil
}

func sortAscending(appts []Appointment) {
	sort.Slice(appts, func(i, j int) bool {
		if appts[i].Date != appts[j].Date {
			return appts[i].Date.Before(appts[j].Date)
		}
		return appts[i].Hour < appts[j].Hour
	})
}

func sortDescending(appts []Appointment) {
	sort.Slice(appts, func(i, j int) bool {
		if appts[i].Date != appts[j].Date {
			return appts[j].Date.Before(appts[i].Date)
		}
		return appts[i].Hour > appts[j].Hour
	})
}
