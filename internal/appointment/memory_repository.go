package appointment

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-scheduling/internal/slotgrid"
)

type slotKey struct {
	doctor uuid.UUID
	date   slotgrid.Date
	hour   slotgrid.TimeOfDay
}

// MemoryRepository is a map-backed Repository. The mutex around the
// occupancy index makes Insert's check-and-claim atomic per key, so it
// satisfies the same uniqueness contract as the Postgres unique index.
type MemoryRepository struct {
	mu       sync.RWMutex
	byID     map[uuid.UUID]*Appointment
	occupied map[slotKey]uuid.UUID
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:     make(map[uuid.UUID]*Appointment),
		occupied: make(map[slotKey]uuid.UUID),
	}
}

func (r *MemoryRepository) Insert(_ context.Context, a *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := slotKey{doctor: a.DoctorID, date: a.Date, hour: a.Hour}
	if _, taken := r.occupied[key]; taken {
		return ErrDuplicateSlot
	}

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now

	stored := *a
	r.byID[a.ID] = &stored
	r.occupied[key] = a.ID
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return ErrAppointmentNotFound
	}
	delete(r.byID, id)
	delete(r.occupied, slotKey{doctor: a.DoctorID, date: a.Date, hour: a.Hour})
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	copied := *a
	return &copied, nil
}

func (r *MemoryRepository) UpdateClinical(_ context.Context, id uuid.UUID, rec ClinicalRecord, reportPending *bool) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	a.Clinical = rec
	if reportPending != nil {
		a.Flags.ReportPending = *reportPending
	}
	a.UpdatedAt = time.Now()

	copied := *a
	return &copied, nil
}

func (r *MemoryRepository) ListByDoctor(_ context.Context, doctorID uuid.UUID) ([]Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Appointment
	for _, a := range r.byID {
		if a.DoctorID == doctorID {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (r *MemoryRepository) ListByDoctorAndDate(_ context.Context, doctorID uuid.UUID, date slotgrid.Date) ([]Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Appointment
	for _, a := range r.byID {
		if a.DoctorID == doctorID && a.Date == date {
			result = append(result, *a)
		}
	}
	return result, nil
}
