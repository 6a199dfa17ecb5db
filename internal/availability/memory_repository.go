package availability

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-scheduling/internal/slotgrid"
)

// MemoryRepository is a map-backed Repository used by the memory backend
// and by tests. Every read returns a deep copy so callers can't mutate the
// stored template behind the lock.
type MemoryRepository struct {
	mu        sync.RWMutex
	templates map[uuid.UUID]*WeeklyTemplate
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{templates: make(map[uuid.UUID]*WeeklyTemplate)}
}

func (r *MemoryRepository) Get(_ context.Context, doctorID uuid.UUID) (*WeeklyTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.templates[doctorID]
	if !ok {
		return NewWeeklyTemplate(doctorID), nil
	}
	return copyTemplate(t), nil
}

func (r *MemoryRepository) AddSlots(_ context.Context, doctorID uuid.UUID, wd slotgrid.Weekday, slots []slotgrid.TimeSlot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.ensure(doctorID)
	t.Days[wd] = mergeSlots(t.Days[wd], slots)
	return nil
}

func (r *MemoryRepository) RemoveSlot(_ context.Context, doctorID uuid.UUID, wd slotgrid.Weekday, start slotgrid.TimeOfDay) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.templates[doctorID]
	if !ok {
		return ErrSlotNotFound
	}

	slots := t.Days[wd]
	for i, s := range slots {
		if s.Start == start {
			t.Days[wd] = append(slots[:i:i], slots[i+1:]...)
			return nil
		}
	}
	return ErrSlotNotFound
}

func (r *MemoryRepository) MarkUnavailable(_ context.Context, doctorID uuid.UUID, date slotgrid.Date) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.ensure(doctorID)
	t.Unavailable[date] = struct{}{}
	return nil
}

func (r *MemoryRepository) ClearUnavailable(_ context.Context, doctorID uuid.UUID, date slotgrid.Date) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.templates[doctorID]; ok {
		delete(t.Unavailable, date)
	}
	return nil
}

func (r *MemoryRepository) ensure(doctorID uuid.UUID) *WeeklyTemplate {
	t, ok := r.templates[doctorID]
	if !ok {
		t = NewWeeklyTemplate(doctorID)
		r.templates[doctorID] = t
	}
	return t
}

func copyTemplate(t *WeeklyTemplate) *WeeklyTemplate {
	copied := NewWeeklyTemplate(t.DoctorID)
	for wd, slots := range t.Days {
		copied.Days[wd] = append([]slotgrid.TimeSlot(nil), slots...)
	}
	for d := range t.Unavailable {
		copied.Unavailable[d] = struct{}{}
	}
	return copied
}
