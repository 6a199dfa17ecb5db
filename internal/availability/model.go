package availability

import (
	"sort"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-scheduling/internal/slotgrid"
)

// WeeklyTemplate is a doctor's recurring availability: weekday to ordered
// slot set (unique by start), plus the calendar dates explicitly closed
// regardless of the weekday template.
type WeeklyTemplate struct {
	DoctorID    uuid.UUID
	Days        map[slotgrid.Weekday][]slotgrid.TimeSlot
	Unavailable map[slotgrid.Date]struct{}
}

func NewWeeklyTemplate(doctorID uuid.UUID) *WeeklyTemplate {
	return &WeeklyTemplate{
		DoctorID:    doctorID,
		Days:        make(map[slotgrid.Weekday][]slotgrid.TimeSlot),
		Unavailable: make(map[slotgrid.Date]struct{}),
	}
}

// HasSlot reports whether the weekday set contains a slot starting at start.
func (t *WeeklyTemplate) HasSlot(wd slotgrid.Weekday, start slotgrid.TimeOfDay) bool {
	for _, s := range t.Days[wd] {
		if s.Start == start {
			return true
		}
	}
	return false
}

// IsUnavailable reports whether the date is explicitly closed.
func (t *WeeklyTemplate) IsUnavailable(date slotgrid.Date) bool {
	_, closed := t.Unavailable[date]
	return closed
}

// UnavailableDates returns the closed dates in calendar order.
func (t *WeeklyTemplate) UnavailableDates() []slotgrid.Date {
	dates := make([]slotgrid.Date, 0, len(t.Unavailable))
	for d := range t.Unavailable {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// mergeSlots unions slots into the set, keeping it sorted and unique by
// start. Duplicates are silently merged.
func mergeSlots(existing []slotgrid.TimeSlot, added []slotgrid.TimeSlot) []slotgrid.TimeSlot {
	byStart := make(map[slotgrid.TimeOfDay]slotgrid.TimeSlot, len(existing)+len(added))
	for _, s := range existing {
		byStart[s.Start] = s
	}
	for _, s := range added {
		byStart[s.Start] = s
	}

	merged := make([]slotgrid.TimeSlot, 0, len(byStart))
	for _, s := range byStart {
		merged = append(merged, s)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Start < merged[j].Start })
	return merged
}
