// Package projection builds display-ready schedule grids by merging a
// doctor's weekly template with the dated appointments on record. It is a
// pure read; grids may be momentarily stale relative to concurrent writes,
// which is acceptable for display.
package projection

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-scheduling/internal/appointment"
	"github.com/clinicdesk/clinic-scheduling/internal/availability"
	"github.com/clinicdesk/clinic-scheduling/internal/slotgrid"
)

// CellStatus is the display state of one (date, slot) cell.
type CellStatus string

const (
	StatusAvailable      CellStatus = "available"
	StatusBookedPast     CellStatus = "booked-past"
	StatusBookedUpcoming CellStatus = "booked-upcoming"
	StatusUnavailable    CellStatus = "unavailable"
)

type Cell struct {
	Date   slotgrid.Date     `json:"date"`
	Slot   slotgrid.TimeSlot `json:"slot"`
	Status CellStatus        `json:"status"`
	ApptID *uuid.UUID        `json:"appointment_id,omitempty"`
}

type Projector struct {
	avail  availability.Repository
	store  *appointment.Store
	window slotgrid.Window
}

func NewProjector(avail availability.Repository, store *appointment.Store, window slotgrid.Window) *Projector {
	return &Projector{avail: avail, store: store, window: window}
}

// Project renders the grid for every date in [from, to]. For each canonical
// slot the booked appointment wins; otherwise template membership decides
// between available and unavailable, with explicitly closed dates
// unavailable throughout.
func (p *Projector) Project(ctx context.Context, doctorID uuid.UUID, from, to slotgrid.Date, now time.Time) ([]Cell, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("invalid range: %s is before %s", to, from)
	}

	template, err := p.avail.Get(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("load template: %w", err)
	}

	canonical := p.window.Enumerate()

	var cells []Cell
	for date := from; !date.After(to); date = date.AddDays(1) {
		appts, err := p.store.ListForDate(ctx, doctorID, date)
		if err != nil {
			return nil, fmt.Errorf("load appointments for %s: %w", date, err)
		}

		booked := make(map[slotgrid.TimeOfDay]*appointment.Appointment, len(appts))
		for i := range appts {
			booked[appts[i].Hour] = &appts[i]
		}

		wd := date.Weekday()
		closed := template.IsUnavailable(date)

		for _, slot := range canonical {
			cell := Cell{Date: date, Slot: slot, Status: StatusUnavailable}

			if a, ok := booked[slot.Start]; ok {
				id := a.ID
				cell.ApptID = &id
				if a.Classify(now) == appointment.StatePast {
					cell.Status = StatusBookedPast
				} else {
					cell.Status = StatusBookedUpcoming
				}
			} else if !closed && template.HasSlot(wd, slot.Start) {
				cell.Status = StatusAvailable
			}

			cells = append(cells, cell)
		}
	}
	return cells, nil
}
