// Package conflict holds the pure decision functions that reject unsafe
// availability edits and double bookings. Both take their appointment sets
// as arguments and touch no storage, so they are unit-testable with literal
// fixtures.
package conflict

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-scheduling/internal/appointment"
	"github.com/clinicdesk/clinic-scheduling/internal/slotgrid"
)

// Conflict names the appointment blocking a proposed change, with enough
// context for a doctor to resolve it manually.
type Conflict struct {
	Weekday       slotgrid.Weekday   `json:"weekday"`
	Date          slotgrid.Date      `json:"date"`
	Start         slotgrid.TimeOfDay `json:"start"`
	AppointmentID uuid.UUID          `json:"appointment_id"`
	PatientID     uuid.UUID          `json:"patient_id"`
}

func (c *Conflict) Error() string {
	return fmt.Sprintf("slot %s on %s (%s) is taken by an appointment for patient %s",
		c.Start, c.Weekday, c.Date, c.PatientID)
}

// CheckAvailability reports whether the proposed recurring slot collides
// with any of the supplied appointments. Callers pass the weekday-filtered,
// future-dated set; the first appointment whose hour equals the proposed
// start is the conflict.
func CheckAvailability(proposed slotgrid.TimeSlot, weekdayAppointments []appointment.Appointment) *Conflict {
	for i := range weekdayAppointments {
		a := &weekdayAppointments[i]
		if a.Hour == proposed.Start {
			return &Conflict{
				Weekday:       a.Date.Weekday(),
				Date:          a.Date,
				Start:         a.Hour,
				AppointmentID: a.ID,
				PatientID:     a.PatientID,
			}
		}
	}
	return nil
}

// CheckBooking reports whether an appointment already occupies the exact
// (date, hour) key among the supplied same-date set.
func CheckBooking(date slotgrid.Date, hour slotgrid.TimeOfDay, existing []appointment.Appointment) *Conflict {
	for i := range existing {
		a := &existing[i]
		if a.Date == date && a.Hour == hour {
			return &Conflict{
				Weekday:       a.Date.Weekday(),
				Date:          a.Date,
				Start:         a.Hour,
				AppointmentID: a.ID,
				PatientID:     a.PatientID,
			}
		}
	}
	return nil
}
