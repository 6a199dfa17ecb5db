package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-scheduling/internal/slotgrid"
)

// TemporalState is derived from the appointment's date and hour against an
// evaluation instant. It is never stored.
type TemporalState string

const (
	StatePast          TemporalState = "past"
	StateOngoing       TemporalState = "ongoing"
	StateTodayUpcoming TemporalState = "today-upcoming"
	StateFuture        TemporalState = "future"
)

// ClinicalRecord is the documentation collaborators attach after the visit.
// The engine stores it verbatim and never interprets it.
type ClinicalRecord struct {
	Diagnosis    string `json:"diagnosis,omitempty"`
	Prescription string `json:"prescription,omitempty"`
	Plan         string `json:"plan,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// Flags are boolean markers with no engine behavior beyond storage and
// filtering.
type Flags struct {
	IsVaccine     bool `json:"is_vaccine"`
	ReportPending bool `json:"report_pending"`
}

// Appointment is a concrete, dated booking of one 30-minute slot.
type Appointment struct {
	ID        uuid.UUID          `json:"id"`
	DoctorID  uuid.UUID          `json:"doctor_id"`
	PatientID uuid.UUID          `json:"patient_id"`
	Date      slotgrid.Date      `json:"date"`
	Hour      slotgrid.TimeOfDay `json:"hour"`
	Reason    string             `json:"reason"`
	Clinical  ClinicalRecord     `json:"clinical"`
	Flags     Flags              `json:"flags"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// End is the instant the appointment's slot closes.
func (a *Appointment) End() time.Time {
	return a.Date.At(a.Hour + slotgrid.SlotDuration)
}

// Classify derives the temporal state at the given instant. An appointment
// is ongoing from exactly its start until exactly its end; at the end
// boundary it is already past.
func (a *Appointment) Classify(now time.Time) TemporalState {
	today := slotgrid.DateOf(now)
	switch {
	case a.Date.Before(today):
		return StatePast
	case a.Date.After(today):
		return StateFuture
	}

	start := a.Date.At(a.Hour)
	switch {
	case !a.End().After(now):
		return StatePast
	case !start.After(now):
		return StateOngoing
	default:
		return StateTodayUpcoming
	}
}
