package api

import (
	"time"

	"github.com/clinicdesk/clinic-scheduling/internal/appointment"
	"github.com/clinicdesk/clinic-scheduling/internal/availability"
	"github.com/clinicdesk/clinic-scheduling/internal/slotgrid"
)

type BookingRequest struct {
	DoctorID  string `json:"doctor_id"`
	PatientID string `json:"patient_id"`
	Date      string `json:"date"`
	Hour      string `json:"hour"`
	Reason    string `json:"reason"`
	IsVaccine bool   `json:"is_vaccine,omitempty"`
}

type RescheduleRequest struct {
	Date string `json:"date"`
	Hour string `json:"hour"`
}

type ClinicalRequest struct {
	Diagnosis     string `json:"diagnosis"`
	Prescription  string `json:"prescription"`
	Plan          string `json:"plan"`
	Notes         string `json:"notes"`
	ReportPending *bool  `json:"report_pending,omitempty"`
}

type AppendAvailabilityRequest struct {
	DoctorID string                     `json:"doctor_id"`
	Weekday  string                     `json:"weekday"`
	Slots    []availability.SlotRequest `json:"slots"`
}

type RemoveAvailabilityRequest struct {
	DoctorID string `json:"doctor_id"`
	Weekday  string `json:"weekday"`
	Start    string `json:"start"`
}

type UnavailableDateRequest struct {
	DoctorID string `json:"doctor_id"`
	Date     string `json:"date"`
}

// AppointmentView is an appointment plus its temporal state at response
// time.
type AppointmentView struct {
	appointment.Appointment
	State appointment.TemporalState `json:"state"`
}

func newAppointmentView(a *appointment.Appointment, now time.Time) AppointmentView {
	return AppointmentView{Appointment: *a, State: a.Classify(now)}
}

type AvailabilityResponse struct {
	DoctorID         string                                   `json:"doctor_id"`
	Days             map[slotgrid.Weekday][]slotgrid.TimeSlot `json:"days"`
	UnavailableDates []slotgrid.Date                          `json:"unavailable_dates"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}
