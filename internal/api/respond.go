package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/clinicdesk/clinic-scheduling/internal/appointment"
	"github.com/clinicdesk/clinic-scheduling/internal/availability"
	"github.com/clinicdesk/clinic-scheduling/internal/booking"
	"github.com/clinicdesk/clinic-scheduling/internal/conflict"
	"github.com/clinicdesk/clinic-scheduling/internal/lock"
	"github.com/clinicdesk/clinic-scheduling/internal/slotgrid"
	"github.com/clinicdesk/clinic-scheduling/internal/storage"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, details any) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

// writeEngineError maps the engine's error taxonomy onto HTTP statuses.
// Business rejections are structured results for the caller to render;
// only storage failures surface as retryable server errors.
func writeEngineError(w http.ResponseWriter, err error) {
	var c *conflict.Conflict

	switch {
	case errors.Is(err, booking.ErrTimeSlotUnavailable):
		// literal sentinel preserved for existing callers
		writeError(w, http.StatusConflict, booking.SentinelTimeSlotUnavailable, nil)
	case errors.As(err, &c):
		writeError(w, http.StatusConflict, "AVAILABILITY_CONFLICT", c)
	case errors.Is(err, availability.ErrSlotNotFound):
		writeError(w, http.StatusNotFound, "slot_not_found", err.Error())
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, slotgrid.ErrInvalidClock),
		errors.Is(err, slotgrid.ErrInvalidSlotGranularity),
		errors.Is(err, slotgrid.ErrOutsideOperatingHours),
		errors.Is(err, slotgrid.ErrInvalidDate),
		errors.Is(err, slotgrid.ErrInvalidWeekday),
		errors.Is(err, availability.ErrInvalidSlotDuration),
		errors.Is(err, booking.ErrMissingParticipant):
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, lock.ErrNotAcquired):
		writeError(w, http.StatusConflict, "doctor_schedule_busy", "schedule is being modified, please retry shortly")
	case errors.Is(err, storage.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "storage_unavailable", "transient storage failure, retry with backoff")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
