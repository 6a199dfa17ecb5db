package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-scheduling/internal/appointment"
	"github.com/clinicdesk/clinic-scheduling/internal/projection"
	"github.com/clinicdesk/clinic-scheduling/internal/slotgrid"
)

type queryFn func(ctx context.Context, doctorID uuid.UUID, now time.Time, f appointment.Filter) ([]appointment.Appointment, error)

func scheduleListHandler(query queryFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, err := uuid.Parse(r.URL.Query().Get("doctor_id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctor_id must be a valid UUID")
			return
		}

		filter, err := parseFilter(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}

		now := time.Now()
		appts, err := query(r.Context(), doctorID, now, filter)
		if err != nil {
			writeEngineError(w, err)
			return
		}

		views := make([]AppointmentView, 0, len(appts))
		for i := range appts {
			views = append(views, newAppointmentView(&appts[i], now))
		}
		writeJSON(w, http.StatusOK, views)
	}
}

func scheduleGridHandler(proj *projection.Projector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, err := uuid.Parse(r.URL.Query().Get("doctor_id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctor_id must be a valid UUID")
			return
		}

		from, err := slotgrid.ParseDate(r.URL.Query().Get("from"))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		to, err := slotgrid.ParseDate(r.URL.Query().Get("to"))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		if to.Before(from) {
			writeError(w, http.StatusBadRequest, "validation_error", "to must not be before from")
			return
		}

		cells, err := proj.Project(r.Context(), doctorID, from, to, time.Now())
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, cells)
	}
}

func parseFilter(r *http.Request) (appointment.Filter, error) {
	var f appointment.Filter
	if v := r.URL.Query().Get("vaccine"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return f, err
		}
		f.Vaccine = &parsed
	}
	if v := r.URL.Query().Get("report_pending"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return f, err
		}
		f.ReportPending = &parsed
	}
	return f, nil
}
