package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-scheduling/internal/availability"
	"github.com/clinicdesk/clinic-scheduling/internal/slotgrid"
)

func appendAvailabilityHandler(svc *availability.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AppendAvailabilityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		doctorID, err := uuid.Parse(req.DoctorID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctor_id must be a valid UUID")
			return
		}
		if len(req.Slots) == 0 {
			writeError(w, http.StatusBadRequest, "validation_error", "slots must not be empty")
			return
		}

		if err := svc.AddSlots(r.Context(), doctorID, req.Weekday, req.Slots); err != nil {
			writeEngineError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func removeAvailabilityHandler(svc *availability.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RemoveAvailabilityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		doctorID, err := uuid.Parse(req.DoctorID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctor_id must be a valid UUID")
			return
		}

		if err := svc.RemoveSlot(r.Context(), doctorID, req.Weekday, req.Start); err != nil {
			writeEngineError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func markUnavailableHandler(svc *availability.Service, clear bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UnavailableDateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		doctorID, err := uuid.Parse(req.DoctorID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctor_id must be a valid UUID")
			return
		}
		date, err := slotgrid.ParseDate(req.Date)
		if err != nil {
			writeEngineError(w, err)
			return
		}

		if clear {
			err = svc.ClearUnavailable(r.Context(), doctorID, date)
		} else {
			err = svc.MarkUnavailable(r.Context(), doctorID, date)
		}
		if err != nil {
			writeEngineError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func getAvailabilityHandler(svc *availability.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, err := uuid.Parse(r.URL.Query().Get("doctor_id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctor_id must be a valid UUID")
			return
		}

		template, err := svc.Get(r.Context(), doctorID)
		if err != nil {
			writeEngineError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, AvailabilityResponse{
			DoctorID:         doctorID.String(),
			Days:             template.Days,
			UnavailableDates: template.UnavailableDates(),
		})
	}
}
