package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinic-scheduling/internal/appointment"
	"github.com/clinicdesk/clinic-scheduling/internal/availability"
	"github.com/clinicdesk/clinic-scheduling/internal/booking"
	"github.com/clinicdesk/clinic-scheduling/internal/projection"
)

type RouterConfig struct {
	Booking      *booking.Service
	Availability *availability.Service
	Store        *appointment.Store
	Projector    *projection.Projector
	PgPool       *pgxpool.Pool // nil for the memory backend
	Redis        *redis.Client // nil for the memory backend
	Env          string
	Version      string
	Logger       zerolog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Post("/bookings", createBookingHandler(cfg.Booking))
	r.Delete("/bookings/{id}", cancelBookingHandler(cfg.Booking))
	r.Post("/bookings/{id}/reschedule", rescheduleBookingHandler(cfg.Booking))
	r.Patch("/bookings/{id}/clinical", annotateBookingHandler(cfg.Booking))

	r.Post("/availability/append", appendAvailabilityHandler(cfg.Availability))
	r.Delete("/availability/slot", removeAvailabilityHandler(cfg.Availability))
	r.Post("/availability/unavailable", markUnavailableHandler(cfg.Availability, false))
	r.Delete("/availability/unavailable", markUnavailableHandler(cfg.Availability, true))
	r.Get("/availability", getAvailabilityHandler(cfg.Availability))

	r.Get("/schedule/ongoing", scheduleListHandler(cfg.Store.QueryOngoing))
	r.Get("/schedule/today", scheduleListHandler(cfg.Store.QueryToday))
	r.Get("/schedule/upcoming", scheduleListHandler(cfg.Store.QueryUpcoming))
	r.Get("/schedule/past", scheduleListHandler(cfg.Store.QueryPast))
	r.Get("/schedule/grid", scheduleGridHandler(cfg.Projector))

	return r
}
