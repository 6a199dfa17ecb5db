package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinic-scheduling/internal/api"
	"github.com/clinicdesk/clinic-scheduling/internal/appointment"
	"github.com/clinicdesk/clinic-scheduling/internal/availability"
	"github.com/clinicdesk/clinic-scheduling/internal/booking"
	"github.com/clinicdesk/clinic-scheduling/internal/config"
	"github.com/clinicdesk/clinic-scheduling/internal/db"
	"github.com/clinicdesk/clinic-scheduling/internal/lock"
	"github.com/clinicdesk/clinic-scheduling/internal/projection"
	redisclient "github.com/clinicdesk/clinic-scheduling/internal/redis"
)

const version = "1.2.0"

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Str("service", "api-server").Logger()
	log.Info().Msg("api-server starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load error")
	}

	log.Info().
		Str("env", cfg.Env).
		Str("http_port", cfg.HTTPPort).
		Str("backend", cfg.StoreBackend).
		Int("open_hour", cfg.OpenHour).
		Int("close_hour", cfg.CloseHour).
		Msg("configured")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		apptRepo  appointment.Repository
		availRepo availability.Repository
		locker    lock.Locker
		pgPool    *pgxpool.Pool
		rdb       *redis.Client
	)

	switch cfg.StoreBackend {
	case config.BackendPostgres:
		pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
		pgPool, err = db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
		cancelPg()
		if err != nil {
			log.Fatal().Err(err).Msg("postgres connection error")
		}
		defer pgPool.Close()

		if err := db.Migrate(rootCtx, pgPool); err != nil {
			log.Fatal().Err(err).Msg("schema migration error")
		}
		log.Info().Msg("connected to Postgres")

		rdb, err = redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection error")
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Warn().Err(err).Msg("error closing redis")
			}
		}()
		log.Info().Msg("connected to Redis")

		apptRepo = appointment.NewPgRepository(pgPool)
		availRepo = availability.NewPgRepository(pgPool)
		locker = redisclient.NewDoctorLocker(rdb, cfg.LockTTL)

	case config.BackendMemory:
		log.Info().Msg("using in-memory store")
		apptRepo = appointment.NewMemoryRepository()
		availRepo = availability.NewMemoryRepository()
		locker = lock.NewKeyedMutex()
	}

	window := cfg.Window()
	store := appointment.NewStore(apptRepo)
	availSvc := availability.NewService(availRepo, store, locker, window, log)
	bookingSvc := booking.NewService(store, availRepo, locker, window, log)
	projector := projection.NewProjector(availRepo, store, window)

	router := api.NewRouter(api.RouterConfig{
		Booking:      bookingSvc,
		Availability: availSvc,
		Store:        store,
		Projector:    projector,
		PgPool:       pgPool,
		Redis:        rdb,
		Env:          cfg.Env,
		Version:      version,
		Logger:       log,
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-rootCtx.Done()
	log.Info().Msg("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
