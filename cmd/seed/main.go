package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinic-scheduling/internal/appointment"
	"github.com/clinicdesk/clinic-scheduling/internal/availability"
	"github.com/clinicdesk/clinic-scheduling/internal/db"
	"github.com/clinicdesk/clinic-scheduling/internal/slotgrid"
)

const (
	doctorCount      = 40
	patientCount     = 400
	appointmentsEach = 12
)

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Str("service", "seed").Logger()
	log.Info().Msg("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal().Msg("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := db.ConnectPostgres(ctx, dsn)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	if err := db.Migrate(context.Background(), pool); err != nil {
		log.Fatal().Err(err).Msg("migrate schema")
	}

	gofakeit.Seed(time.Now().UnixNano())

	availRepo := availability.NewPgRepository(pool)
	apptRepo := appointment.NewPgRepository(pool)
	window := slotgrid.DefaultWindow

	patients := make([]uuid.UUID, patientCount)
	for i := range patients {
		patients[i] = uuid.New()
	}

	seeded := 0
	for i := 0; i < doctorCount; i++ {
		doctorID := uuid.New()

		template := seedTemplate(context.Background(), log, availRepo, doctorID, window)
		seeded += seedAppointments(context.Background(), log, apptRepo, doctorID, patients, template)
	}

	log.Info().
		Int("doctors", doctorCount).
		Int("appointments", seeded).
		Msg("seed complete")
}

// seedTemplate gives the doctor a plausible working week: a contiguous run
// of morning and afternoon slots on a random set of weekdays.
func seedTemplate(ctx context.Context, log zerolog.Logger, repo *availability.PgRepository, doctorID uuid.UUID, window slotgrid.Window) map[slotgrid.Weekday][]slotgrid.TimeSlot {
	canonical := window.Enumerate()
	template := make(map[slotgrid.Weekday][]slotgrid.TimeSlot)

	for _, wd := range slotgrid.Weekdays {
		if wd == slotgrid.Sunday || gofakeit.Number(0, 4) == 0 {
			continue // closed that day
		}

		first := gofakeit.Number(0, 3)
		count := gofakeit.Number(6, len(canonical)-first)
		slots := canonical[first : first+count]

		if err := repo.AddSlots(ctx, doctorID, wd, slots); err != nil {
			log.Fatal().Err(err).Str("weekday", string(wd)).Msg("seed availability")
		}
		template[wd] = slots
	}
	return template
}

func seedAppointments(ctx context.Context, log zerolog.Logger, repo *appointment.PgRepository, doctorID uuid.UUID, patients []uuid.UUID, template map[slotgrid.Weekday][]slotgrid.TimeSlot) int {
	today := slotgrid.DateOf(time.Now())
	created := 0

	for attempts := 0; created < appointmentsEach && attempts < appointmentsEach*4; attempts++ {
		date := today.AddDays(gofakeit.Number(-14, 21))
		slots := template[date.Weekday()]
		if len(slots) == 0 {
			continue
		}
		slot := slots[gofakeit.Number(0, len(slots)-1)]

		appt := &appointment.Appointment{
			DoctorID:  doctorID,
			PatientID: patients[gofakeit.Number(0, len(patients)-1)],
			Date:      date,
			Hour:      slot.Start,
			Reason:    gofakeit.Sentence(6),
			Flags: appointment.Flags{
				IsVaccine:     gofakeit.Number(0, 9) == 0,
				ReportPending: gofakeit.Number(0, 5) == 0,
			},
		}

		err := repo.Insert(ctx, appt)
		if errors.Is(err, appointment.ErrDuplicateSlot) {
			continue // slot taken by an earlier iteration, pick again
		}
		if err != nil {
			log.Fatal().Err(err).Msg("seed appointment")
		}
		created++
	}
	return created
}
