package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// The unique index on (doctor_id, appt_date, start_minute) is what makes the
// store's check-and-insert a single atomic step; everything else in the
// booking path leans on it.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS appointments (
		id             uuid PRIMARY KEY,
		doctor_id      uuid NOT NULL,
		patient_id     uuid NOT NULL,
		appt_date      date NOT NULL,
		start_minute   int  NOT NULL,
		reason         text NOT NULL DEFAULT '',
		diagnosis      text NOT NULL DEFAULT '',
		prescription   text NOT NULL DEFAULT '',
		plan           text NOT NULL DEFAULT '',
		notes          text NOT NULL DEFAULT '',
		is_vaccine     boolean NOT NULL DEFAULT false,
		report_pending boolean NOT NULL DEFAULT false,
		created_at     timestamptz NOT NULL DEFAULT now(),
		updated_at     timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS appointments_slot_key
		ON appointments (doctor_id, appt_date, start_minute)`,
	`CREATE INDEX IF NOT EXISTS appointments_doctor_idx
		ON appointments (doctor_id, appt_date)`,
	`CREATE TABLE IF NOT EXISTS availability_slots (
		doctor_id    uuid NOT NULL,
		weekday      text NOT NULL,
		start_minute int  NOT NULL,
		PRIMARY KEY (doctor_id, weekday, start_minute)
	)`,
	`CREATE TABLE IF NOT EXISTS unavailable_dates (
		doctor_id uuid NOT NULL,
		off_date  date NOT NULL,
		PRIMARY KEY (doctor_id, off_date)
	)`,
}

// Migrate creates the engine's tables when they do not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
