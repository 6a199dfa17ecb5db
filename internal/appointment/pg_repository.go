package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/clinic-scheduling/internal/slotgrid"
	"github.com/clinicdesk/clinic-scheduling/internal/storage"
)

const uniqueViolation = "23505"

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const appointmentColumns = `
	id, doctor_id, patient_id, appt_date, start_minute, reason,
	diagnosis, prescription, plan, notes,
	is_vaccine, report_pending, created_at, updated_at
`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var date time.Time
	var startMinute int

	err := row.Scan(
		&a.ID,
		&a.DoctorID,
		&a.PatientID,
		&date,
		&startMinute,
		&a.Reason,
		&a.Clinical.Diagnosis,
		&a.Clinical.Prescription,
		&a.Clinical.Plan,
		&a.Clinical.Notes,
		&a.Flags.IsVaccine,
		&a.Flags.ReportPending,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("%w: scan appointment: %w", storage.ErrUnavailable, err)
	}

	a.Date = slotgrid.DateOf(date)
	a.Hour = slotgrid.TimeOfDay(startMinute)
	return &a, nil
}

func (r *PgRepository) Insert(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	// The unique index on (doctor_id, appt_date, start_minute) makes the
	// occupancy check and the insert a single atomic step.
	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (
			id, doctor_id, patient_id, appt_date, start_minute, reason,
			diagnosis, prescription, plan, notes,
			is_vaccine, report_pending, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), now())
		RETURNING `+appointmentColumns,
		a.ID, a.DoctorID, a.PatientID, a.Date.Time(), int(a.Hour), a.Reason,
		a.Clinical.Diagnosis, a.Clinical.Prescription, a.Clinical.Plan, a.Clinical.Notes,
		a.Flags.IsVaccine, a.Flags.ReportPending,
	)

	stored, err := scanAppointment(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateSlot
		}
		return err
	}

	*a = *stored
	return nil
}

func (r *PgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: delete appointment: %w", storage.ErrUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) UpdateClinical(ctx context.Context, id uuid.UUID, rec ClinicalRecord, reportPending *bool) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET diagnosis = $2,
		    prescription = $3,
		    plan = $4,
		    notes = $5,
		    report_pending = COALESCE($6, report_pending),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+appointmentColumns,
		id, rec.Diagnosis, rec.Prescription, rec.Plan, rec.Notes, reportPending,
	)
	return scanAppointment(row)
}

func (r *PgRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE doctor_id = $1
		ORDER BY appt_date, start_minute
	`, doctorID)
	if err != nil {
		return nil, fmt.Errorf("%w: list appointments: %w", storage.ErrUnavailable, err)
	}
	defer rows.Close()

	return collectAppointments(rows)
}

func (r *PgRepository) ListByDoctorAndDate(ctx context.Context, doctorID uuid.UUID, date slotgrid.Date) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE doctor_id = $1 AND appt_date = $2
		ORDER BY start_minute
	`, doctorID, date.Time())
	if err != nil {
		return nil, fmt.Errorf("%w: list appointments by date: %w", storage.ErrUnavailable, err)
	}
	defer rows.Close()

	return collectAppointments(rows)
}

func collectAppointments(rows pgx.Rows) ([]Appointment, error) {
	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate appointments: %w", storage.ErrUnavailable, err)
	}
	return result, nil
}
