package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/clinic-scheduling/internal/slotgrid"
	"github.com/clinicdesk/clinic-scheduling/internal/storage"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Get(ctx context.Context, doctorID uuid.UUID) (*WeeklyTemplate, error) {
	t := NewWeeklyTemplate(doctorID)

	rows, err := r.pool.Query(ctx, `
		SELECT weekday, start_minute
		FROM availability_slots
		WHERE doctor_id = $1
		ORDER BY weekday, start_minute
	`, doctorID)
	if err != nil {
		return nil, fmt.Errorf("%w: load availability slots: %w", storage.ErrUnavailable, err)
	}
	defer rows.Close()

	for rows.Next() {
		var wd string
		var startMinute int
		if err := rows.Scan(&wd, &startMinute); err != nil {
			return nil, fmt.Errorf("%w: scan availability slot: %w", storage.ErrUnavailable, err)
		}
		start := slotgrid.TimeOfDay(startMinute)
		t.Days[slotgrid.Weekday(wd)] = append(t.Days[slotgrid.Weekday(wd)], slotgrid.TimeSlot{
			Start: start,
			End:   start + slotgrid.SlotDuration,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate availability slots: %w", storage.ErrUnavailable, err)
	}

	dateRows, err := r.pool.Query(ctx, `
		SELECT off_date
		FROM unavailable_dates
		WHERE doctor_id = $1
	`, doctorID)
	if err != nil {
		return nil, fmt.Errorf("%w: load unavailable dates: %w", storage.ErrUnavailable, err)
	}
	defer dateRows.Close()

	for dateRows.Next() {
		var d time.Time
		if err := dateRows.Scan(&d); err != nil {
			return nil, fmt.Errorf("%w: scan unavailable date: %w", storage.ErrUnavailable, err)
		}
		t.Unavailable[slotgrid.DateOf(d)] = struct{}{}
	}
	if err := dateRows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate unavailable dates: %w", storage.ErrUnavailable, err)
	}

	return t, nil
}

func (r *PgRepository) AddSlots(ctx context.Context, doctorID uuid.UUID, wd slotgrid.Weekday, slots []slotgrid.TimeSlot) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin add slots: %w", storage.ErrUnavailable, err)
	}
	defer tx.Rollback(ctx)

	for _, s := range slots {
		// duplicates by start merge silently
		_, err := tx.Exec(ctx, `
			INSERT INTO availability_slots (doctor_id, weekday, start_minute)
			VALUES ($1, $2, $3)
			ON CONFLICT (doctor_id, weekday, start_minute) DO NOTHING
		`, doctorID, string(wd), int(s.Start))
		if err != nil {
			return fmt.Errorf("%w: insert availability slot: %w", storage.ErrUnavailable, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit add slots: %w", storage.ErrUnavailable, err)
	}
	return nil
}

func (r *PgRepository) RemoveSlot(ctx context.Context, doctorID uuid.UUID, wd slotgrid.Weekday, start slotgrid.TimeOfDay) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM availability_slots
		WHERE doctor_id = $1 AND weekday = $2 AND start_minute = $3
	`, doctorID, string(wd), int(start))
	if err != nil {
		return fmt.Errorf("%w: remove availability slot: %w", storage.ErrUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSlotNotFound
	}
	return nil
}

func (r *PgRepository) MarkUnavailable(ctx context.Context, doctorID uuid.UUID, date slotgrid.Date) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO unavailable_dates (doctor_id, off_date)
		VALUES ($1, $2)
		ON CONFLICT (doctor_id, off_date) DO NOTHING
	`, doctorID, date.Time())
	if err != nil {
		return fmt.Errorf("%w: mark unavailable: %w", storage.ErrUnavailable, err)
	}
	return nil
}

func (r *PgRepository) ClearUnavailable(ctx context.Context, doctorID uuid.UUID, date slotgrid.Date) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM unavailable_dates
		WHERE doctor_id = $1 AND off_date = $2
	`, doctorID, date.Time())
	if err != nil {
		return fmt.Errorf("%w: clear unavailable: %w", storage.ErrUnavailable, err)
	}
	return nil
}
