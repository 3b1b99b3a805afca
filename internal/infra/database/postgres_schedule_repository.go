// internal/infra/database/postgres_schedule_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"medication_notifier/internal/domain/page"
	"medication_notifier/internal/domain/schedule"
)

var ErrScheduleNotFound = fmt.Errorf("schedule not found")
var ErrCompletedEventNotFound = fmt.Errorf("completed event not found")

type PostgresScheduleRepository struct {
	db *sql.DB
}

func NewPostgresScheduleRepository(db *sql.DB) *PostgresScheduleRepository {
	return &PostgresScheduleRepository{db: db}
}

const scheduleColumns = `id, medication_id, user_id, start_date, end_date, interval_days, time_of_day_seconds, dose, description, created_at, updated_at`

// dateOnly strips the time of day before an instant is compared against
// the DATE period columns. Without it a schedule is dropped on its
// inclusive end date: end_date at midnight sorts before any same-day
// instant.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func scanSchedule(row interface{ Scan(...any) error }) (*schedule.Schedule, error) {
	s := schedule.Schedule{}
	var seconds int64
	err := row.Scan(
		&s.ID, &s.MedicationID, &s.UserID, &s.StartDate, &s.EndDate,
		&s.IntervalDays, &seconds, &s.Dose, &s.Description, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.TimeOfDay = time.Duration(seconds) * time.Second
	return &s, nil
}

func (r *PostgresScheduleRepository) GetByID(ctx context.Context, id int64) (*schedule.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE id = $1`
	s, err := scanSchedule(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("error getting schedule by ID: %w", err)
	}
	return s, nil
}

func (r *PostgresScheduleRepository) ListActivePairs(ctx context.Context, asOf time.Time, req page.Request) ([]schedule.Pair, error) {
	query := `SELECT DISTINCT user_id, medication_id FROM schedules
               WHERE start_date <= $1 AND (end_date IS NULL OR end_date >= $1)
               ORDER BY user_id, medication_id
               LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, dateOnly(asOf), req.Size, req.Offset())
	if err != nil {
		return nil, fmt.Errorf("error querying active schedule pairs: %w", err)
	}
	defer rows.Close()

	pairs := make([]schedule.Pair, 0)
	for rows.Next() {
		var p schedule.Pair
		if err := rows.Scan(&p.UserID, &p.MedicationID); err != nil {
			return nil, fmt.Errorf("error scanning schedule pair row: %w", err)
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedule pair rows: %w", err)
	}
	return pairs, nil
}

func (r *PostgresScheduleRepository) ListOverlapping(ctx context.Context, from, to time.Time, req page.Request) ([]*schedule.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules
               WHERE start_date <= $2 AND (end_date IS NULL OR end_date >= $1)
               ORDER BY id
               LIMIT $3 OFFSET $4`
	rows, err := r.db.QueryContext(ctx, query, dateOnly(from), dateOnly(to), req.Size, req.Offset())
	if err != nil {
		return nil, fmt.Errorf("error querying overlapping schedules: %w", err)
	}
	defer rows.Close()
	return scanSchedules(rows)
}

func (r *PostgresScheduleRepository) ListForUserAndMedication(ctx context.Context, userID, medicationID int64, asOf time.Time) ([]*schedule.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules
               WHERE user_id = $1 AND medication_id = $2
                 AND start_date <= $3 AND (end_date IS NULL OR end_date >= $3)
               ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, userID, medicationID, dateOnly(asOf))
	if err != nil {
		return nil, fmt.Errorf("error querying schedules for user and medication: %w", err)
	}
	defer rows.Close()
	return scanSchedules(rows)
}

func scanSchedules(rows *sql.Rows) ([]*schedule.Schedule, error) {
	schedules := make([]*schedule.Schedule, 0)
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning schedule row: %w", err)
		}
		schedules = append(schedules, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedule rows: %w", err)
	}
	return schedules, nil
}

// --- CompletedEvent methods ---

func (r *PostgresScheduleRepository) GetCompletedEvent(ctx context.Context, scheduleID int64, targetAt time.Time) (*schedule.CompletedEvent, error) {
	query := `SELECT id, schedule_id, user_id, target_at, dose_taken, completed_at
               FROM completed_events WHERE schedule_id = $1 AND target_at = $2`
	ev := schedule.CompletedEvent{}
	err := r.db.QueryRowContext(ctx, query, scheduleID, targetAt).Scan(
		&ev.ID, &ev.ScheduleID, &ev.UserID, &ev.TargetAt, &ev.DoseTaken, &ev.CompletedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCompletedEventNotFound
		}
		return nil, fmt.Errorf("error getting completed event: %w", err)
	}
	return &ev, nil
}

func (r *PostgresScheduleRepository) CreateCompletedEvent(ctx context.Context, ev *schedule.CompletedEvent) error {
	query := `INSERT INTO completed_events (schedule_id, user_id, target_at, dose_taken, completed_at)
               VALUES ($1, $2, $3, $4, $5)
               RETURNING id`
	err := r.db.QueryRowContext(ctx, query, ev.ScheduleID, ev.UserID, ev.TargetAt, ev.DoseTaken, ev.CompletedAt).Scan(&ev.ID)
	if err != nil {
		return fmt.Errorf("error creating completed event: %w", err)
	}
	return nil
}

func (r *PostgresScheduleRepository) DeleteCompletedEvent(ctx context.Context, scheduleID int64, targetAt time.Time) error {
	query := `DELETE FROM completed_events WHERE schedule_id = $1 AND target_at = $2`
	res, err := r.db.ExecContext(ctx, query, scheduleID, targetAt)
	if err != nil {
		return fmt.Errorf("error deleting completed event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking deleted completed event rows: %w", err)
	}
	if affected == 0 {
		return ErrCompletedEventNotFound
	}
	return nil
}
