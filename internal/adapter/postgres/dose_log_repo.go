package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"medtrack/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint
// violation.
const uniqueViolation = "23505"

// FindTakenRecord returns the dose log row for the triple, or nil if absent.
func (d *DB) FindTakenRecord(ctx context.Context, userID int64, medicationID uuid.UUID, day domain.Day) (*domain.TakenRecord, error) {
	row := d.sql.QueryRowContext(ctx,
		"SELECT id, created_at FROM dose_log WHERE user_id=$1 AND medication_id=$2 AND day=$3;",
		userID, medicationID, day.String(),
	)

	rec := domain.TakenRecord{UserID: userID, MedicationID: medicationID, Day: day}
	if err := row.Scan(&rec.ID, &rec.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// InsertTakenRecord inserts a dose log row. A unique-constraint conflict
// from a concurrent writer maps to domain.ErrDuplicateDay.
func (d *DB) InsertTakenRecord(ctx context.Context, userID int64, medicationID uuid.UUID, day domain.Day, createdAt time.Time) (int64, error) {
	var id int64
	err := d.sql.QueryRowContext(ctx,
		"INSERT INTO dose_log(user_id, medication_id, day, created_at) VALUES($1, $2, $3, $4) RETURNING id;",
		userID, medicationID, day.String(), createdAt.UTC(),
	).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return 0, domain.ErrDuplicateDay
		}
		return 0, err
	}
	return id, nil
}

// ListTakenDays returns every recorded day for the user/medication pair.
func (d *DB) ListTakenDays(ctx context.Context, userID int64, medicationID uuid.UUID) ([]domain.Day, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT day FROM dose_log WHERE user_id=$1 AND medication_id=$2 ORDER BY day;",
		userID, medicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.Day
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		day, err := domain.ParseDay(s)
		if err != nil {
			return nil, err
		}
		out = append(out, day)
	}
	return out, rows.Err()
}
