package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"medtrack/internal/domain"

	"github.com/google/uuid"
)

// MedicationRepo implements medication repository operations on DB.
type MedicationRepo struct {
	db *DB
}

// NewMedicationRepo wraps a DB as a MedicationRepository.
func NewMedicationRepo(db *DB) *MedicationRepo {
	return &MedicationRepo{db: db}
}

// FirstForUser returns the user's oldest medication series, or nil if the
// user has none yet.
func (r *MedicationRepo) FirstForUser(ctx context.Context, userID int64) (*domain.Medication, error) {
	row := r.db.sql.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM medications WHERE user_id=$1 ORDER BY created_at, id LIMIT 1;",
		userID,
	)

	med := domain.Medication{UserID: userID}
	if err := row.Scan(&med.ID, &med.Name, &med.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &med, nil
}

// Create inserts a new medication series for the user.
func (r *MedicationRepo) Create(ctx context.Context, userID int64, name string) (*domain.Medication, error) {
	med := domain.Medication{
		ID:     uuid.New(),
		UserID: userID,
		Name:   name,
	}
	err := r.db.sql.QueryRowContext(ctx,
		"INSERT INTO medications(id, user_id, name, created_at) VALUES($1, $2, $3, $4) RETURNING created_at;",
		med.ID, userID, name, time.Now().UTC(),
	).Scan(&med.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &med, nil
}
