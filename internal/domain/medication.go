package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Medication is a user's daily medication series. The tracker models
// exactly one series per user, auto-created on first use.
type Medication struct {
	ID        uuid.UUID `json:"id"`
	UserID    int64     `json:"userId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// MedicationRepository is the port for medication persistence.
type MedicationRepository interface {
	// FirstForUser returns the user's oldest medication, or nil if none.
	FirstForUser(ctx context.Context, userID int64) (*Medication, error)
	// Create inserts a new medication series for the user.
	Create(ctx context.Context, userID int64, name string) (*Medication, error)
}
