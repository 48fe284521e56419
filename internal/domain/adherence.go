package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrDuplicateDay reports an insert for a (user, medication, day) triple
// that already has a dose log row. The write path treats it as
// confirmation that the day is recorded, not as a failure.
var ErrDuplicateDay = errors.New("dose already logged for day")

// TakenRecord is the durable fact that a user confirmed taking their
// medication on a given day. Created at most once per
// (user, medication, day); never updated or deleted.
type TakenRecord struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"userId"`
	MedicationID uuid.UUID `json:"medicationId"`
	Day          Day       `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// DoseLogRepository is the port for dose log persistence. The remote log
// is the durable source of truth; local state is a read-through cache
// rebuilt from ListTakenDays on session start.
type DoseLogRepository interface {
	// FindTakenRecord returns the record for the triple, or nil if absent.
	FindTakenRecord(ctx context.Context, userID int64, medicationID uuid.UUID, day Day) (*TakenRecord, error)
	// InsertTakenRecord inserts a new record and returns its ID. Returns
	// ErrDuplicateDay if a record for the triple already exists.
	InsertTakenRecord(ctx context.Context, userID int64, medicationID uuid.UUID, day Day, createdAt time.Time) (int64, error)
	// ListTakenDays returns every recorded day for the pair.
	ListTakenDays(ctx context.Context, userID int64, medicationID uuid.UUID) ([]Day, error)
}

// DoseEvents is the port for the realtime notification channel. Subscribe
// delivers the day string of every dose log row inserted for the given
// user and medication, from this or any other session, until the returned
// subscription is closed.
type DoseEvents interface {
	Subscribe(ctx context.Context, userID int64, medicationID uuid.UUID, onInsert func(day string)) (Subscription, error)
}

// Subscription is a live realtime subscription. Close releases it and is
// safe to call more than once.
type Subscription interface {
	Close() error
}
