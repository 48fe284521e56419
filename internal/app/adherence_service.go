package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"medtrack/internal/domain"

	"github.com/google/uuid"
)

var (
	// ErrFutureDay indicates an attempt to mark a day after today as taken.
	ErrFutureDay = errors.New("cannot mark a future day as taken")
	// ErrLogUnavailable indicates the dose log could not be reached for a
	// non-conflict reason. The local store is left untouched and the
	// operation is safe to retry.
	ErrLogUnavailable = errors.New("dose log unavailable")
)

// AdherenceService encapsulates the adherence use cases for one
// user/medication pair: the idempotent mark-taken write path, the full
// reload on session start, and the derived metrics.
type AdherenceService struct {
	repo         domain.DoseLogRepository
	store        *AdherenceStore
	userID       int64
	medicationID uuid.UUID
	now          func() time.Time
}

// NewAdherenceService creates a service bound to one user and medication,
// backed by the given dose log and local store.
func NewAdherenceService(repo domain.DoseLogRepository, store *AdherenceStore, userID int64, medicationID uuid.UUID) *AdherenceService {
	return &AdherenceService{
		repo:         repo,
		store:        store,
		userID:       userID,
		medicationID: medicationID,
		now:          time.Now,
	}
}

// Store returns the service's adherence store, for observers such as the
// UI event stream.
func (s *AdherenceService) Store() *AdherenceStore {
	return s.store
}

// MarkTaken records that the medication was taken on day. The operation is
// idempotent: repeated calls, including concurrent ones from other
// sessions, leave exactly one durable record for the day.
//
// Days after today fail with ErrFutureDay before any I/O. The local store
// is only updated once the remote log confirms the day is durable, so a
// failed call never shows state the log does not have.
func (s *AdherenceService) MarkTaken(ctx context.Context, day domain.Day) error {
	today := domain.DayOf(s.now())
	if day.After(today) {
		return ErrFutureDay
	}

	existing, err := s.repo.FindTakenRecord(ctx, s.userID, s.medicationID, day)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLogUnavailable, err)
	}
	if existing != nil {
		// Another session already logged this day; refresh the cache.
		s.store.Add(day)
		return nil
	}

	_, err = s.repo.InsertTakenRecord(ctx, s.userID, s.medicationID, day, s.now())
	if errors.Is(err, domain.ErrDuplicateDay) {
		// A concurrent writer won the check-then-insert race. The row
		// exists either way, so the outcome is success.
		s.store.Add(day)
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLogUnavailable, err)
	}

	s.store.Add(day)
	return nil
}

// MarkTakenToday records today's dose and returns the day that was marked.
func (s *AdherenceService) MarkTakenToday(ctx context.Context) (domain.Day, error) {
	today := domain.DayOf(s.now())
	return today, s.MarkTaken(ctx, today)
}

// Bootstrap replaces the local store with the full set of taken days from
// the dose log. Run on session start and whenever a full resync is needed,
// e.g. after a gap in realtime delivery.
func (s *AdherenceService) Bootstrap(ctx context.Context) error {
	days, err := s.repo.ListTakenDays(ctx, s.userID, s.medicationID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLogUnavailable, err)
	}
	s.store.Load(days)
	return nil
}

// Summary is the derived adherence state shown on the dashboard.
type Summary struct {
	Today          string `json:"today"`
	TakenToday     bool   `json:"takenToday"`
	Streak         int    `json:"streak"`
	CompletionRate int    `json:"completionRate"`
	TotalDays      int    `json:"totalDays"`
}

// Summary computes the current metrics from the local store.
func (s *AdherenceService) Summary() Summary {
	today := domain.DayOf(s.now())
	return Summary{
		Today:          today.String(),
		TakenToday:     s.store.Has(today),
		Streak:         Streak(s.store, today),
		CompletionRate: CompletionRate(s.store, DefaultWindowDays),
		TotalDays:      s.store.Size(),
	}
}

// Days returns the taken days in ascending order.
func (s *AdherenceService) Days() []domain.Day {
	return s.store.Snapshot()
}
