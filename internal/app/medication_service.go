package app

import (
	"context"

	"medtrack/internal/domain"
)

// DefaultSeriesName is the name given to a user's auto-created medication
// series.
const DefaultSeriesName = "Daily Medication Set"

// MedicationService manages the user's single daily medication series.
type MedicationService struct {
	repo domain.MedicationRepository
}

// NewMedicationService creates a MedicationService backed by the given
// repository.
func NewMedicationService(repo domain.MedicationRepository) *MedicationService {
	return &MedicationService{repo: repo}
}

// GetOrCreate returns the user's medication series, creating it on first
// use. If creation loses a race with another session, the winner's series
// is returned.
func (s *MedicationService) GetOrCreate(ctx context.Context, userID int64) (*domain.Medication, error) {
	med, err := s.repo.FirstForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if med != nil {
		return med, nil
	}

	med, err = s.repo.Create(ctx, userID, DefaultSeriesName)
	if err != nil {
		if existing, ferr := s.repo.FirstForUser(ctx, userID); ferr == nil && existing != nil {
			return existing, nil
		}
		return nil, err
	}
	return med, nil
}
