package app

import (
	"context"
	"errors"
	"testing"

	"medtrack/internal/domain"

	"github.com/google/uuid"
)

type mockMedicationRepo struct {
	firstFn  func(ctx context.Context, userID int64) (*domain.Medication, error)
	createFn func(ctx context.Context, userID int64, name string) (*domain.Medication, error)
}

func (m *mockMedicationRepo) FirstForUser(ctx context.Context, userID int64) (*domain.Medication, error) {
	if m.firstFn != nil {
		return m.firstFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockMedicationRepo) Create(ctx context.Context, userID int64, name string) (*domain.Medication, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, name)
	}
	return &domain.Medication{ID: uuid.New(), UserID: userID, Name: name}, nil
}

func TestGetOrCreateReturnsExisting(t *testing.T) {
	existing := &domain.Medication{ID: uuid.New(), UserID: 1, Name: "Daily Medication Set"}
	repo := &mockMedicationRepo{
		firstFn: func(context.Context, int64) (*domain.Medication, error) { return existing, nil },
		createFn: func(context.Context, int64, string) (*domain.Medication, error) {
			t.Fatal("must not create when a series exists")
			return nil, nil
		},
	}
	svc := NewMedicationService(repo)

	med, err := svc.GetOrCreate(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if med.ID != existing.ID {
		t.Fatal("expected the existing series")
	}
}

func TestGetOrCreateCreatesOnFirstUse(t *testing.T) {
	repo := &mockMedicationRepo{
		createFn: func(_ context.Context, userID int64, name string) (*domain.Medication, error) {
			if name != DefaultSeriesName {
				t.Fatalf("unexpected series name %q", name)
			}
			return &domain.Medication{ID: uuid.New(), UserID: userID, Name: name}, nil
		},
	}
	svc := NewMedicationService(repo)

	med, err := svc.GetOrCreate(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if med == nil || med.UserID != 1 {
		t.Fatal("expected a freshly created series")
	}
}

func TestGetOrCreateLosesCreationRace(t *testing.T) {
	winner := &domain.Medication{ID: uuid.New(), UserID: 1, Name: DefaultSeriesName}
	first := true
	repo := &mockMedicationRepo{
		firstFn: func(context.Context, int64) (*domain.Medication, error) {
			if first {
				first = false
				return nil, nil
			}
			return winner, nil
		},
		createFn: func(context.Context, int64, string) (*domain.Medication, error) {
			return nil, errors.New("unique constraint violation")
		},
	}
	svc := NewMedicationService(repo)

	med, err := svc.GetOrCreate(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if med.ID != winner.ID {
		t.Fatal("expected the concurrent winner's series")
	}
}
