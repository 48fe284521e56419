package app

import (
	"context"
	"sync"

	"medtrack/internal/domain"
)

// Tracker owns the live adherence state of the process: one
// AdherenceStore, AdherenceService and Reconciler per user, created
// lazily and torn down together. It guarantees that every reader and
// writer for a user converges on the same store, and that a user's
// realtime subscription is released when the tracker shuts down.
type Tracker struct {
	doseLog domain.DoseLogRepository
	meds    *MedicationService
	events  domain.DoseEvents

	mu       sync.Mutex
	sessions map[int64]*trackerSession
}

type trackerSession struct {
	svc *AdherenceService
	rec *Reconciler
}

// NewTracker creates a Tracker over the given ports.
func NewTracker(doseLog domain.DoseLogRepository, meds *MedicationService, events domain.DoseEvents) *Tracker {
	return &Tracker{
		doseLog:  doseLog,
		meds:     meds,
		events:   events,
		sessions: make(map[int64]*trackerSession),
	}
}

// ForUser returns the user's adherence service, building it on first use:
// resolve the medication series, load the full dose history into a fresh
// store, then start the reconciler. If two requests race to build the
// same session, the loser's resources are released and the winner's
// session is shared.
func (t *Tracker) ForUser(ctx context.Context, userID int64) (*AdherenceService, error) {
	t.mu.Lock()
	if s, ok := t.sessions[userID]; ok {
		t.mu.Unlock()
		return s.svc, nil
	}
	t.mu.Unlock()

	med, err := t.meds.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	store := NewAdherenceStore()
	svc := NewAdherenceService(t.doseLog, store, userID, med.ID)
	if err := svc.Bootstrap(ctx); err != nil {
		return nil, err
	}

	rec, err := StartReconciler(ctx, t.events, store, userID, med.ID)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.sessions[userID]; ok {
		_ = rec.Close()
		return s.svc, nil
	}
	t.sessions[userID] = &trackerSession{svc: svc, rec: rec}
	return svc, nil
}

// Medication returns the user's medication series, creating it on first
// use.
func (t *Tracker) Medication(ctx context.Context, userID int64) (*domain.Medication, error) {
	return t.meds.GetOrCreate(ctx, userID)
}

// Close tears down every session and releases all realtime subscriptions.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, s := range t.sessions {
		_ = s.rec.Close()
		delete(t.sessions, id)
	}
}
