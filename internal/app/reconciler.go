package app

import (
	"context"
	"log"
	"sync"

	"medtrack/internal/domain"

	"github.com/google/uuid"
)

// Reconciler merges dose log insert events pushed by other sessions into
// the local AdherenceStore. Store membership is idempotent, so events that
// duplicate known state, including this session's own writes echoed back
// through the channel, are absorbed without extra observer notifications.
//
// A Reconciler is bound to one user, medication and store for its whole
// life. Switching user or medication means closing it and starting a new
// one; a closed reconciler never mutates its store again.
type Reconciler struct {
	sub  domain.Subscription
	once sync.Once
	err  error
}

// StartReconciler subscribes to the event channel and begins merging
// events into store until Close is called.
func StartReconciler(ctx context.Context, events domain.DoseEvents, store *AdherenceStore, userID int64, medicationID uuid.UUID) (*Reconciler, error) {
	sub, err := events.Subscribe(ctx, userID, medicationID, func(day string) {
		d, perr := domain.ParseDay(day)
		if perr != nil {
			log.Printf("reconciler: dropping malformed day %q: %v", day, perr)
			return
		}
		store.Add(d)
	})
	if err != nil {
		return nil, err
	}
	return &Reconciler{sub: sub}, nil
}

// Close releases the subscription. Safe to call more than once.
func (r *Reconciler) Close() error {
	r.once.Do(func() { r.err = r.sub.Close() })
	return r.err
}
