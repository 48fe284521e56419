package postgres

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"medtrack/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// doseLogChannel is the NOTIFY channel fed by the dose_log insert trigger.
const doseLogChannel = "dose_log_inserts"

// Listener implements domain.DoseEvents on top of PostgreSQL
// LISTEN/NOTIFY. Each subscription opens its own pq.Listener; lib/pq
// reconnects it on connection loss, and gaps in delivery are restored by
// the next full bootstrap load.
type Listener struct {
	connStr string
}

// NewListener creates a Listener for the given connection string.
func NewListener(connStr string) *Listener {
	return &Listener{connStr: connStr}
}

var _ domain.DoseEvents = (*Listener)(nil)

type doseLogPayload struct {
	UserID       int64     `json:"user_id"`
	MedicationID uuid.UUID `json:"medication_id"`
	Day          string    `json:"day"`
}

// Subscribe starts listening for dose_log inserts and invokes onInsert
// with the day string of every event matching the user and medication.
func (l *Listener) Subscribe(ctx context.Context, userID int64, medicationID uuid.UUID, onInsert func(day string)) (domain.Subscription, error) {
	pl := pq.NewListener(l.connStr, time.Second, time.Minute, nil)
	if err := pl.Listen(doseLogChannel); err != nil {
		_ = pl.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case n, ok := <-pl.Notify:
				if !ok {
					return
				}
				if n == nil {
					// Reconnect marker from lib/pq; nothing to deliver.
					continue
				}
				var p doseLogPayload
				if err := json.Unmarshal([]byte(n.Extra), &p); err != nil {
					log.Printf("dose listener: bad payload %q: %v", n.Extra, err)
					continue
				}
				if p.UserID != userID || p.MedicationID != medicationID {
					continue
				}
				onInsert(p.Day)
			}
		}
	}()

	return &listenerSub{pl: pl, done: done}, nil
}

type listenerSub struct {
	pl   *pq.Listener
	done chan struct{}
	once sync.Once
	err  error
}

// Close stops delivery and closes the underlying listener connection.
func (s *listenerSub) Close() error {
	s.once.Do(func() {
		close(s.done)
		s.err = s.pl.Close()
	})
	return s.err
}
