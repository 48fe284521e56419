package app

import (
	"sort"
	"sync"

	"medtrack/internal/domain"
)

// AdherenceStore is the in-memory set of days marked taken for one
// user/medication pair. It is the session's single source of truth: the
// mark-taken path and the realtime reconciler both converge on it, and
// membership is a set union, so updates are safe to interleave in any
// order. Readers (metrics, UI) pull from it via Has/Snapshot.
type AdherenceStore struct {
	mu        sync.Mutex
	days      map[domain.Day]struct{}
	observers map[int]func(domain.Day)
	nextObsID int
}

// NewAdherenceStore creates an empty store.
func NewAdherenceStore() *AdherenceStore {
	return &AdherenceStore{
		days:      make(map[domain.Day]struct{}),
		observers: make(map[int]func(domain.Day)),
	}
}

// Has reports whether d is marked taken.
func (s *AdherenceStore) Has(d domain.Day) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.days[d]
	return ok
}

// Size returns the number of taken days.
func (s *AdherenceStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.days)
}

// Add inserts d and reports whether it was newly added. Observers are
// notified only on the first insert of a day, so duplicate adds are
// invisible to them. Callbacks run outside the store's lock and may read
// the store.
func (s *AdherenceStore) Add(d domain.Day) bool {
	s.mu.Lock()
	if _, ok := s.days[d]; ok {
		s.mu.Unlock()
		return false
	}
	s.days[d] = struct{}{}
	obs := make([]func(domain.Day), 0, len(s.observers))
	for _, fn := range s.observers {
		obs = append(obs, fn)
	}
	s.mu.Unlock()

	for _, fn := range obs {
		fn(d)
	}
	return true
}

// Load replaces the set wholesale. Used on session bootstrap and full
// resync; observers are not notified per key.
func (s *AdherenceStore) Load(days []domain.Day) {
	next := make(map[domain.Day]struct{}, len(days))
	for _, d := range days {
		next[d] = struct{}{}
	}
	s.mu.Lock()
	s.days = next
	s.mu.Unlock()
}

// Snapshot returns the taken days in ascending order. The slice is a copy.
func (s *AdherenceStore) Snapshot() []domain.Day {
	s.mu.Lock()
	out := make([]domain.Day, 0, len(s.days))
	for d := range s.days {
		out = append(out, d)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Compare(out[j]) < 0 })
	return out
}

// Subscribe registers fn to be called for every newly added day and
// returns a function that removes the registration.
func (s *AdherenceStore) Subscribe(fn func(domain.Day)) func() {
	s.mu.Lock()
	id := s.nextObsID
	s.nextObsID++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}
