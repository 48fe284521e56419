// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"medtrack/internal/domain"

	"github.com/google/uuid"
)

// DB implements an in-memory database storage, including an in-process
// dose event channel that broadcasts inserts to live subscriptions the
// way the PostgreSQL trigger does.
type DB struct {
	mu          sync.Mutex
	users       []*domain.User
	sessions    map[string]*domain.Session
	medications []*domain.Medication
	doseLog     []domain.TakenRecord
	subs        map[int]*memSub

	doseIDCounter int64
	userIDCounter int64
	subIDCounter  int
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		sessions: make(map[string]*domain.Session),
		subs:     make(map[int]*memSub),
	}
}

// Ensure interfaces are met.
var _ domain.DoseLogRepository = (*DB)(nil)
var _ domain.DoseEvents = (*DB)(nil)
var _ domain.UserRepository = (*DB)(nil)
var _ domain.MedicationRepository = (*MedicationRepo)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)

// --- DoseLogRepository ---

// FindTakenRecord returns the record for the triple, or nil if absent.
func (db *DB) FindTakenRecord(ctx context.Context, userID int64, medicationID uuid.UUID, day domain.Day) (*domain.TakenRecord, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range db.doseLog {
		r := &db.doseLog[i]
		if r.UserID == userID && r.MedicationID == medicationID && r.Day == day {
			rec := *r
			return &rec, nil
		}
	}
	return nil, nil
}

// InsertTakenRecord inserts a record, enforcing the one-row-per-day
// uniqueness the real store has, and broadcasts the insert to matching
// subscriptions.
func (db *DB) InsertTakenRecord(ctx context.Context, userID int64, medicationID uuid.UUID, day domain.Day, createdAt time.Time) (int64, error) {
	db.mu.Lock()
	for i := range db.doseLog {
		r := &db.doseLog[i]
		if r.UserID == userID && r.MedicationID == medicationID && r.Day == day {
			db.mu.Unlock()
			return 0, domain.ErrDuplicateDay
		}
	}

	db.doseIDCounter++
	rec := domain.TakenRecord{
		ID:           db.doseIDCounter,
		UserID:       userID,
		MedicationID: medicationID,
		Day:          day,
		CreatedAt:    createdAt.UTC(),
	}
	db.doseLog = append(db.doseLog, rec)

	var notify []func(string)
	for _, sub := range db.subs {
		if sub.userID == userID && sub.medicationID == medicationID {
			notify = append(notify, sub.onInsert)
		}
	}
	db.mu.Unlock()

	// Deliver outside the lock, echoing the write back to this session's
	// own subscription as the real channel would.
	for _, fn := range notify {
		fn(day.String())
	}
	return rec.ID, nil
}

// ListTakenDays returns every recorded day for the pair in ascending order.
func (db *DB) ListTakenDays(ctx context.Context, userID int64, medicationID uuid.UUID) ([]domain.Day, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []domain.Day
	for i := range db.doseLog {
		r := &db.doseLog[i]
		if r.UserID == userID && r.MedicationID == medicationID {
			out = append(out, r.Day)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Compare(out[j]) < 0 })
	return out, nil
}

// --- DoseEvents ---

type memSub struct {
	db           *DB
	id           int
	userID       int64
	medicationID uuid.UUID
	onInsert     func(string)
	once         sync.Once
}

// Subscribe registers a callback for inserts matching the user and
// medication.
func (db *DB) Subscribe(ctx context.Context, userID int64, medicationID uuid.UUID, onInsert func(day string)) (domain.Subscription, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.subIDCounter++
	sub := &memSub{
		db:           db,
		id:           db.subIDCounter,
		userID:       userID,
		medicationID: medicationID,
		onInsert:     onInsert,
	}
	db.subs[sub.id] = sub
	return sub, nil
}

// Close removes the subscription. Safe to call more than once.
func (s *memSub) Close() error {
	s.once.Do(func() {
		s.db.mu.Lock()
		delete(s.db.subs, s.id)
		s.db.mu.Unlock()
	})
	return nil
}

// --- MedicationRepository ---

// MedicationRepo implements medication persistence.
type MedicationRepo struct {
	db *DB
}

// NewMedicationRepo creates a new medication repository.
func (db *DB) NewMedicationRepo() *MedicationRepo {
	return &MedicationRepo{db: db}
}

// FirstForUser returns the user's oldest medication, or nil if none.
func (r *MedicationRepo) FirstForUser(ctx context.Context, userID int64) (*domain.Medication, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var first *domain.Medication
	for _, m := range r.db.medications {
		if m.UserID != userID {
			continue
		}
		if first == nil || m.CreatedAt.Before(first.CreatedAt) {
			first = m
		}
	}
	if first == nil {
		return nil, nil
	}
	med := *first
	return &med, nil
}

// Create inserts a new medication series for the user.
func (r *MedicationRepo) Create(ctx context.Context, userID int64, name string) (*domain.Medication, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	m := &domain.Medication{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	r.db.medications = append(r.db.medications, m)
	med := *m
	return &med, nil
}

// --- UserRepository ---

// GetByUsername retrieves a user by username.
func (db *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

// GetByID retrieves a user by ID.
func (db *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

// Create creates a new user.
func (db *DB) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return nil, errors.New("user already exists")
		}
	}

	db.userIDCounter++
	u := &domain.User{
		ID:           db.userIDCounter,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	db.users = append(db.users, u)
	return u, nil
}

// Count returns the total number of users.
func (db *DB) Count(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.users), nil
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, userID int64, token, userAgent string, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[token] = &domain.Session{
		Token:     token,
		UserID:    userID,
		UserAgent: userAgent,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.sessions[token]; ok {
		return s, nil
	}
	return nil, nil
}

// Delete deletes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	for k, v := range r.db.sessions {
		if now.After(v.ExpiresAt) {
			delete(r.db.sessions, k)
		}
	}
	return nil
}
