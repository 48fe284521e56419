package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"medtrack/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

type mockUserRepo struct {
	getByUsernameFn func(ctx context.Context, username string) (*domain.User, error)
	getByIDFn       func(ctx context.Context, id int64) (*domain.User, error)
	createFn        func(ctx context.Context, username, passwordHash string) (*domain.User, error)
	countFn         func(ctx context.Context) (int, error)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, username, passwordHash)
	}
	return &domain.User{ID: 1, Username: username, PasswordHash: passwordHash}, nil
}

func (m *mockUserRepo) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

type mockSessionRepo struct {
	createFn     func(ctx context.Context, userID int64, token, userAgent string, expiresAt time.Time) error
	getByTokenFn func(ctx context.Context, token string) (*domain.Session, error)
	deleteFn     func(ctx context.Context, token string) error
}

func (m *mockSessionRepo) Create(ctx context.Context, userID int64, token, userAgent string, expiresAt time.Time) error {
	if m.createFn != nil {
		return m.createFn(ctx, userID, token, userAgent, expiresAt)
	}
	return nil
}

func (m *mockSessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	if m.getByTokenFn != nil {
		return m.getByTokenFn(ctx, token)
	}
	return nil, nil
}

func (m *mockSessionRepo) Delete(ctx context.Context, token string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, token)
	}
	return nil
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context) error {
	return nil
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	return string(h)
}

func TestLoginSuccess(t *testing.T) {
	hash := hashOf(t, "secret")
	var createdToken string
	users := &mockUserRepo{
		getByUsernameFn: func(_ context.Context, username string) (*domain.User, error) {
			return &domain.User{ID: 1, Username: username, PasswordHash: hash}, nil
		},
	}
	sessions := &mockSessionRepo{
		createFn: func(_ context.Context, userID int64, token, userAgent string, _ time.Time) error {
			if userID != 1 || userAgent != "test-agent" {
				t.Fatalf("unexpected session for user %d agent %q", userID, userAgent)
			}
			createdToken = token
			return nil
		},
	}

	svc := NewAuthService(users, sessions)
	token, err := svc.Login(context.Background(), "alice", "secret", "test-agent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" || token != createdToken {
		t.Fatal("expected the created session token to be returned")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	hash := hashOf(t, "secret")
	users := &mockUserRepo{
		getByUsernameFn: func(_ context.Context, username string) (*domain.User, error) {
			return &domain.User{ID: 1, Username: username, PasswordHash: hash}, nil
		},
	}

	svc := NewAuthService(users, &mockSessionRepo{})
	if _, err := svc.Login(context.Background(), "alice", "wrong", "ua"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	svc := NewAuthService(&mockUserRepo{}, &mockSessionRepo{})
	if _, err := svc.Login(context.Background(), "nobody", "pw", "ua"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestValidateSession(t *testing.T) {
	user := &domain.User{ID: 7, Username: "alice"}

	tests := []struct {
		name    string
		session *domain.Session
		agent   string
		wantErr error
	}{
		{"valid", &domain.Session{Token: "t", UserID: 7, UserAgent: "ua", ExpiresAt: time.Now().Add(time.Hour)}, "ua", nil},
		{"missing", nil, "ua", ErrSessionNotFound},
		{"expired", &domain.Session{Token: "t", UserID: 7, UserAgent: "ua", ExpiresAt: time.Now().Add(-time.Hour)}, "ua", ErrSessionExpired},
		{"agent mismatch", &domain.Session{Token: "t", UserID: 7, UserAgent: "ua", ExpiresAt: time.Now().Add(time.Hour)}, "other", ErrSessionExpired},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			users := &mockUserRepo{
				getByIDFn: func(context.Context, int64) (*domain.User, error) { return user, nil },
			}
			sessions := &mockSessionRepo{
				getByTokenFn: func(context.Context, string) (*domain.Session, error) { return tc.session, nil },
			}
			svc := NewAuthService(users, sessions)

			got, err := svc.ValidateSession(context.Background(), "t", tc.agent)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.ID != user.ID {
				t.Fatalf("expected user %d, got %d", user.ID, got.ID)
			}
		})
	}
}

func TestCreateInitialUserOnlyWhenEmpty(t *testing.T) {
	created := 0
	users := &mockUserRepo{
		countFn: func(context.Context) (int, error) { return 0, nil },
		createFn: func(_ context.Context, username, passwordHash string) (*domain.User, error) {
			created++
			if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte("pw")); err != nil {
				t.Fatal("password not hashed with bcrypt")
			}
			return &domain.User{ID: 1, Username: username}, nil
		},
	}
	svc := NewAuthService(users, &mockSessionRepo{})

	if err := svc.CreateInitialUser(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created != 1 {
		t.Fatalf("expected 1 user created, got %d", created)
	}

	users.countFn = func(context.Context) (int, error) { return 1, nil }
	if err := svc.CreateInitialUser(context.Background(), "bob", "pw"); err == nil {
		t.Fatal("expected error when users already exist")
	}
}

func TestLoginWithUserProvisionsMissingAccount(t *testing.T) {
	var provisioned *domain.User
	users := &mockUserRepo{
		getByUsernameFn: func(context.Context, string) (*domain.User, error) {
			return provisioned, nil
		},
		createFn: func(_ context.Context, username, passwordHash string) (*domain.User, error) {
			if passwordHash != "" {
				t.Fatal("sso users must not get a password hash")
			}
			provisioned = &domain.User{ID: 2, Username: username}
			return provisioned, nil
		},
	}
	svc := NewAuthService(users, &mockSessionRepo{})

	token, err := svc.LoginWithUser(context.Background(), "alice@example.com", "ua")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" || provisioned == nil {
		t.Fatal("expected a session for a freshly provisioned user")
	}
}
