package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"

	adapthttp "medtrack/internal/adapter/http"
	"medtrack/internal/adapter/postgres"
	"medtrack/internal/app"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

func main() {
	addr := env("ADDR", ":8080")
	webDir := env("WEB_DIR", "web")

	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := postgres.Open(connStr)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer func() { _ = db.Close() }()

	sessionRepo := postgres.NewSessionRepo(db)
	medicationRepo := postgres.NewMedicationRepo(db)
	events := postgres.NewListener(connStr)

	authSvc := app.NewAuthService(db, sessionRepo)
	medSvc := app.NewMedicationService(medicationRepo)
	tracker := app.NewTracker(db, medSvc, events)
	defer tracker.Close()

	oidcCfg, err := loadOIDC(context.Background())
	if err != nil {
		log.Fatalf("oidc setup: %v", err)
	}

	h := adapthttp.New(authSvc, tracker, oidcCfg, webDir).Handler()
	log.Printf("listening on %s", addr)
	if err := http.ListenAndServe(addr, h); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

// loadOIDC builds the SSO configuration from OIDC_* environment
// variables. SSO stays disabled unless OIDC_ISSUER is set.
func loadOIDC(ctx context.Context) (adapthttp.OIDCConfig, error) {
	issuer := os.Getenv("OIDC_ISSUER")
	if issuer == "" {
		return adapthttp.OIDCConfig{}, nil
	}

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return adapthttp.OIDCConfig{}, err
	}

	return adapthttp.OIDCConfig{
		Enabled:  true,
		Provider: provider,
		OAuth2Config: &oauth2.Config{
			ClientID:     os.Getenv("OIDC_CLIENT_ID"),
			ClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
			RedirectURL:  env("OIDC_REDIRECT_URL", "http://localhost:8080/api/auth/sso/callback"),
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		},
	}, nil
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
