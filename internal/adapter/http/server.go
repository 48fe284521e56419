// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"net/http"

	"medtrack/internal/app"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// OIDCConfig holds the optional SSO configuration. When Enabled is false
// the SSO endpoints answer 404 and only password login is offered.
type OIDCConfig struct {
	Enabled      bool
	Provider     *oidc.Provider
	OAuth2Config *oauth2.Config
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	authSvc     *app.AuthService
	tracker     *app.Tracker
	oidcConfig  OIDCConfig
	webDir      string
	disableAuth bool
}

// New creates a Server wired to the given application services.
func New(authSvc *app.AuthService, tracker *app.Tracker, oidcConfig OIDCConfig, webDir string) *Server {
	return &Server{authSvc: authSvc, tracker: tracker, oidcConfig: oidcConfig, webDir: webDir}
}

// WithoutAuth disables session validation; requests run as a fixed dev
// user. For tests and local development only.
func (s *Server) WithoutAuth() *Server {
	s.disableAuth = true
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	api.HandleFunc("/config", s.handleConfig)

	api.HandleFunc("/auth/login", s.handleLogin)
	api.HandleFunc("/auth/logout", s.handleLogout)
	api.HandleFunc("/auth/setup", s.handleSetupUser)
	api.HandleFunc("/auth/sso/login", s.handleSSOLogin)
	api.HandleFunc("/auth/sso/callback", s.handleSSOCallback)

	tracked := http.NewServeMux()
	tracked.HandleFunc("/adherence/summary", s.handleAdherenceSummary)
	tracked.HandleFunc("/adherence/days", s.handleAdherenceDays)
	tracked.HandleFunc("/adherence/taken", s.handleMarkTaken)
	tracked.HandleFunc("/adherence/stream", s.handleAdherenceStream)
	tracked.HandleFunc("/medication", s.handleMedication)
	api.Handle("/adherence/", s.authMiddleware(tracked))
	api.Handle("/medication", s.authMiddleware(tracked))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	root.Handle("/", spaFromDisk(s.webDir))

	return s.loggingMiddleware(withNoCache(root))
}
