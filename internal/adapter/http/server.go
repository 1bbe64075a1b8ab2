// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"log/slog"
	"net/http"
	"os"

	"converter/internal/app"
	"converter/internal/domain"
)

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	convert *app.ConvertService
	stats   *app.StatsService
	authSvc *app.AuthService
	oidc    OIDCConfig
	logger  *slog.Logger
	webDir  string

	// trustForwardAuth accepts the Remote-User header set by an
	// authenticating reverse proxy.
	trustForwardAuth bool

	// testUser is attached to every request when auth is disabled.
	testUser *domain.User
}

// New creates a Server wired to the given application services. An empty
// webDir disables the static front-end.
func New(cs *app.ConvertService, ss *app.StatsService, as *app.AuthService, webDir string) *Server {
	return &Server{convert: cs, stats: ss, authSvc: as, webDir: webDir, logger: slog.Default()}
}

// WithOIDC enables SSO login through the given provider configuration.
func (s *Server) WithOIDC(cfg OIDCConfig) *Server {
	s.oidc = cfg
	return s
}

// WithForwardAuth trusts the Remote-User header. Only enable it when a
// reverse proxy strips the header from client requests.
func (s *Server) WithForwardAuth() *Server {
	s.trustForwardAuth = true
	return s
}

// WithLogger sets the logger used for request logging.
func (s *Server) WithLogger(l *slog.Logger) *Server {
	if l != nil {
		s.logger = l
	}
	return s
}

// WithoutAuth treats every request as coming from a fixed user. For tests.
func (s *Server) WithoutAuth() *Server {
	s.testUser = &domain.User{ID: 1, Username: "test"}
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	api.Handle("/convert", s.optionalAuth(http.HandlerFunc(s.handleConvert)))
	api.HandleFunc("/units", s.handleUnits)

	api.Handle("/history/recent", s.requireAuth(http.HandlerFunc(s.handleHistoryRecent)))
	api.Handle("/history/undo-last", s.requireAuth(http.HandlerFunc(s.handleHistoryUndoLast)))
	api.Handle("/history/daily", s.requireAuth(http.HandlerFunc(s.handleHistoryDaily)))

	api.HandleFunc("/auth/config", s.handleConfig)
	api.HandleFunc("/auth/login", s.handleLogin)
	api.HandleFunc("/auth/logout", s.handleLogout)
	api.HandleFunc("/auth/setup", s.handleSetupUser)
	api.HandleFunc("/auth/sso/login", s.handleSSOLogin)
	api.HandleFunc("/auth/sso/callback", s.handleSSOCallback)

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	if s.webDir != "" {
		if fi, err := os.Stat(s.webDir); err == nil && fi.IsDir() {
			root.Handle("/", spaFromDisk(s.webDir))
		}
	}

	return s.loggingMiddleware(withNoCache(root))
}
