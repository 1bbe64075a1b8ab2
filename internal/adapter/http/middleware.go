package adapthttp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"converter/internal/app"
	"converter/internal/domain"
	"converter/internal/logging"
)

type contextKey string

const userContextKey contextKey = "user"

const sessionCookie = "session"

var errUnauthorized = errors.New("unauthorized")

// authenticate resolves the caller from the forward-auth header, when trusted,
// or the session cookie. It returns (nil, nil) for anonymous requests.
func (s *Server) authenticate(r *http.Request) (*domain.User, error) {
	if s.testUser != nil {
		return s.testUser, nil
	}

	if remoteUser := r.Header.Get("Remote-User"); s.trustForwardAuth && remoteUser != "" {
		user, err := s.authSvc.ValidateForwardAuth(r.Context(), remoteUser)
		if err == nil && user != nil {
			return user, nil
		}
	}

	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, nil
	}
	user, err := s.authSvc.ValidateSession(r.Context(), cookie.Value, r.UserAgent())
	switch {
	case errors.Is(err, app.ErrSessionNotFound), errors.Is(err, app.ErrSessionExpired), errors.Is(err, app.ErrUserNotFound):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return user, nil
}

// requireAuth rejects anonymous requests with 401.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := s.authenticate(r)
		if err != nil {
			logging.LogError(logging.FromContext(r.Context()), "authenticate", err)
			writeError(w, http.StatusInternalServerError, errors.New("internal error"))
			return
		}
		if user == nil {
			writeError(w, http.StatusUnauthorized, errUnauthorized)
			return
		}
		next.ServeHTTP(w, withUser(r, user))
	})
}

// optionalAuth attaches the caller when one is signed in and otherwise lets
// the request through anonymously.
func (s *Server) optionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := s.authenticate(r)
		if err != nil {
			logging.LogError(logging.FromContext(r.Context()), "authenticate", err)
		}
		if user != nil {
			r = withUser(r, user)
		}
		next.ServeHTTP(w, r)
	})
}

func withUser(r *http.Request, user *domain.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userContextKey, user))
}

// userFromContext returns the signed-in user, or nil.
func userFromContext(r *http.Request) *domain.User {
	user, _ := r.Context().Value(userContextKey).(*domain.User)
	return user
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(logging.WithLogger(r.Context(), s.logger)))

		s.logger.Info("http_request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000),
		)
	})
}
