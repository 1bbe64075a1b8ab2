package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	adapthttp "converter/internal/adapter/http"
	"converter/internal/adapter/memory"
	"converter/internal/adapter/postgres"
	"converter/internal/app"
	"converter/internal/domain"
	"converter/internal/logging"
)

type stores struct {
	history  domain.HistoryRepository
	users    domain.UserRepository
	sessions domain.SessionRepository
	close    func() error
}

func main() {
	logger := logging.New(os.Stderr, logging.ParseLevel(env("LOG_LEVEL", "info")), env("LOG_FORMAT", "json"))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logging.LogError(logger, "server exited", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(os.Getenv("DATABASE_URL"), logger)
	if err != nil {
		return err
	}
	defer func() { _ = st.close() }()

	authSvc := app.NewAuthService(st.users, st.sessions)
	if user, pass := os.Getenv("INITIAL_USER"), os.Getenv("INITIAL_PASSWORD"); user != "" && pass != "" {
		switch err := authSvc.CreateInitialUser(ctx, user, pass); {
		case err == nil:
			logger.Info("created initial user", slog.String("username", user))
		case errors.Is(err, app.ErrUsersExist):
		default:
			return err
		}
	}

	oidcCfg, err := adapthttp.NewOIDCConfig(ctx,
		os.Getenv("OIDC_ISSUER"),
		os.Getenv("OIDC_CLIENT_ID"),
		os.Getenv("OIDC_CLIENT_SECRET"),
		os.Getenv("OIDC_REDIRECT_URL"),
	)
	if err != nil {
		return err
	}

	api := adapthttp.New(
		app.NewConvertService(st.history),
		app.NewStatsService(st.history),
		authSvc,
		env("WEB_DIR", "web"),
	).WithOIDC(oidcCfg).WithLogger(logger)
	trustProxy, err := boolEnv("TRUST_FORWARD_AUTH")
	if err != nil {
		return err
	}
	if trustProxy {
		logger.Info("trusting Remote-User header from reverse proxy")
		api = api.WithForwardAuth()
	}
	h := api.Handler()

	addr := env("ADDR", ":8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go sweepSessions(ctx, st.sessions, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", addr), slog.Bool("sso", oidcCfg.Enabled))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStores(connStr string, logger *slog.Logger) (*stores, error) {
	if connStr == "" {
		logger.Warn("DATABASE_URL not set, using in-memory storage")
		db := memory.New()
		return &stores{history: db, users: db, sessions: db.NewSessionRepo(), close: func() error { return nil }}, nil
	}

	db, err := postgres.Open(connStr)
	if err != nil {
		return nil, err
	}
	return &stores{history: db, users: db, sessions: postgres.NewSessionRepo(db), close: db.Close}, nil
}

func sweepSessions(ctx context.Context, sessions domain.SessionRepository, logger *slog.Logger) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := sessions.DeleteExpired(ctx); err != nil {
				logging.LogError(logger, "delete expired sessions", err)
			}
		}
	}
}

func boolEnv(key string) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
