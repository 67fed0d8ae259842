package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"ledger-api/internal/config"
	"ledger-api/internal/events"
	"ledger-api/internal/handlers"
	"ledger-api/internal/logging"
	"ledger-api/internal/service"
	"ledger-api/internal/storage"
)

func main() {
	if err := run(context.Background(), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, stdout)

	db, err := storage.Open(cfg.DatabaseURL, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	publisher := newPublisher(cfg, logger)
	defer publisher.Close()

	svc := service.NewService(db, publisher, logger)

	if err := seedAdmin(ctx, db, svc.Accounts, cfg, logger); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	h := handlers.NewHandlers(svc.Accounts, svc.Ledger, db, logger)
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           setupRouter(h, cfg.CORSOrigin),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Bool("postgres", cfg.DatabaseURL != "").Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func setupRouter(h *handlers.Handlers, corsOrigin string) http.Handler {
	return otelhttp.NewHandler(handlers.NewRouter(h, corsOrigin), "ledger-api")
}

func newPublisher(cfg *config.Config, logger zerolog.Logger) events.Publisher {
	if !cfg.EventsEnabled() {
		return events.Nop{}
	}
	logger.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("publishing transaction events")
	return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
}

type userCounter interface {
	UserCount(ctx context.Context) (int, error)
}

// seedAdmin registers ADMIN_USER on an empty database so a fresh
// deployment has an account to log in with.
func seedAdmin(ctx context.Context, db userCounter, accounts *service.AccountService, cfg *config.Config, logger zerolog.Logger) error {
	if cfg.AdminUser == "" || cfg.AdminPassword == "" {
		return nil
	}

	count, err := db.UserCount(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	user, err := accounts.Register(ctx, cfg.AdminUser, cfg.AdminPassword)
	if err != nil {
		return err
	}
	logger.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("seeded admin user")
	return nil
}
