package main

import (
	"context"
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/config"
	"finance-tracker/internal/events"
	"finance-tracker/internal/handlers"
	"finance-tracker/internal/logging"
	"finance-tracker/internal/storage"
	"finance-tracker/internal/tracker"

	"golang.org/x/sync/errgroup"
)

const (
	sessionCleanupInterval = time.Hour
	shutdownTimeout        = 30 * time.Second
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	envFile := fs.String("env", os.Getenv("ENV_FILE"), "Path to .env file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := config.LoadEnvFile(*envFile); err != nil {
		return err
	}
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	slog.SetDefault(logger)
	log := logger.With(logging.FieldComponent, logging.ComponentApp)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	log.Info("database ready", "driver", db.Driver())

	pub := connectPublisher(cfg, logger)
	if c, ok := pub.(*events.Client); ok {
		defer c.Close()
	}

	svc := tracker.NewService(db, tracker.Options{
		Publisher:  pub,
		Logger:     logger,
		BcryptCost: cfg.BcryptCost,
	})
	if err := seedAdmin(ctx, db, svc, log); err != nil {
		return err
	}

	secret, err := jwtSecret(cfg.JWTSecret, log)
	if err != nil {
		return err
	}
	h := handlers.NewHandlers(svc, db, auth.NewTokenIssuer(secret, cfg.JWTTTL), handlers.Config{
		TemplateDir:     cfg.TemplateDir,
		SecureCookie:    cfg.SecureCookie,
		SessionDuration: cfg.SessionDuration,
		Currency:        cfg.CurrencySymbol,
	}, logger.With(logging.FieldComponent, logging.ComponentHTTP))

	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        setupRouter(h, cfg.StaticDir, logger),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		cleanSessions(gctx, db, sessionCleanupInterval, log)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped gracefully")
	return nil
}

func setupRouter(h *handlers.Handlers, staticDir string, logger *slog.Logger) http.Handler {
	return logging.Middleware(logger)(handlers.SecurityHeaders(h.Routes(staticDir)))
}

// connectPublisher returns a RabbitMQ publisher, or a no-op one when AMQP is
// not configured or unreachable.
func connectPublisher(cfg *config.Config, logger *slog.Logger) events.Publisher {
	if cfg.AMQPURL == "" {
		return events.Nop{}
	}
	c, err := events.Dial(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue,
		[]string{events.TypeBudgetOverspent}, logger)
	if err != nil {
		logger.Warn("amqp unavailable, events disabled", logging.FieldError, err)
		return events.Nop{}
	}
	return c
}

type sessionCleaner interface {
	CleanExpiredSessions(ctx context.Context) (int64, error)
}

func cleanSessions(ctx context.Context, db sessionCleaner, every time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		n, err := db.CleanExpiredSessions(ctx)
		switch {
		case err != nil && ctx.Err() == nil:
			log.Warn("clean expired sessions", logging.FieldError, err)
		case n > 0:
			log.Info("expired sessions removed", "count", n)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

type userCounter interface {
	UserCount(ctx context.Context) (int, error)
}

// seedAdmin creates ADMIN_USER on an empty database.
func seedAdmin(ctx context.Context, db userCounter, svc *tracker.Service, log *slog.Logger) error {
	username := strings.TrimSpace(os.Getenv("ADMIN_USER"))
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		return nil
	}
	n, err := db.UserCount(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return nil
	}

	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = username + "@example.com"
	}
	user, err := svc.Register(ctx, tracker.RegisterInput{
		Username:        username,
		Email:           email,
		Password:        password,
		ConfirmPassword: password,
	})
	if err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}
	log.Info("admin user created", logging.FieldUserID, user.ID, "username", user.Username)
	return nil
}

// jwtSecret returns the configured secret or a random per-process one.
func jwtSecret(configured string, log *slog.Logger) ([]byte, error) {
	if configured != "" {
		return []byte(configured), nil
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate jwt secret: %w", err)
	}
	log.Warn("JWT_SECRET not set, API tokens will not survive a restart")
	return secret, nil
}
