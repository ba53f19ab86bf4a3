// Command server runs the budget tracker HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"budget-tracker/internal/amqp"
	"budget-tracker/internal/config"
	"budget-tracker/internal/database"
	"budget-tracker/internal/handlers"
	"budget-tracker/internal/logging"
	"budget-tracker/internal/middleware"
	"budget-tracker/internal/repositories"
	"budget-tracker/internal/server"
	"budget-tracker/internal/services"
	"budget-tracker/internal/spending"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flagSet := pflag.NewFlagSet("server", pflag.ContinueOnError)
	envFile := flagSet.String("env-file", ".env", "dotenv file loaded before reading the environment")
	migrateOnly := flagSet.Bool("migrate-only", false, "apply database migrations and exit")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	// A missing file is normal in containers where the environment is injected.
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", *envFile, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.New(cfg, os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *migrateOnly {
		logger.Info("Running migrations only")
		return database.RunMigrations(ctx, cfg.Database.DSN())
	}

	store := database.NewStore(&cfg.Database, database.WithLogLevel(database.LogLevelFor(cfg.Server.Environment)))
	defer store.Close()

	db, err := database.Initialize(ctx, cfg, store)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}

	userRepo := repositories.NewUserRepository(db.DB)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db.DB)
	blacklistedTokenRepo := repositories.NewBlacklistedTokenRepository(db.DB)
	auditLogRepo := repositories.NewAuditLogRepository(db.DB)
	categoryRepo := repositories.NewCategoryRepository(db.DB)
	expenseRepo := repositories.NewExpenseRepository(db.DB)
	budgetRepo := repositories.NewBudgetRepository(db.DB)

	metrics := services.NewPrometheusMetrics(prometheus.DefaultRegisterer)
	activity := services.NewActivityLogger(logger)
	auditService := services.NewAuditService(auditLogRepo, logger)
	passwordService := services.NewPasswordService(&cfg.Security)
	tokenService := services.NewTokenService(&cfg.JWT)
	authService := services.NewAuthService(
		userRepo,
		refreshTokenRepo,
		blacklistedTokenRepo,
		passwordService,
		tokenService,
		auditService,
		metrics,
		cfg.Security.MaxFailedAttempts,
		logger,
	)

	publisher := newPublisher(cfg, logger)
	defer publisher.Close()

	breaker := services.NewCircuitBreaker(services.BrokerCircuitBreakerConfig(&cfg.Broker))
	notifier := services.NewAlertNotifier(publisher, breaker, activity, metrics, cfg.Broker.PublishTimeout)

	resolver := spending.NewResolver(cfg.Budget.Location)
	categoryService := services.NewCategoryService(categoryRepo, auditService, activity)
	expenseService := services.NewExpenseService(
		expenseRepo,
		categoryRepo,
		budgetRepo,
		auditService,
		activity,
		metrics,
		notifier,
		services.NewExpenseGenerator(),
		resolver,
		&cfg.Budget,
	)
	budgetService := services.NewBudgetService(budgetRepo, expenseRepo, categoryRepo, auditService, activity, metrics, &cfg.Budget)

	limiter := middleware.NewIPRateLimiter(cfg.Security.RateLimitPerSecond, cfg.Security.RateLimitBurst)

	srv := server.New(cfg, server.Dependencies{
		TokenService: tokenService,
		Revocations:  blacklistedTokenRepo,
		RateLimiter:  limiter,
		Gatherer:     prometheus.DefaultGatherer,
	}, server.Handlers{
		Auth:     handlers.NewAuthHandler(authService, auditService),
		Category: handlers.NewCategoryHandler(categoryService),
		Expense:  handlers.NewExpenseHandler(expenseService, resolver),
		Budget:   handlers.NewBudgetHandler(budgetService, resolver),
		Health:   handlers.NewHealthCheckHandler(store),
		Dev:      handlers.NewDevHandler(expenseService, resolver),
	})

	cleanup := &janitor{
		stores: map[string]expiringStore{
			"refresh_tokens":     refreshTokenRepo,
			"blacklisted_tokens": blacklistedTokenRepo,
		},
		audit:     auditService,
		retention: cfg.Security.AuditRetention,
		now:       time.Now,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		store.Monitor(gctx, cfg.Database.HealthCheckInterval)
		return nil
	})
	g.Go(func() error {
		limiter.Run(gctx)
		return nil
	})
	g.Go(func() error {
		cleanup.Run(gctx, cfg.Database.TokenCleanupEvery)
		return nil
	})
	g.Go(func() error {
		logger.Info("Starting budget tracker API",
			"address", cfg.Server.Address(),
			"environment", cfg.Server.Environment,
			"broker_enabled", cfg.BrokerEnabled(),
			"timezone", cfg.Budget.Location.String())
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// newPublisher connects to the broker when one is configured. Alerts are advisory, so an
// unreachable broker degrades to the no-op publisher instead of failing startup.
func newPublisher(cfg *config.Config, logger *slog.Logger) amqp.Publisher {
	if !cfg.BrokerEnabled() {
		logger.Info("AMQP disabled, budget alerts will not be published")
		return amqp.NewNoopPublisher()
	}

	client, err := amqp.NewClient(cfg.Broker.URL, cfg.Broker.Exchange, cfg.Broker.Queue, cfg.Broker.PublishTimeout)
	if err != nil {
		logger.Warn("AMQP unavailable, budget alerts will not be published", "error", err)
		return amqp.NewNoopPublisher()
	}

	logger.Info("AMQP publisher ready", "exchange", cfg.Broker.Exchange, "queue", cfg.Broker.Queue)
	return client
}
