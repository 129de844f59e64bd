package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"libapi/internal/config"
	"libapi/internal/database"
	"libapi/internal/database/migration"
	handlers "libapi/internal/http/handler"
	"libapi/internal/http/middleware"
	"libapi/internal/logging"
	"libapi/internal/metrics"
	"libapi/internal/otel"
	"libapi/internal/repository/sqlstore"
	"libapi/internal/repository/unitofwork"
	"libapi/internal/service"
)

func newServeCmd() *cobra.Command {
	var (
		autoMigrate     bool
		shutdownTimeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			logger := logging.New(os.Stdout, logging.ParseLevel(cfg.LogLevel), cfg.Location())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger, autoMigrate, shutdownTimeout)
		},
	}
	cmd.Flags().BoolVar(&autoMigrate, "migrate", true, "create the schema on startup when it is missing")
	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 10*time.Second, "grace period for in-flight requests")
	return cmd
}

func serve(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger, autoMigrate bool, shutdownTimeout time.Duration) error {
	shutdownTracing, err := otel.Init(ctx, cfg.Tracing, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Error("tracing_shutdown_failed", "error_message", err.Error())
		}
	}()

	dialect, err := sqlstore.DialectFor(cfg.Database.Driver)
	if err != nil {
		return err
	}
	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if autoMigrate {
		if err := migration.EnsureMigrated(ctx, db, dialect.Name(), logger, dbHost(cfg.Database)); err != nil {
			return err
		}
	}

	reg := prometheus.NewRegistry()
	app, err := newApp(cfg, db, dialect, logger, reg)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http_server_start", "component", "http", "port", cfg.Port)
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("http_server_shutdown", "component", "http")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

// newApp wires the unit of work, services, middleware and routes onto a
// fiber app. Repository statements are logged and measured; every collector
// is registered on reg, which also backs /metrics.
func newApp(cfg *config.AppConfig, db *sql.DB, dialect sqlstore.Dialect, logger *slog.Logger, reg *prometheus.Registry) (*fiber.App, error) {
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, err
	}
	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, err
	}
	repoMetrics, err := metrics.NewRepositoryMetrics(reg)
	if err != nil {
		return nil, err
	}
	httpMetrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return nil, err
	}

	factory := unitofwork.NewFactory(db, dialect, sqlstore.WithObserver(sqlstore.Observers{
		logging.QueryObserver{Logger: logger},
		repoMetrics,
	}))

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		DisableStartupMessage: true,
	})

	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == "/metrics"
	})))
	app.Use(middleware.RequestLogger(logger))
	app.Use(httpMetrics.Handler())

	handlers.RegisterRoutes(app, db, handlers.Services{
		Authors:  service.NewCatalog(factory, service.AuthorCatalog),
		Genres:   service.NewCatalog(factory, service.GenreCatalog),
		Books:    service.NewCatalog(factory, service.BookCatalog),
		Lendings: service.NewCatalog(factory, service.LendingCatalog),
		Lending:  service.NewLendingService(factory),
	}, cfg.Paging, reg)

	return app, nil
}
