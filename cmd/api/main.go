// Package main is the entry point for the fleet ledger API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pkordes/fleet-ledger/internal/auth"
	"github.com/pkordes/fleet-ledger/internal/config"
	"github.com/pkordes/fleet-ledger/internal/handler"
	"github.com/pkordes/fleet-ledger/internal/jobs"
	"github.com/pkordes/fleet-ledger/internal/middleware"
	"github.com/pkordes/fleet-ledger/internal/repo"
	"github.com/pkordes/fleet-ledger/internal/service"
	"github.com/pkordes/fleet-ledger/internal/storage"
	"github.com/pkordes/fleet-ledger/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	// --- Database ---------------------------------------------------------
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	if err := migrate(ctx, pool); err != nil {
		slog.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	// --- Storage ----------------------------------------------------------
	store, err := storage.NewLocal(cfg.UploadDir)
	if err != nil {
		slog.Error("failed to prepare upload directory", "dir", cfg.UploadDir, "error", err)
		os.Exit(1)
	}

	// --- Services ---------------------------------------------------------
	repos := repo.NewRepos(pool)
	tx := repo.NewTransactor(pool)
	clock := service.Clock(time.Now)
	tokens := auth.NewTokenMaker(cfg.JWTSecret, cfg.JWTTTL)

	owners := service.NewOwnerService(repos.Owners, cfg.DefaultOwnerPassword, logger)
	if cfg.Admin.Email != "" {
		created, err := owners.EnsureAdmin(ctx, service.AdminSeed{
			Email:    cfg.Admin.Email,
			Username: cfg.Admin.Username,
			Password: cfg.Admin.Password,
		})
		if err != nil {
			slog.Error("failed to seed admin account", "error", err)
			os.Exit(1)
		}
		if created {
			slog.Info("admin account created", "email", cfg.Admin.Email)
		}
	}

	srv := handler.NewServer(handler.Deps{
		Boats:        service.NewBoatService(repos.Boats, logger),
		Owners:       owners,
		Auth:         service.NewAuthService(repos.Owners, repos.ResetTokens, tx, tokens, cfg.ResetTokenTTL, clock, logger),
		Assignments:  service.NewAssignmentService(repos.Boats, repos.Owners, tx, clock, logger),
		Maintenances: service.NewMaintenanceService(repos.Maintenances, tx, clock, logger),
		Payments:     service.NewPaymentService(repos.Payments, tx, store, clock, logger),
		Documents:    service.NewDocumentService(repos.Documents, repos.Boats, store, logger),
		Dashboards:   service.NewDashboardService(repos.Dashboard, repos.Owners, clock),
		Export:       service.NewExportService(repos.Payments),
		Logger:       logger,
	})

	// --- Metrics and jobs -------------------------------------------------
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	scheduler, err := jobs.NewScheduler(jobs.NewRunner(repos.Payments, registry, logger), cfg.OverdueSweepCron, logger)
	if err != nil {
		slog.Error("failed to schedule jobs", "error", err)
		os.Exit(1)
	}
	scheduler.Start()

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer
	// → CORS → body limit → metrics.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
	r.Use(middleware.NewMetrics(registry).Handler)

	srv.Register(r, handler.RouteOptions{
		Tokens:     tokens,
		LoginLimit: middleware.NewRateLimiter(cfg.LoginRatePerSec, cfg.LoginBurst, logger).Handler,
		Metrics:    promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
	})

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	// The write timeout leaves room for document uploads and downloads.
	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// migrate applies pending goose migrations embedded in the binary.
func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	results, err := migrations.Up(ctx, pool)
	if err != nil {
		return err
	}
	for _, res := range results {
		slog.Info("migration applied", "version", res.Source.Version, "duration", res.Duration)
	}
	return nil
}
