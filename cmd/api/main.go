package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/medflow/clinic-platform/internal/api/router"
	"github.com/medflow/clinic-platform/internal/appointments"
	"github.com/medflow/clinic-platform/internal/artifacts"
	"github.com/medflow/clinic-platform/internal/clinicdata"
	appconfig "github.com/medflow/clinic-platform/internal/config"
	"github.com/medflow/clinic-platform/internal/http/handlers"
	"github.com/medflow/clinic-platform/internal/observability/metrics"
	"github.com/medflow/clinic-platform/internal/pharmacy"
	"github.com/medflow/clinic-platform/internal/prescriptions"
	"github.com/medflow/clinic-platform/internal/render"
	"github.com/medflow/clinic-platform/internal/users"
	"github.com/medflow/clinic-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinic-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	m := metrics.NewClinicMetrics(nil)

	// Repositories: Postgres when configured, in-memory otherwise.
	var (
		apptRepo  appointments.Repository
		rxRepo    prescriptions.Repository
		orderRepo pharmacy.Repository
		userRepo  users.Repository
		dbpool    *pgxpool.Pool
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		dbpool = pool
		apptRepo = appointments.NewPostgresRepository(pool)
		rxRepo = prescriptions.NewPostgresRepository(pool)
		orderRepo = pharmacy.NewPostgresRepository(pool)
		userRepo = users.NewPostgresRepository(pool)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory repositories")
		apptRepo = appointments.NewInMemoryRepository()
		rxRepo = prescriptions.NewInMemoryRepository()
		orderRepo = pharmacy.NewInMemoryRepository()
		userRepo = users.NewInMemoryRepository()
	}

	// Optional Redis shard index for artifact lookups.
	var index *artifacts.ShardIndex
	if cfg.RedisAddr != "" {
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		index = artifacts.NewShardIndex(redis.NewClient(opts))
	}

	store := artifacts.NewStore(cfg.ArtifactRoot, cfg.ArtifactBaseURL, index, m, logger)

	renderPool := render.NewPool(basicEngine{}, cfg.RenderTimeout, logger)
	pdfService := prescriptions.NewPDFService(rxRepo, renderPool, store, userRepo, cfg.ClinicName, logger)

	routerCfg := &router.Config{
		Logger:               logger,
		AppointmentsHandler:  appointments.NewHandler(apptRepo, m, logger),
		PrescriptionsHandler: prescriptions.NewHandler(rxRepo, pdfService, m, logger),
		PharmacyHandler:      pharmacy.NewHandler(orderRepo, m, logger),
		ArtifactsHandler:     artifacts.NewHandler(store, logger),
		UsersHandler:         users.NewHandler(userRepo, logger),
		MetricsHandler:       promhttp.Handler(),
	}
	if dbpool != nil {
		purger := clinicdata.NewPurger(dbpool, store, logger)
		routerCfg.AdminClinicData = handlers.NewAdminClinicDataHandler(purger, logger)
		routerCfg.AdminToken = cfg.AdminToken
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if err := renderPool.Close(); err != nil {
		logger.Error("render pool close failed", "error", err)
	}
	if dbpool != nil {
		dbpool.Close()
	}

	logger.Info("server stopped")
}
