package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/horologiq/horologiq-backend/internal/catalogsync"
	"github.com/horologiq/horologiq-backend/pkg/config"
	"github.com/horologiq/horologiq-backend/pkg/db"
	"github.com/horologiq/horologiq-backend/pkg/logger"
	"github.com/horologiq/horologiq-backend/pkg/metrics"
	"github.com/horologiq/horologiq-backend/pkg/migrate"
	"github.com/horologiq/horologiq-backend/pkg/outbox"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "catalog-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "catalog-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	syncMetrics := metrics.NewCatalogSyncMetrics(registry)

	outboxSvc, err := outbox.NewService(outbox.NewRepository(dbClient.DB()), dbClient, logg, syncMetrics, cfg.Outbox.MaxAttempts)
	if err != nil {
		logg.Error(context.Background(), "failed to create outbox service", err)
		os.Exit(1)
	}

	publisher, err := catalogsync.NewPublisher(catalogsync.NewLogSink(logg), cfg.CatalogSync.CatalogID)
	if err != nil {
		logg.Error(context.Background(), "failed to create feed publisher", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env})

	metricsServer := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "metrics server stopped unexpectedly", err)
		}
	}()
	defer func() {
		drainCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(drainCtx)
	}()

	logg.Info(ctx, "starting catalog worker")

	interval := time.Duration(cfg.Outbox.PollIntervalMS) * time.Millisecond
	if err := outboxSvc.Run(ctx, cfg.Outbox.BatchSize, interval, publisher); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "catalog worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "catalog worker shutting down gracefully")
}
