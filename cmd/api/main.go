package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/horologiq/horologiq-backend/api/routes"
	"github.com/horologiq/horologiq-backend/internal/cart"
	"github.com/horologiq/horologiq-backend/internal/catalogsync"
	category "github.com/horologiq/horologiq-backend/internal/categories"
	checkoutsvc "github.com/horologiq/horologiq-backend/internal/checkout"
	"github.com/horologiq/horologiq-backend/internal/finance"
	"github.com/horologiq/horologiq-backend/internal/inventory"
	order "github.com/horologiq/horologiq-backend/internal/orders"
	product "github.com/horologiq/horologiq-backend/internal/products"
	"github.com/horologiq/horologiq-backend/internal/settings"
	"github.com/horologiq/horologiq-backend/pkg/config"
	"github.com/horologiq/horologiq-backend/pkg/db"
	"github.com/horologiq/horologiq-backend/pkg/logger"
	"github.com/horologiq/horologiq-backend/pkg/metrics"
	"github.com/horologiq/horologiq-backend/pkg/migrate"
	"github.com/horologiq/horologiq-backend/pkg/outbox"
	"github.com/horologiq/horologiq-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	syncMetrics := metrics.NewCatalogSyncMetrics(registry)

	svcs, err := buildServices(cfg, logg, dbClient, redisClient, syncMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, registry, svcs),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-shutdownCtx.Done()
		drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}

func buildServices(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	syncMetrics *metrics.CatalogSyncMetrics,
) (routes.Services, error) {
	conn := dbClient.DB()

	settingsSvc, err := settings.NewService(conn)
	if err != nil {
		return routes.Services{}, err
	}

	outboxSvc, err := outbox.NewService(outbox.NewRepository(conn), dbClient, logg, syncMetrics, cfg.Outbox.MaxAttempts)
	if err != nil {
		return routes.Services{}, err
	}
	notifier, err := catalogsync.NewNotifier(outboxSvc, settingsSvc, cfg.CatalogSync)
	if err != nil {
		return routes.Services{}, err
	}

	productRepo := product.NewRepository(conn)
	productSvc, err := product.NewService(productRepo, dbClient, settingsSvc, notifier)
	if err != nil {
		return routes.Services{}, err
	}

	categorySvc, err := category.NewService(category.NewRepository(conn), dbClient)
	if err != nil {
		return routes.Services{}, err
	}

	inventorySvc, err := inventory.NewService(inventory.NewRepository(conn), dbClient, settingsSvc)
	if err != nil {
		return routes.Services{}, err
	}

	cartRepo := cart.NewRepository(conn)
	cartSvc, err := cart.NewService(cartRepo, productRepo, dbClient)
	if err != nil {
		return routes.Services{}, err
	}

	orderRepo := order.NewRepository(conn)
	orderSvc, err := order.NewService(orderRepo)
	if err != nil {
		return routes.Services{}, err
	}

	checkoutSvc, err := checkoutsvc.NewService(cartRepo, orderRepo, dbClient, redisClient)
	if err != nil {
		return routes.Services{}, err
	}

	financeSvc, err := finance.NewService(conn)
	if err != nil {
		return routes.Services{}, err
	}

	catalogSvc, err := catalogsync.NewService(productRepo, settingsSvc, cfg.CatalogSync)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Products:    productSvc,
		Categories:  categorySvc,
		Inventory:   inventorySvc,
		Cart:        cartSvc,
		Checkout:    checkoutSvc,
		Orders:      orderSvc,
		Settings:    settingsSvc,
		Finance:     financeSvc,
		CatalogSync: catalogSvc,
	}, nil
}
