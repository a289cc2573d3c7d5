package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/mercadinho/market-api/internal/app"
	"github.com/mercadinho/market-api/internal/clock"
	"github.com/mercadinho/market-api/internal/config"
	"github.com/mercadinho/market-api/internal/events"
	"github.com/mercadinho/market-api/internal/storage/postgres"
	"github.com/mercadinho/market-api/internal/storage/rediscache"
	transporthttp "github.com/mercadinho/market-api/internal/transport/http"
	"github.com/mercadinho/market-api/migrations"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.Load()

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		logger.Fatal("db ping", zap.Error(err))
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}

	productRepo := postgres.NewProductRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	reserver := app.NewStockReserver(productRepo)

	var orderOpts []app.OrderServiceOption
	var catalogOpts []app.CatalogServiceOption

	if cfg.RedisAddr != "" {
		cache := rediscache.NewProductCache(rediscache.NewClient(cfg.RedisAddr))
		orderOpts = append(orderOpts, app.WithCatalogCache(cache))
		catalogOpts = append(catalogOpts, app.WithProductCache(cache))
		logger.Info("catalog cache enabled", zap.String("addr", cfg.RedisAddr))
	}

	var publisher *events.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewPublisher(cfg.KafkaBrokers, cfg.ServiceName, logger)
		publisher.Start()
		orderOpts = append(orderOpts, app.WithOrderEvents(publisher))
		logger.Info("order events enabled", zap.Strings("brokers", cfg.KafkaBrokers))
	}

	orderSvc := app.NewOrderService(orderRepo, reserver, clock.NewSystem(), orderOpts...)
	querySvc := app.NewOrderQueryService(orderRepo)
	catalogSvc := app.NewCatalogService(productRepo, clock.NewSystem(), catalogOpts...)

	router := transporthttp.NewRouter(transporthttp.RouterDeps{
		Orders:  orderSvc,
		Queries: querySvc,
		Catalog: catalogSvc,
		Logger:  logger,
		Origins: cfg.CORSOrigins,
	})

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	logger.Info("api listening", zap.String("addr", cfg.HTTPAddr))

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server shutdown error", zap.Error(err))
	}
	if publisher != nil {
		publisher.Close()
	}
	logger.Info("server stopped")
}
