package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/config"
	"storefront/internal/api"
	"storefront/internal/broker"
	"storefront/internal/cms"
	"storefront/internal/redisclient"
	"storefront/internal/service"
	"storefront/internal/store"
	"storefront/internal/util"
	"storefront/internal/weather"
	"storefront/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env, "storefront"); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}
	logger.Info("Starting storefront service",
		zap.String("backend", cfg.Content.Backend),
		zap.Int("utc_offset_hours", cfg.Report.UTCOffsetHours))

	tp, err := util.InitTracer("storefront", cfg.Observ.JaegerEndpoint)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("Error shutting down tracer", zap.Error(err))
		}
	}()

	var ledger *store.Store
	if cfg.Database.LedgerEnabled || cfg.Content.Backend == config.BackendPostgres {
		ledger, err = store.NewStore(cfg.Database.URL)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer ledger.Close()

		if err := ledger.Migrate(context.Background()); err != nil {
			logger.Fatal("Failed to migrate ledger", zap.Error(err))
		}
		logger.Info("Database connected")
	}

	var (
		content service.ContentStore
		shop    service.ShopConfigSource = service.StaticShopConfig{Config: service.DefaultShopConfig()}
	)
	switch cfg.Content.Backend {
	case config.BackendCMS:
		cmsClient := cms.NewClient(cms.Config{
			BaseURL:   cfg.Content.BaseURL,
			APIKey:    cfg.Content.APIKey,
			ListLimit: cfg.Content.ListLimit,
			Timeout:   time.Duration(cfg.Content.TimeoutSecs) * time.Second,
		})
		content, shop = cmsClient, cmsClient
	case config.BackendPostgres:
		content = ledger
	}

	var guard service.IdempotencyGuard
	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Warn("Redis unavailable, duplicate checkout detection disabled", zap.Error(err))
	} else {
		defer redisClient.Close()
		guard = redisClient
		logger.Info("Redis connected")
	}

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicSaleEvents)
	defer producer.Close()
	eventPublisher := broker.NewEventPublisher(producer)
	logger.Info("Kafka producer initialized")

	var forecast service.ForecastSource
	if cfg.Weather.APIKey != "" {
		forecast = weather.NewClient(weather.Config{
			BaseURL: cfg.Weather.BaseURL,
			APIKey:  cfg.Weather.APIKey,
			Timeout: time.Duration(cfg.Content.TimeoutSecs) * time.Second,
		})
	}

	offset := cfg.Report.UTCOffsetHours
	idempotencyTTL := time.Duration(cfg.Redis.IdempotencyTTL) * time.Second

	dashboardService := service.NewDashboardService(content, offset)
	checkoutService := service.NewCheckoutService(content, guard, eventPublisher, idempotencyTTL)
	weatherService := service.NewWeatherService(shop, forecast, offset)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var ledgerWorker *worker.LedgerWorker
	if cfg.Database.LedgerEnabled {
		consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicSaleEvents, cfg.Kafka.ConsumerGroup)
		ledgerWorker = worker.NewLedgerWorker(consumer, service.NewLedgerProjector(ledger))
		go func() {
			if err := ledgerWorker.Start(workerCtx); err != nil && err != context.Canceled {
				logger.Error("Ledger worker error", zap.Error(err))
			}
		}()
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(dashboardService, checkoutService, weatherService, cfg.Server.AllowOrigins)
	if ledger != nil {
		handler.AddReadinessCheck("postgres", func(ctx context.Context) error {
			return ledger.GetDB().PingContext(ctx)
		})
	}
	if redisClient != nil {
		handler.AddReadinessCheck("redis", redisClient.Ping)
	}
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Server forced to shutdown", zap.Error(err))
	}

	workerCancel()
	if ledgerWorker != nil {
		_ = ledgerWorker.Stop()
	}

	logger.Info("Server exited")
}
