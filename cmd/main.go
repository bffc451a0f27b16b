package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/payment-core/internal/api"
	"github.com/akylbek/payment-system/payment-core/internal/cache"
	"github.com/akylbek/payment-system/payment-core/internal/config"
	"github.com/akylbek/payment-system/payment-core/internal/connector"
	"github.com/akylbek/payment-system/payment-core/internal/dispatch"
	"github.com/akylbek/payment-system/payment-core/internal/events"
	"github.com/akylbek/payment-system/payment-core/internal/handlers"
	"github.com/akylbek/payment-system/payment-core/internal/repository"
	"github.com/akylbek/payment-system/payment-core/internal/routerdata"
	"github.com/akylbek/payment-system/payment-core/internal/telemetry"
)

func main() {
	cfg := config.Load()

	// Initialize telemetry
	if err := telemetry.InitTelemetry("payment-core"); err != nil {
		panic(fmt.Sprintf("Failed to initialize telemetry: %v", err))
	}
	defer telemetry.Shutdown(context.Background())

	telemetry.Logger.Info("Starting Payment Core")

	// Connect to PostgreSQL
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		telemetry.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	accountRepo := repository.NewConnectorAccountRepository(db)
	configRepo := repository.NewConfigRepository(db)
	if err := accountRepo.InitDB(); err != nil {
		telemetry.Logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := configRepo.InitDB(); err != nil {
		telemetry.Logger.Fatal("Failed to initialize database", zap.Error(err))
	}

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisURL,
	})
	defer redisClient.Close()

	configs := cache.NewConfigCache(redisClient, configRepo, cfg.ConfigCacheTTL)
	warmKeys := make([]string, 0, len(cfg.MultipleAPIVersionConnectors))
	for _, name := range cfg.MultipleAPIVersionConnectors {
		warmKeys = append(warmKeys, connector.APIVersionConfigKey(connector.Name(name)))
	}
	if err := configs.Warm(context.Background(), warmKeys); err != nil {
		telemetry.Logger.Warn("Failed to warm config cache", zap.Error(err))
	}

	// Connect to NATS
	nc, err := nats.Connect(cfg.NatsURL)
	if err != nil {
		telemetry.Logger.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer nc.Close()

	// Connect to Kafka
	kafkaWriter := events.NewWriter(cfg.KafkaBrokers)
	defer kafkaWriter.Close()
	publisher := events.NewPublisher(kafkaWriter)

	references := routerdata.NewReferenceIDConfig(cfg.PaymentIDAsReferenceMerchants)
	constructor := routerdata.NewConstructor(cfg.BaseURL, configs, routerdata.JSONAddressDecoder{},
		cfg.MultipleAPIVersionConnectors, references)

	handler := handlers.NewPaymentCoreHandler(
		accountRepo,
		constructor,
		dispatch.NewNATSDispatcher(nc, cfg.DispatchTimeout),
		publisher,
		publisher,
		handlers.Settings{
			BaseURL:              cfg.BaseURL,
			References:           references,
			LatencyHeaderEnabled: cfg.LatencyHeaderEnabled,
		},
	)
	r := api.NewRouter(handler, redisClient)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		telemetry.Logger.Info("Payment Core starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			telemetry.Logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	telemetry.Logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		telemetry.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	telemetry.Logger.Info("Server exited")
}
