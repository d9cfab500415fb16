package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/erain9/venue/config"
	"github.com/erain9/venue/pkg/api"
	"github.com/erain9/venue/pkg/db/queue"
	"github.com/erain9/venue/pkg/engine"
	"github.com/erain9/venue/pkg/id"
	"github.com/erain9/venue/pkg/logging"
	"github.com/erain9/venue/pkg/messaging"
	"github.com/erain9/venue/pkg/messaging/kafka"
	"github.com/erain9/venue/pkg/otel"
	"github.com/erain9/venue/pkg/snapshot"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.Setup(logging.Config{
		Level:  cfg.Server.LogLevel,
		Pretty: cfg.Server.LogFormat == "pretty",
		Output: os.Stdout,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cleanup, err := otel.Init(otel.Config{
		ServiceName:      "venue",
		ServiceVersion:   "1.0.0",
		Endpoint:         cfg.Otel.Endpoint,
		CollectorEnabled: cfg.Otel.Enabled,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize OpenTelemetry")
	}
	defer cleanup()

	if cfg.Engine.WorkerID < 0 {
		logger.Fatal().Int64("worker_id", cfg.Engine.WorkerID).Msg("Invalid worker id")
	}
	generator, err := id.NewGenerator(uint64(cfg.Engine.WorkerID))
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid worker id")
	}

	publisher := buildPublisher(cfg, logger)
	defer publisher.Close()

	eng := engine.NewEngine(generator, publisher, engine.WithLogger(logger))

	for _, symbol := range cfg.Engine.Symbols {
		if err := eng.CreateBook(symbol); err != nil {
			logger.Fatal().Err(err).Str("symbol", symbol).Msg("Failed to create order book")
		}
		logger.Info().Str("symbol", symbol).Msg("Created order book")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	store := snapshot.NewStore(redisClient, "")
	runner := snapshot.NewRunner(store, eng, cfg.SnapshotInterval(), logger)
	go runner.Run(ctx)

	server := api.NewServer(eng, logger)
	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Server.HTTPAddr).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP shutdown failed")
	}
}

// buildPublisher selects the Kafka producer driver. A sarama producer
// that cannot reach the broker at startup downgrades to a no-op
// publisher so the venue can still trade.
func buildPublisher(cfg *config.Config, logger zerolog.Logger) messaging.EventPublisher {
	switch cfg.Kafka.Driver {
	case "sarama":
		publisher, err := queue.NewPublisher([]string{cfg.Kafka.BrokerAddr}, cfg.Kafka.Topic)
		if err != nil {
			logger.Warn().Err(err).Msg("Kafka unavailable, events will not be published")
			return messaging.NopPublisher{}
		}
		return publisher
	default:
		return kafka.NewPublisher(cfg.Kafka.BrokerAddr, cfg.Kafka.Topic)
	}
}
