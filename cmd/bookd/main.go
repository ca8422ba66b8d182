package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erain9/tickbook/config"
	"github.com/erain9/tickbook/pkg/db/queue"
	"github.com/erain9/tickbook/pkg/engine"
	"github.com/erain9/tickbook/pkg/logging"
	marketdata "github.com/erain9/tickbook/pkg/marketdata/redis"
	"github.com/erain9/tickbook/pkg/messaging"
	"github.com/erain9/tickbook/pkg/otel"
	redisClient "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.uber.org/zap"
)

const defaultBookName = "default"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Setup(logging.Config{
		Level:  cfg.Server.LogLevel,
		Pretty: cfg.Server.LogFormat == "pretty",
	})

	cleanup, err := otel.Init(otel.Config{
		Endpoint:         cfg.Otel.Endpoint,
		CollectorEnabled: cfg.Otel.Enabled,
	})
	if err != nil {
		log.Warn().Err(err).Msg("OpenTelemetry initialization failed")
	} else {
		defer cleanup()
	}

	cutoff, err := cfg.CutoffOffset()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid good-for-day cutoff")
	}

	var sender messaging.MessageSender
	if cfg.Kafka.Enabled {
		pooled := queue.PooledSender{}
		sender = pooled
		defer pooled.Close()
		log.Info().
			Str("broker", cfg.Kafka.BrokerAddr).
			Str("topic", cfg.Kafka.Topic).
			Msg("Kafka publishing enabled")
	}

	manager := engine.NewManager(cutoff, sender)
	defer manager.Close()

	ctx := context.Background()
	if _, err := manager.CreateBook(ctx, defaultBookName); err != nil {
		log.Fatal().Err(err).Msg("Failed to create order book")
	}
	book, _, err := manager.GetBook(ctx, defaultBookName)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to fetch order book")
	}

	if cfg.Redis.Enabled {
		client := redisClient.NewClient(&redisClient.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if _, err := client.Ping(ctx).Result(); err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}

		zapLogger, err := zap.NewProduction()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to build zap logger")
		}

		publisher := marketdata.NewPublisher(client, book, defaultBookName, cfg.Redis.Channel, time.Second, zapLogger)
		publisher.Start()
		defer publisher.Stop()
		defer client.Close()

		log.Info().
			Str("addr", cfg.Redis.Addr).
			Str("channel", cfg.Redis.Channel).
			Msg("Redis market-data publishing enabled")
	}

	log.Info().
		Str("book", defaultBookName).
		Dur("gfd_cutoff", cutoff).
		Msg("tickbook engine running")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("Shutting down")
}
