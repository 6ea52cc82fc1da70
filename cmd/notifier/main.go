package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/example/marketplace-orders/internal/infrastructure/kafka"
	"github.com/example/marketplace-orders/internal/infrastructure/redis"
	"github.com/example/marketplace-orders/internal/notification"
	"github.com/example/marketplace-orders/internal/telemetry"
)

// The notifier relays notifications from Kafka to the Redis channels
// subscribers listen on. It needs no gateway credentials, so it reads its few
// settings directly.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telemetry.InitLogger(slog.LevelInfo)

	kafkaBrokers := strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ",")
	kafkaTopic := getEnv("KAFKA_TOPIC", "order-notifications")
	consumerGroup := getEnv("KAFKA_GROUP", "notification-relay")
	redisAddr := getEnv("REDIS_ADDR", "localhost:6379")

	slog.Info("starting notification relay",
		"component", "Notifier",
		"brokers", kafkaBrokers,
		"topic", kafkaTopic,
		"group", consumerGroup,
		"redis", redisAddr,
	)

	publisher := redis.NewPublisher(redisAddr)
	defer publisher.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	err := publisher.Ping(pingCtx)
	cancel()
	if err != nil {
		slog.Error("failed to reach Redis", "component", "Notifier", "error", err)
		os.Exit(1)
	}

	relay := notification.NewRelay(publisher)

	consumer := kafka.NewConsumer(kafkaBrokers, kafkaTopic, consumerGroup)
	defer consumer.Close()

	slog.Info("listening for notifications", "component", "Notifier", "topic", kafkaTopic)
	if err := consumer.Consume(ctx, relay.HandleMessage); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("consumer error", "component", "Notifier", "error", err)
	}
	slog.Info("shutting down", "component", "Notifier")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
