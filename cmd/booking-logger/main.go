// Command booking-logger consumes booking.confirmed events and appends
// one line per booking to logs/booking.log.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/vivekyarra/moviesbyvivek/internal/config"
	"github.com/vivekyarra/moviesbyvivek/internal/logger"
	"github.com/vivekyarra/moviesbyvivek/internal/queue"
)

func main() {
	config.LoadDotEnv()
	cfg := config.Load()
	log := logger.New(cfg.Env, cfg.LogLevel)

	dir := os.Getenv("BOOKING_LOG_DIR")
	if dir == "" {
		dir = "logs"
	}
	sink := queue.NewBookingLog(dir)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("booking logger started", "broker", cfg.Events.Broker, "topic", cfg.Events.Topic, "file", sink.Path())
	var err error
	switch cfg.Events.Broker {
	case config.BrokerKafka:
		err = queue.ConsumeKafka(ctx, cfg.Events.KafkaBrokers, cfg.Events.Topic, "booking-logger", sink, log)
	case config.BrokerRabbitMQ:
		err = queue.ConsumeRabbit(ctx, cfg.Events.RabbitURL, cfg.Events.Topic, sink, log)
	default:
		log.Error("EVENT_BROKER must be rabbitmq or kafka", "broker", cfg.Events.Broker)
		os.Exit(2)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("booking logger stopped", "error", err)
		os.Exit(1)
	}
}
