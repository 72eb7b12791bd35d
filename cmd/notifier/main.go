package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/SAP-F-2025/course-service/internal/config"
	"github.com/SAP-F-2025/course-service/internal/events"
	"github.com/SAP-F-2025/course-service/internal/utils"
)

// notifier consumes course events and turns them into member notifications.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := utils.ToSlogLogger(utils.NewLogger(cfg.Environment))

	subscriber, err := events.NewKafkaSubscriber(cfg.Events.GetKafkaBrokers(), cfg.Events.ConsumerGroup, logger)
	if err != nil {
		log.Fatalf("subscriber: %v", err)
	}
	defer subscriber.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatcher := events.NewDispatcher(events.LogSink{Logger: logger}, logger)
	logger.Info("Notifier consuming", "topic", cfg.Events.Topic, "consumer_group", cfg.Events.ConsumerGroup)
	if err := events.RunConsumer(ctx, subscriber, cfg.Events.Topic, dispatcher, logger); err != nil {
		logger.Error("Consumer stopped", "error", err)
		os.Exit(1)
	}
}
