package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"lodgebook/internal/notifications/dispatcher"
	"lodgebook/pkg/config"
	"lodgebook/pkg/kafka"
	kafka_middleware "lodgebook/pkg/kafka/middleware"
)

const ServiceName = "notifier"

func main() {
	cfg := config.Load(ServiceName)

	notifications := dispatcher.New(dispatcher.NewLogNotifier(cfg.Log), cfg.Log)

	consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    cfg.BookingEventsTopic,
		GroupID:  cfg.NotifierGroupID,
		DLQTopic: cfg.BookingEventsDLQTopic,
		Log:      cfg.Log,
	}, notifications.Handle)
	if err != nil {
		cfg.Log.Fatal("Failed to create consumer", "error", err)
	}

	metrics := kafka_middleware.NewMetrics()
	consumer.Use(kafka_middleware.Logging(cfg.Log))
	consumer.Use(metrics.Middleware())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumerErrors := make(chan error, 1)
	go func() {
		cfg.Log.Info("Starting notification dispatcher",
			"topic", cfg.BookingEventsTopic,
			"group_id", cfg.NotifierGroupID,
		)
		consumerErrors <- consumer.Start(ctx)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-consumerErrors:
		if !errors.Is(err, context.Canceled) {
			cfg.Log.Fatal("Consumer failed", "error", err)
		}

	case sig := <-shutdown:
		cfg.Log.Info("Shutdown signal received", "signal", sig)
		cancel()
		<-consumerErrors
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close consumer", "error", err)
	}

	snapshot := metrics.Snapshot()
	cfg.Log.Info("Dispatcher stopped",
		"messages_consumed", snapshot.Consumed,
		"messages_failed", snapshot.Failed,
		"avg_duration", snapshot.AvgDuration,
	)
}
