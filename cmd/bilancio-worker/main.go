package main

import (
	"context"
	"errors"
	"os"
	"time"

	"bilancio/internal/amqp"
	"bilancio/internal/cli"
	applog "bilancio/internal/log"
	"bilancio/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the snapshot worker")
		os.Exit(1)
	}

	repo := cli.OpenRepository(logger, cfg)
	defer repo.Close()

	broker := cli.ConnectBroker(logger, cfg, true)
	defer broker.Close()

	snapshots := worker.NewSnapshotWorker(repo)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	logger.Info("Starting bilancio-worker", "queue", cfg.AMQPQueue)
	err := broker.ConsumeExpenseEvents(ctx, func(event *amqp.ExpenseEvent) error {
		return snapshots.HandleExpenseEvent(ctx, event)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Event consumption failed", "error", err)
		os.Exit(1)
	}

	<-done
	logger.Info("Worker stopped gracefully")
}
