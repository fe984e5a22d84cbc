package main

import (
	"context"
	"errors"
	"os"
	"time"

	"gastos/internal/amqp"
	"gastos/internal/cli"
	"gastos/internal/log"
	"gastos/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentWorker)
	logger.Info("Starting gastos-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	// The consumer below owns the only AMQP connection.
	res := cli.InitReadOnlyBackend(context.Background(), logger, cfg)

	mirror, err := cli.InitMirror(context.Background(), logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize mirror", log.FieldError, err)
		os.Exit(1)
	}

	var (
		consumer worker.Consumer
		client   *amqp.Client
	)
	if cfg.AMQPEnabled() {
		client, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		consumer = client
	} else {
		logger.Warn("AMQP_URL not set, running periodic resync only", "interval", cfg.SyncInterval)
	}

	ctx, done := cli.GracefulShutdown(logger, 15*time.Second, func(context.Context) {
		if client != nil {
			if err := client.Close(); err != nil {
				logger.Error("AMQP close error", log.FieldError, err)
			}
		}
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", log.FieldError, err)
			}
		}
	})

	// The worker reads the raw snapshot; it never mutates the ledger.
	w := worker.NewMirrorWorker(res.Snapshot, mirror, logger)
	if err := w.Run(ctx, consumer, cfg.SyncInterval); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
