package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/channkenn/pta-kaikei/internal/amqp"
	"github.com/channkenn/pta-kaikei/internal/cli"
	"github.com/channkenn/pta-kaikei/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("kaikei-worker")
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the audit worker")
		os.Exit(1)
	}

	repo := cli.InitRepository(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	auditWorker := worker.NewAuditWorker(repo)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting audit worker", "queue", cfg.AMQPQueue, "db", cfg.SQLiteDBPath)
	if err := amqpClient.ConsumeLedgerEvents(ctx, auditWorker.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Audit worker stopped gracefully")
}
