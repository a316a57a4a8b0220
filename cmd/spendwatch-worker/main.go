package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"spendwatch/internal/amqp"
	"spendwatch/internal/config"
	applog "spendwatch/internal/log"
	"spendwatch/internal/services"
	"spendwatch/internal/storage"
	"spendwatch/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentWorker)
	applog.SetDefault(logger)

	logger.Info("Starting spendwatch-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRecordQueue, cfg.AMQPAlertQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	processor := services.NewIngestProcessor(repo)
	ingestWorker := worker.NewIngestWorker(processor, repo, repo, amqpClient)

	// Run an anomaly scan on startup so a restarted worker catches up.
	if err := ingestWorker.RunAnomalyScan(ctx, time.Now().UTC()); err != nil {
		logger.Error("Startup anomaly scan failed", "error", err)
	}

	consumeDone := make(chan struct{})
	go func() {
		defer close(consumeDone)
		handler := func(msg *amqp.SpendRecordMessage) error {
			return ingestWorker.HandleRecordMessage(ctx, msg)
		}
		if err := amqpClient.ConsumeSpendRecords(ctx, handler); err != nil {
			if err != context.Canceled {
				logger.Error("Message consumption failed", "error", err)
			}
			cancel()
		}
	}()

	ticker := time.NewTicker(cfg.ScanInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := ingestWorker.RunAnomalyScan(ctx, time.Now().UTC()); err != nil {
					logger.Error("Periodic anomaly scan failed", "error", err)
				}
			}
		}
	}()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	logger.Info("Shutting down worker...")
	cancel()

	// Wait for the consume loop to drain its in-flight message
	select {
	case <-consumeDone:
		logger.Info("Worker shutdown complete")
	case <-time.After(30 * time.Second):
		logger.Warn("Shutdown timeout reached waiting for consumer")
	}
}
