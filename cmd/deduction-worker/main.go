package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"outlay/internal/amqp"
	"outlay/internal/config"
	"outlay/internal/core"
	applog "outlay/internal/log"
	"outlay/internal/revenue"
	"outlay/internal/services"
	"outlay/internal/storage"
)

// deduction-worker is the periodic trigger for deduction generation. The
// calculation itself is idempotent per period, so overlapping runs (or a
// user firing it manually through the API at the same time) are harmless.
func main() {
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Level: slog.LevelInfo, Component: "deduction-worker"})
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.Open(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	var audit services.AuditLogger
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to connect audit publisher, continuing without audit", "error", err)
		} else {
			defer client.Close()
			audit = client
		}
	}

	var revSource services.RevenueSource
	if cfg.RevenueURL != "" {
		revSource = revenue.NewClient(cfg.RevenueURL)
	} else {
		revSource = revenue.Static{Total: core.Money{Cents: cfg.RevenueStaticCents}}
		logger.Warn("No revenue aggregator configured, using static figure",
			"total_cents", cfg.RevenueStaticCents)
	}

	deductions := services.NewDeductionService(repo, revSource, audit)
	period := core.Period{Kind: core.PeriodKind(cfg.DeductionPeriod)}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	run := func() {
		runCtx, runCancel := context.WithTimeout(ctx, time.Minute)
		defer runCancel()
		ids, err := deductions.Calculate(runCtx, cfg.SchedulerActor, period)
		if err != nil {
			logger.Error("Deduction calculation failed", "error", err)
			return
		}
		logger.Info("Deduction calculation complete",
			"generated", len(ids), "period", cfg.DeductionPeriod)
	}

	logger.Info("Running initial deduction calculation...")
	run()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.DeductionCron, run); err != nil {
		logger.Error("Failed to schedule deduction calculation", "error", err, "spec", cfg.DeductionCron)
		os.Exit(1)
	}
	scheduler.Start()
	logger.Info("Deduction scheduler started", "spec", cfg.DeductionCron)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Shutdown signal received", "signal", sig.String())

	cancel()
	stopCtx := scheduler.Stop()
	select {
	case <-stopCtx.Done():
		logger.Info("Deduction-worker shutdown complete")
	case <-time.After(30 * time.Second):
		logger.Warn("Shutdown timeout reached")
	}
}
