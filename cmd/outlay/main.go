package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"outlay/internal/amqp"
	"outlay/internal/config"
	"outlay/internal/core"
	apphttp "outlay/internal/http"
	applog "outlay/internal/log"
	"outlay/internal/revenue"
	"outlay/internal/services"
	"outlay/internal/storage"
)

func main() {
	// .env is for local development; absent in production.
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Level: slog.LevelInfo, Component: "api"})
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
			logger.Warn("Failed to connect audit publisher, mutations will not be audited", "error", err)
		} else {
			defer client.Close()
			audit = client
			logger.Info("Audit publisher connected", "exchange", cfg.AMQPExchange)
		}
	}

	var revSource services.RevenueSource
	if cfg.RevenueURL != "" {
		revSource = revenue.NewClient(cfg.RevenueURL)
		logger.Info("Revenue aggregator configured", "url", cfg.RevenueURL)
	} else {
		revSource = revenue.Static{Total: core.Money{Cents: cfg.RevenueStaticCents}}
		logger.Warn("No revenue aggregator configured, using static figure",
			"total_cents", cfg.RevenueStaticCents)
	}

	srv := apphttp.NewServer(":"+cfg.Port,
		services.NewLedgerService(repo, repo, audit),
		services.NewCategoryService(repo, audit),
		services.NewBudgetService(repo, repo, audit),
		services.NewDeductionService(repo, revSource, audit),
		services.NewDashboardService(repo, revSource),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting outlay API", "port", cfg.Port, "db", cfg.SQLiteDBPath)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
