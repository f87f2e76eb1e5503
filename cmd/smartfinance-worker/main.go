package main

import (
	"context"
	"errors"
	"os"

	"smartfinance/internal/amqp"
	"smartfinance/internal/cli"
	"smartfinance/internal/services"
	"smartfinance/internal/sheets"
	gsheet "smartfinance/internal/sheets/google"
	"smartfinance/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg.Level())

	logger.Info("Starting smartfinance-worker")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required by the worker")
		os.Exit(1)
	}
	if cfg.DataBackend == "memory" {
		logger.Warn("Memory backend is private to this process; stored budget spend will not reach the API",
			"backend", cfg.DataBackend)
	}

	ctx, stop := cli.SignalContext()
	defer stop()

	be := cli.InitBackend(ctx, cfg)
	defer func() {
		if be.Cleanup != nil {
			_ = be.Cleanup()
		}
	}()
	svc := services.New(be.Repositories, services.Options{})

	var mirror sheets.TransactionMirror
	if cfg.SheetsEnabled() {
		client, err := gsheet.NewFromConfig(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		mirror = client
		logger.Info("Google Sheets mirror enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	} else {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	w := worker.New(svc.Budgets, svc.Transactions, mirror)
	if err := client.Consume(ctx, w.Handle); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
