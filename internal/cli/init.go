// Package cli provides common CLI initialization utilities shared by
// cmd/smartfinance and cmd/smartfinance-worker.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"smartfinance/internal/backend"
	"smartfinance/internal/config"
	"smartfinance/internal/log"
)

// SetupLogger installs a text handler at the given level as the default for
// both slog and the component loggers.
func SetupLogger(level slog.Level) *log.Logger {
	logger := log.New(log.Config{
		Level:     level,
		Component: log.ComponentApp,
		Handler:   slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}),
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig() *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitBackend opens the configured data backend or exits the process.
func InitBackend(ctx context.Context, cfg *config.Config) *backend.BackendResult {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		slog.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(log.ForComponent(log.ComponentBackend)).CreateBackend(ctx, bcfg)
	if err != nil {
		slog.Error("Failed to initialize data backend", "error", err, "backend", bcfg.Type)
		os.Exit(1)
	}
	return result
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
