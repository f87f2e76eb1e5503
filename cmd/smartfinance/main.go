package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"smartfinance/internal/amqp"
	"smartfinance/internal/cache"
	"smartfinance/internal/cli"
	apphttp "smartfinance/internal/http"
	"smartfinance/internal/log"
	"smartfinance/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg.Level())

	ctx, stop := cli.SignalContext()
	defer stop()

	be := cli.InitBackend(ctx, cfg)
	defer func() {
		if be.Cleanup != nil {
			if err := be.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", "error", err)
			}
		}
	}()

	// Events are optional: without a broker the API still serves reads and
	// derives budget spend on the fly.
	opts := services.Options{ReportCacheTTL: cfg.ReportCacheTTL}
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		opts.Publisher = client
		logger.Info("Publishing change events", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}
	svc := services.New(be.Repositories, opts)

	caches := cache.NewManager(logger.WithComponent(log.ComponentCache))
	caches.Register(svc.Reports.Cache())
	caches.StartCleanup(time.Minute)
	defer caches.Stop()

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Dependencies{
		Services:           svc,
		Ping:               be.Ping,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
		Logger:             logger.WithComponent(log.ComponentHTTP),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting smartfinance server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
