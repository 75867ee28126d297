package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"achpay/internal/amqp"
	"achpay/internal/backend"
	"achpay/internal/cache"
	"achpay/internal/cli"
	"achpay/internal/config"
	apphttp "achpay/internal/http"
	"achpay/internal/log"
	"achpay/internal/nonprofits"
	"achpay/internal/records/memory"
	"achpay/internal/services"
	"achpay/internal/worker"
)

const cacheCleanupInterval = time.Minute

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	if err := run(cfg, logger); err != nil {
		logger.Error("achpay exited with error", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return fmt.Errorf("create %s backend: %w", backendCfg.Type, err)
	}
	defer func() {
		if err := res.Close(); err != nil {
			logger.Warn("Backend cleanup failed", log.FieldError, err.Error())
		}
	}()

	// A source that cannot be read at startup is fatal.
	store, err := memory.New(ctx, res.Source)
	if err != nil {
		return err
	}
	logger.Info("Payment records ready", log.FieldSource, store.Source(), log.FieldRecordCount, store.Len())

	np := nonprofits.New(nonprofits.Config{
		BaseURL:  cfg.NonprofitBaseURL,
		APIKey:   cfg.NonprofitAPIKey,
		CacheTTL: cfg.NonprofitCacheTTL,
		Logger:   logger,
	})
	if !np.Enabled() {
		logger.Warn("NONPROFIT_API_KEY not set, nonprofit search will return no results")
	}
	caches := cache.NewManager()
	if c := np.Cache(); c != nil {
		caches.Register(c)
	}

	var consumer worker.Consumer
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without queued reloads", log.FieldError, err.Error())
		} else {
			defer client.Close()
			consumer = client
			logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}
	reloader := worker.NewReloadWorker(store, consumer, cfg.ReloadCron, logger)

	srv := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		CORSOrigins:        cfg.CORSOrigins,
		NonprofitRateLimit: cfg.NonprofitRateLimit,
		Logger:             logger,
	}, services.NewPaymentService(store), np, store)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting achpay server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return caches.Run(gctx, cacheCleanupInterval)
	})

	if reloader.Enabled() {
		g.Go(func() error {
			logger.Info("Starting reload worker", "cron", cfg.ReloadCron, "amqp", consumer != nil)
			return reloader.Run(gctx)
		})
	}

	return g.Wait()
}
