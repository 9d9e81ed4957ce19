package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"finpal/internal/cache"
	"finpal/internal/cli"
	apphttp "finpal/internal/http"
	"finpal/internal/log"
	"finpal/internal/rules"
	"finpal/internal/services"
	"finpal/internal/session"
)

const (
	shutdownTimeout = 30 * time.Second
	sweepInterval   = time.Minute
)

func main() {
	cli.LoadEnvFile(log.New(log.DefaultConfig()))

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.Fatal(log.New(log.DefaultConfig()), "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(cfg)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	result, err := cli.InitBackend(ctx, cfg, logger)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize rules backend", err)
	}
	defer func() {
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", log.FieldError, err)
			}
		}
	}()

	opts := []rules.Option{rules.WithLogger(logger.WithComponent(log.ComponentRules))}
	if notifier := cli.InitNotifier(ctx, cfg, logger); notifier != nil {
		defer notifier.Close()
		opts = append(opts, rules.WithNotifier(notifier))
	}
	store := rules.NewStore(result.Backend, opts...)
	cli.LoadRules(ctx, store, logger)

	sessions := session.NewStore(cfg.SessionMaxEntries, cfg.SessionTTL)
	caches := cache.NewManager(logger.WithComponent(log.ComponentSession))
	caches.Register(sessions.Cleaner())

	dash := services.NewDashboardService(store, sessions, logger)
	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:           ":" + cfg.Port,
		Currency:       cfg.Currency,
		MaxUploadBytes: cfg.MaxUploadBytes,
		RateLimitRPM:   cfg.RateLimitRPM,
		Logger:         logger,
	}, dash)
	if err != nil {
		cli.Fatal(logger, "Failed to build HTTP server", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting finpal server", "port", cfg.Port, log.FieldBackend, cfg.RulesBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error { return caches.Run(gctx, sweepInterval) })
	g.Go(func() error { return srv.Limiter().Run(gctx, sweepInterval) })
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err)
		return
	}
	logger.Info("Server stopped gracefully")
}
