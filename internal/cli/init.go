// Package cli holds the startup steps of cmd/finpal: environment, logging,
// backend selection and signal handling.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"finpal/internal/amqp"
	"finpal/internal/backend"
	"finpal/internal/config"
	"finpal/internal/core"
	"finpal/internal/log"
	"finpal/internal/rules"
)

// LoadEnvFile loads ./.env for local development. A missing file is fine.
func LoadEnvFile(logger *log.Logger) {
	if err := config.LoadDotEnv(); err != nil {
		logger.Warn("Could not read .env file", log.FieldError, err)
	}
}

// LoadAndValidateConfig reads the environment and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetupLogger builds the application logger from cfg and makes it the
// process default.
func SetupLogger(cfg *config.Config) *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: log.ComponentApp,
		Output:    os.Stdout,
	})
	log.SetDefault(logger)
	return logger
}

// InitBackend creates the configured rules backend. The caller must run the
// returned cleanup.
func InitBackend(ctx context.Context, cfg *config.Config, logger *log.Logger) (*backend.BackendResult, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	return backend.NewFactory(logger).CreateBackend(ctx, bcfg)
}

// InitNotifier connects to the broker when AMQP_URL is set. Without a URL,
// or when the broker cannot be reached, it returns nil and the store runs
// without notifications.
func InitNotifier(ctx context.Context, cfg *config.Config, logger *log.Logger) *amqp.Client {
	if cfg.AMQPURL == "" {
		return nil
	}
	amqpLogger := logger.WithComponent(log.ComponentAMQP)
	client, err := amqp.NewClient(ctx, amqp.Config{
		URL:             cfg.AMQPURL,
		Exchange:        cfg.AMQPExchange,
		RoutingKey:      cfg.AMQPRoutingKey,
		ConnectAttempts: cfg.AMQPConnectAttempts,
		DialTimeout:     cfg.AMQPDialTimeout,
	}, amqpLogger)
	if err != nil {
		amqpLogger.WarnContext(ctx, "AMQP unavailable, rule change notifications disabled", log.FieldError, err)
		return nil
	}
	amqpLogger.InfoContext(ctx, "AMQP connected", "exchange", cfg.AMQPExchange)
	return client
}

// LoadRules reads the persisted rules into store. A broken rules source is
// reported and the defaults are used; it never stops startup.
func LoadRules(ctx context.Context, store *rules.Store, logger *log.Logger) {
	err := store.Load(ctx)
	var cfgErr *core.ConfigError
	switch {
	case err == nil:
	case errors.As(err, &cfgErr):
		logger.WarnContext(ctx, "Category rules unreadable, using defaults", log.FieldError, cfgErr)
	default:
		logger.ErrorContext(ctx, "Category rules load failed, using defaults", log.FieldError, err)
	}
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// Fatal logs err and exits.
func Fatal(logger *log.Logger, msg string, err error) {
	logger.Error(msg, log.FieldError, err)
	fmt.Fprintln(os.Stderr, msg+":", err)
	os.Exit(1)
}
