// Package cli provides common initialization shared by the bilancio
// binaries: logging, env loading, configuration and connection setup.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"bilancio/internal/amqp"
	"bilancio/internal/config"
	applog "bilancio/internal/log"
	"bilancio/internal/storage"
)

// SetupLogger initializes structured logging with default settings and sets
// the result as the process default logger.
func SetupLogger(component string) *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Component = component
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development. Errors are ignored
// silently as the file is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it. Returns the
// config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// OpenRepository opens the configured database backend and runs migrations.
// Returns the repository or exits the process on failure.
func OpenRepository(logger *applog.Logger, cfg *config.Config) *storage.Repository {
	backend := storage.Backend(cfg.DBBackend)
	repo, err := storage.New(backend, cfg.DSN())
	if err != nil {
		logger.Error("Failed to initialize repository",
			"error", err,
			"backend", cfg.DBBackend,
			"dsn", cfg.DSN())
		os.Exit(1)
	}
	logger.Info("Repository initialized", "backend", cfg.DBBackend)
	return repo
}

// ConnectBroker connects to the message broker when one is configured.
// Returns nil when AMQP_URL is empty; the caller treats a nil client as
// events disabled. Exits the process when a configured broker is
// unreachable at startup under requireBroker.
func ConnectBroker(logger *applog.Logger, cfg *config.Config, requireBroker bool) *amqp.Client {
	if cfg.AMQPURL == "" {
		logger.Info("AMQP disabled - no AMQP_URL provided")
		return nil
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		if requireBroker {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		// The API can run without events.
		logger.Warn("AMQP broker unreachable at startup, continuing without events", "error", err)
		return nil
	}
	logger.Info("AMQP client initialized",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)
	return client
}

// GracefulShutdown sets up signal handling. It returns a context cancelled
// on SIGINT or SIGTERM and a channel closed once cleanup has run.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		cancel()
		close(done)
	}()

	return ctx, done
}
