package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mirelabalan/fanvault/adapter/cli"
	"github.com/mirelabalan/fanvault/internal/app"
	"github.com/mirelabalan/fanvault/pkg/config"
	"github.com/mirelabalan/fanvault/pkg/observability"
)

func main() {
	// Setup logger
	logger := observability.NewLogger(observability.LogConfig{
		Level:          observability.LogLevelInfo,
		Format:         observability.LogFormatText,
		ServiceName:    "fanvault",
		ServiceVersion: cli.Version,
	})

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// In development without .env, use defaults
		logger.Warn("failed to load config, using development mode", "error", err)
		cfg = &config.Config{AppEnv: "development"}
	}

	// Update logger based on config
	logCfg := observability.LogConfig{
		Level:          observability.LogLevel(cfg.LogLevel),
		Format:         observability.LogFormatText,
		ServiceName:    "fanvault",
		ServiceVersion: cli.Version,
	}
	if cfg.IsProduction() {
		logCfg.Format = observability.LogFormatJSON
	}
	if cfg.IsDevelopment() {
		logCfg.Level = observability.LogLevelDebug
	}
	logger = observability.NewLogger(logCfg)
	cli.SetLogger(logger)

	// Try to initialize the full container
	container, err := app.NewContainer(ctx, cfg, logger, app.Options{})
	if err != nil {
		if cfg.IsDevelopment() {
			logger.Warn("failed to initialize container, running in limited mode", "error", err)
		} else {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
	} else {
		defer container.Close()

		// Start outbox processor in background (optional in CLI)
		if cfg.OutboxProcessorEnabled {
			go container.OutboxProcessor.Start(ctx)
		} else {
			logger.Info("outbox processor disabled in CLI")
		}

		cli.SetContainer(container)
	}

	// Execute CLI
	cli.Execute()
}
