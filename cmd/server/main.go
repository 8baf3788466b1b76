package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/jgirmay/geoattend/pkg/config"
	"github.com/jgirmay/geoattend/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(logging.LogLevel(cfg.Logging.Level), cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("[INIT] Configuration loaded", zap.Stringer("config", cfg))

	app, err := NewApp(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runErr := app.Run(ctx)
	if err := app.Close(); err != nil {
		logger.Error("database close failed", zap.Error(err))
	}
	if runErr != nil {
		logger.Error("server stopped with error", zap.Error(runErr))
		os.Exit(1)
	}

	logger.Info("[SHUTDOWN] ✓ Graceful shutdown complete")
}
