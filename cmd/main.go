package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"optionpulse/internal/adapters/config"
	"optionpulse/internal/adapters/errors/noop"
	"optionpulse/internal/adapters/errors/sentry"
	"optionpulse/internal/bootstrap"
	"optionpulse/pkg/errors"
	"optionpulse/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	// Initialize error tracker
	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	// Build dependency graph
	container, err := bootstrap.NewContainer(cfg, log, errorTracker)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer container.Close()

	// Start background workers
	if err := container.Start(); err != nil {
		log.Fatalf("Failed to start workers: %v", err)
	}

	// Start HTTP server
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- container.Server.Start()
	}()

	log.Info("System initialized successfully")

	waitForShutdown(container, errorTracker, serverErr, log)
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// waitForShutdown waits for a shutdown signal or a server failure and
// performs graceful shutdown
func waitForShutdown(container *bootstrap.Container, errorTracker errors.Tracker, serverErr <-chan error, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info("Shutting down...")
	case err := <-serverErr:
		if err != nil {
			log.Errorf("HTTP server failed: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := container.Server.Shutdown(shutdownCtx); err != nil {
		log.Warnf("HTTP server shutdown failed: %v", err)
	}

	container.Cancel()

	if err := errorTracker.Flush(shutdownCtx); err != nil {
		log.Warnf("Failed to flush error tracker: %v", err)
	}

	log.Info("Shutdown complete")
}
