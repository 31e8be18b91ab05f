package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/scamdetect/hybrid-scam-detector/internal/core"
	"github.com/scamdetect/hybrid-scam-detector/internal/di"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	ingress core.MessageIngress,
	oracle core.GenerativeAnalyzer,
	cache core.ReputationCache,
) error {
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start the ingress; server ingresses block until the listener stops
	errCh := make(chan error, 1)
	go func() {
		errCh <- ingress.Start(ctx)
	}()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("Shutting down...", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("Ingress terminated", zap.Error(err))
		}
	}

	// Stop the ingress
	if err := ingress.Stop(); err != nil {
		logger.Error("Failed to stop ingress", zap.Error(err))
	}

	// Release oracle resources if they were ever initialized
	if err := oracle.Close(); err != nil {
		logger.Error("Failed to close oracle", zap.Error(err))
	}

	// Stop the cache background cleanup if needed
	if stopper, ok := cache.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	logger.Info("Shutdown complete")
	return nil
}
