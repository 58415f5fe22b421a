package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Akashdb5/champa-cognitive-ai-inbox/config"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/internal/bootstrap"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/pkg/logger"

	"github.com/joho/godotenv"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Initialize logger early so config errors are structured
	logger.Init(logger.Config{
		Level:   "info",
		Service: "champa-inbox",
	})

	// Load .env file if exists (for local development)
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using environment variables")
	}

	mode := flag.String("mode", "all", "Run mode: api, worker, all")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid config: %v", err)
	}

	switch *mode {
	case "api":
		runAPI(cfg)
	case "worker":
		runWorker(cfg)
	case "all":
		go runWorker(cfg)
		runAPI(cfg)
	default:
		logger.Fatal("Unknown mode: %s", *mode)
	}
}

func runAPI(cfg *config.Config) {
	app, cleanup, err := bootstrap.NewAPI(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize API: %v", err)
	}
	defer cleanup()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down API server (timeout: %v)...", shutdownTimeout)

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		done := make(chan error, 1)
		go func() {
			done <- app.Shutdown()
		}()

		select {
		case err := <-done:
			if err != nil {
				logger.Error("Error shutting down: %v", err)
			} else {
				logger.Info("API server shut down gracefully")
			}
		case <-ctx.Done():
			logger.Warn("API shutdown timed out, forcing exit")
		}
	}()

	addr := ":" + cfg.Port
	logger.Info("Starting API server on %s", addr)
	if err := app.Listen(addr); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}

func runWorker(cfg *config.Config) {
	w, err := bootstrap.NewWorker(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize worker: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down worker (timeout: %v)...", shutdownTimeout)
		cancel()

		time.AfterFunc(shutdownTimeout, func() {
			logger.Warn("Worker shutdown timed out, forcing exit")
			os.Exit(1)
		})
	}()

	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Fatal("Worker stopped: %v", err)
	}
	logger.Info("Worker shut down gracefully")
}
