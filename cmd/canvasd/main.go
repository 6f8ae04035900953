// canvasd serves the QA documentation API: ticket analysis, canvas
// refinement over chat, and suggestion generation, backed by a
// failover chain of AI providers.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/qa-canvas/canvasd/pkg/api"
	"github.com/qa-canvas/canvasd/pkg/config"
	"github.com/qa-canvas/canvasd/pkg/llm"
	"github.com/qa-canvas/canvasd/pkg/metrics"
	"github.com/qa-canvas/canvasd/pkg/session"
	"github.com/qa-canvas/canvasd/pkg/version"
)

func main() {
	configDir := flag.String("config-dir", getEnv("CONFIG_DIR", "."),
		"Path to configuration directory")
	flag.Parse()

	// Load .env from the config directory; absence is not an error.
	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		slog.Debug("No .env file loaded, continuing with existing environment",
			"path", envPath)
	} else {
		slog.Info("Loaded environment", "path", envPath)
	}

	ctx := context.Background()

	// 1. Configuration: environment settings plus the provider chain.
	cfg, err := config.Initialize(ctx, *configDir)
	if err != nil {
		slog.Error("Failed to initialize configuration", "error", err)
		os.Exit(1)
	}
	slog.Info("Starting canvasd",
		"version", version.Full(),
		"port", cfg.Service.Port,
		"providers", cfg.Stats().Providers)

	// 2. Metrics recorder feeding the slog sink.
	recorder := metrics.NewRecorder(metrics.DefaultRingCapacity,
		metrics.NewSlogSink(slog.Default()))

	// 3. Provider gateway.
	gateway, err := llm.NewGateway(cfg, recorder)
	if err != nil {
		slog.Error("Failed to initialize provider gateway", "error", err)
		os.Exit(1)
	}
	slog.Info("Provider gateway initialized", "chain", gateway.ProviderNames())

	// 4. Session store with its expiry sweeper.
	sessions := session.NewManager(cfg.Service.SessionTTL)
	sessions.Start(ctx)
	defer sessions.Stop()

	// 5. HTTP server.
	httpServer := api.NewServer(cfg, gateway, sessions)

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Service.Port)
		slog.Info("HTTP server listening", "addr", addr)
		if err := httpServer.Start(addr); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			errCh <- err
		}
	}()

	// 6. Wait for a shutdown signal or a server error.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		slog.Info("Shutdown signal received", "signal", sig)
	case err := <-errCh:
		slog.Error("Server error triggered shutdown", "error", err)
	}

	// 7. Graceful shutdown. In-memory sessions do not survive restarts,
	// so draining requests is all that matters.
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
