package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/longregen/livekit-token/internal/adapters/circuitbreaker"
	"github.com/longregen/livekit-token/internal/adapters/http"
	"github.com/longregen/livekit-token/internal/adapters/id"
	"github.com/longregen/livekit-token/internal/ports"
	"github.com/spf13/cobra"
)

const (
	shutdownTimeout = 30 * time.Second

	// After checkMaxFailures failed checks, /health/detailed stops dialling
	// LiveKit for checkCooldown.
	checkMaxFailures = 3
	checkCooldown    = 30 * time.Second
)

// serveCmd starts the HTTP server
func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP token server",
		Long: `Start an HTTP server exposing the token function at POST /api/v1/token.

Configuration:
  - LiveKit (LIVEKIT_URL, LIVEKIT_API_KEY, LIVEKIT_API_SECRET)

The server starts without LiveKit credentials; token requests then fail
with "Function is not configured correctly." and /health/detailed reports
the service as degraded.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

// runServer initializes and starts the HTTP server
func runServer(ctx context.Context) error {
	slog.Info("starting livekit-token server",
		"http", fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port),
		"livekit", cfg.LiveKit.URL,
		"token_ttl", cfg.LiveKit.TokenTTL,
	)

	shutdownTracing := initTracing(http.ServiceName, os.Stderr)
	defer shutdownTracing(context.Background())

	fn, svc := newFunction()

	var checker ports.ConnectivityChecker
	if svc != nil {
		checker = circuitbreaker.NewChecker(svc, checkMaxFailures, checkCooldown)
	}

	server := http.NewServer(cfg, fn, checker, id.New(), version)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutting down gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		slog.Info("server stopped")
		return nil
	}
}
