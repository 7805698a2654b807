package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/longregen/livekit-token/internal/adapters/id"
	"github.com/longregen/livekit-token/internal/adapters/livekit"
	"github.com/longregen/livekit-token/internal/adapters/tracing"
	"github.com/longregen/livekit-token/internal/config"
	"github.com/longregen/livekit-token/internal/function"
)

// Version information (set via ldflags)
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

// Shared global variables
var (
	cfg *config.Config
)

// newFunction builds the token function from cfg. The LiveKit service is nil
// when credentials are incomplete; the function then answers every request
// with a configuration error instead of refusing to start.
func newFunction() (*function.Handler, *livekit.Service) {
	opts := []function.Option{function.WithIDGenerator(id.New())}

	if !cfg.IsLiveKitConfigured() {
		slog.Warn("LiveKit not configured, every request will fail until credentials are set")
		return function.New(cfg.LiveKit, nil, opts...), nil
	}

	svc, err := livekit.NewService(&livekit.ServiceConfig{
		URL:                   cfg.LiveKit.URL,
		APIKey:                cfg.LiveKit.APIKey,
		APISecret:             cfg.LiveKit.APISecret,
		TokenValidityDuration: cfg.LiveKit.TokenTTL,
	})
	if err != nil {
		slog.Warn("failed to initialize LiveKit service", "error", err)
		return function.New(cfg.LiveKit, nil, opts...), nil
	}

	return function.New(cfg.LiveKit, svc, opts...), svc
}

// initTracing installs the stdout span exporter when tracing is enabled.
// The returned shutdown is never nil.
func initTracing(serviceName string, w io.Writer) func(context.Context) {
	if !cfg.Tracing.Enabled {
		return func(context.Context) {}
	}

	shutdown, err := tracing.InitTracer(serviceName, w)
	if err != nil {
		slog.Warn("failed to initialize tracing", "error", err)
		return func(context.Context) {}
	}

	slog.Debug("OpenTelemetry tracing initialized")
	return func(ctx context.Context) {
		if err := shutdown(ctx); err != nil {
			slog.Error("error shutting down tracer", "error", err)
		}
	}
}

// maskSecret masks a secret string for display
func maskSecret(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 8 {
		return "(set)"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// boolStatus returns a status string for a boolean
func boolStatus(b bool) string {
	if b {
		return "configured"
	}
	return "not configured"
}
