package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/longregen/livekit-token/internal/adapters/http/handlers"
	"github.com/longregen/livekit-token/internal/adapters/http/middleware"
	"github.com/longregen/livekit-token/internal/config"
	"github.com/longregen/livekit-token/internal/ports"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/riandyrn/otelchi"
)

// ServiceName identifies the server in traces
const ServiceName = "livekit-token"

// Server hosts the token function behind HTTP, standing in for a serverless
// platform's invocation layer.
type Server struct {
	config     *config.Config
	router     *chi.Mux
	httpServer *http.Server
	fn         handlers.Invoker
	liveKit    ports.ConnectivityChecker
	ids        middleware.RequestIDGenerator
	version    string
}

// NewServer wires the routes. liveKit may be nil when credentials are missing.
func NewServer(
	cfg *config.Config,
	fn handlers.Invoker,
	liveKit ports.ConnectivityChecker,
	ids middleware.RequestIDGenerator,
	version string,
) *Server {
	s := &Server{
		config:  cfg,
		fn:      fn,
		liveKit: liveKit,
		ids:     ids,
		version: version,
	}

	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID(s.ids))
	r.Use(middleware.Logger)
	r.Use(middleware.Recovery)
	r.Use(middleware.CORS(s.config.Server.CORSOrigins))
	r.Use(middleware.Metrics)
	r.Use(middleware.Tracing(ServiceName, otelchi.WithChiRoutes(r)))

	healthHandler := handlers.NewHealthHandler(s.version)
	detailedHealthHandler := handlers.NewHealthHandlerWithDeps(s.config, s.liveKit, s.version)
	r.Get("/health", healthHandler.Handle)
	r.Get("/health/detailed", detailedHealthHandler.HandleDetailed)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		configHandler := handlers.NewConfigHandler(s.config)
		r.Get("/config", configHandler.GetPublicConfig)

		tokenHandler := handlers.NewTokenHandler(s.fn)
		r.Post("/token", tokenHandler.Issue)
	})

	s.router = r
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	slog.Info("starting HTTP server", "addr", addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	slog.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Router() *chi.Mux {
	return s.router
}
