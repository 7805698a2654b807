package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/longregen/livekit-token/internal/adapters/metrics"
	"github.com/longregen/livekit-token/internal/config"
	"github.com/longregen/livekit-token/internal/ports"
)

// HealthCheckConfig holds configuration for health checks
type HealthCheckConfig struct {
	Timeout time.Duration // Timeout for each individual health check
}

// DefaultHealthCheckConfig returns default health check configuration
func DefaultHealthCheckConfig() HealthCheckConfig {
	return HealthCheckConfig{
		Timeout: 5 * time.Second,
	}
}

const (
	statusHealthy       = "healthy"
	statusUnhealthy     = "unhealthy"
	statusNotConfigured = "not_configured"
)

type HealthHandler struct {
	config  HealthCheckConfig
	cfg     *config.Config
	liveKit ports.ConnectivityChecker
	version string
}

func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{
		config:  DefaultHealthCheckConfig(),
		version: version,
	}
}

func NewHealthHandlerWithDeps(cfg *config.Config, liveKit ports.ConnectivityChecker, version string) *HealthHandler {
	return &HealthHandler{
		config:  DefaultHealthCheckConfig(),
		cfg:     cfg,
		liveKit: liveKit,
		version: version,
	}
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

type DetailedHealthResponse struct {
	Status   string                   `json:"status"`
	Version  string                   `json:"version"`
	Services map[string]ServiceHealth `json:"services"`
}

type ServiceHealth struct {
	Status    string  `json:"status"`
	LatencyMs *int64  `json:"latency_ms,omitempty"`
	Error     *string `json:"error,omitempty"`
}

// Handle provides a basic liveness endpoint
func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, HealthResponse{Status: "ok", Version: h.version}, http.StatusOK)
}

// HandleDetailed reports whether the LiveKit server tokens are issued for is
// reachable with the configured credentials.
func (h *HealthHandler) HandleDetailed(w http.ResponseWriter, r *http.Request) {
	response := DetailedHealthResponse{
		Version:  h.version,
		Services: make(map[string]ServiceHealth),
	}

	switch {
	case h.cfg == nil || !h.cfg.IsLiveKitConfigured() || h.liveKit == nil:
		response.Services["livekit"] = ServiceHealth{Status: statusNotConfigured}
	default:
		response.Services["livekit"] = h.checkLiveKit(r.Context())
	}

	response.Status = calculateOverallStatus(response.Services)

	statusCode := http.StatusOK
	if response.Status == statusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	respondJSON(w, response, statusCode)
}

// checkLiveKit checks LiveKit server availability
func (h *HealthHandler) checkLiveKit(ctx context.Context) ServiceHealth {
	start := time.Now()
	checkCtx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	err := h.liveKit.CheckConnection(checkCtx)
	elapsed := time.Since(start)
	metrics.LiveKitCheckDuration.Observe(elapsed.Seconds())
	latency := elapsed.Milliseconds()

	if err != nil {
		errMsg := err.Error()
		return ServiceHealth{
			Status:    statusUnhealthy,
			LatencyMs: &latency,
			Error:     &errMsg,
		}
	}

	return ServiceHealth{
		Status:    statusHealthy,
		LatencyMs: &latency,
	}
}

// calculateOverallStatus is unhealthy if any checked service is unhealthy and
// degraded if one is not configured, since the function then answers 500.
func calculateOverallStatus(services map[string]ServiceHealth) string {
	status := statusHealthy
	for _, svc := range services {
		switch svc.Status {
		case statusUnhealthy:
			return statusUnhealthy
		case statusNotConfigured:
			status = "degraded"
		}
	}
	return status
}
