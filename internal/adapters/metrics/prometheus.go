package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "livekit_token_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "livekit_token_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	TokenRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "livekit_token_requests_total",
		Help: "Token function invocations by outcome",
	}, []string{"outcome"})

	LiveKitCheckDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "livekit_token_livekit_check_duration_seconds",
		Help:    "LiveKit connectivity check duration",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	})
)
