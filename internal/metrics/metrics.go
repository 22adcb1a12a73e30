// Package metrics defines the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheRequests counts RequestCache lookups by result (hit, miss, shared)
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "surfspot_cache_requests_total",
			Help: "Request cache lookups by result",
		},
		[]string{"namespace", "result"},
	)

	// ProviderRequests counts external provider calls by outcome
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "surfspot_provider_requests_total",
			Help: "External provider calls by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	// CircuitBreakerState tracks breaker state (0=closed, 1=half-open, 2=open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "surfspot_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// PipelineDuration observes recommendation request latency
	PipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "surfspot_pipeline_duration_seconds",
			Help:    "Recommendation pipeline duration",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"outcome"},
	)

	// SpotResults counts produced spot results by forecast provenance
	SpotResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "surfspot_spot_results_total",
			Help: "Spot results produced by forecast provenance",
		},
		[]string{"provenance"},
	)

	// HTTPRequests counts API requests by route pattern and status code
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "surfspot_http_requests_total",
			Help: "HTTP API requests by route and status",
		},
		[]string{"route", "status"},
	)
)
