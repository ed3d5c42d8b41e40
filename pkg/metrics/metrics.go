package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ⭐ SSOT: 모든 Prometheus 메트릭은 여기서만 정의
var (
	// Gateway metrics
	GatewayRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "histolib_gateway_requests_total",
			Help: "Remote API requests by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)
	GatewayLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "histolib_gateway_request_seconds",
			Help:    "Remote API request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Registry metrics
	CardLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "histolib_card_loads_total",
			Help: "Per-ticker card load results by part (stats, history) and state",
		},
		[]string{"part", "state"},
	)
	StaleResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "histolib_stale_results_total",
			Help: "Async results discarded because their target was no longer current",
		},
		[]string{"component"},
	)

	// Quiz metrics
	QuizCompletions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "histolib_quiz_completions_total",
			Help: "Completed quizzes by result band",
		},
		[]string{"band"},
	)

	// API metrics
	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "histolib_api_request_duration_seconds",
			Help:    "API request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		GatewayRequests,
		GatewayLatency,
		CardLoads,
		StaleResults,
		QuizCompletions,
		APIRequestDuration,
	)
}

// Handler exposes the default registry for scraping
func Handler() http.Handler {
	return promhttp.Handler()
}
