package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Heatmap request metrics
	HeatmapRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "optionpulse_heatmap_requests_total",
			Help: "Total number of heatmap requests",
		},
		[]string{"status"}, // status: cached|computed|invalid|error
	)

	HeatmapComputeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "optionpulse_heatmap_compute_duration_seconds",
			Help:    "Duration of full heatmap computations (cache misses)",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
	)

	HeatmapCells = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "optionpulse_heatmap_cells",
			Help:    "Surviving cell count per computed heatmap",
			Buckets: []float64{0, 10, 50, 100, 500, 1000, 5000, 10000},
		},
	)

	// Cache metrics
	CacheOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "optionpulse_cache_operations_total",
			Help: "Cache operations by cache and outcome",
		},
		[]string{"cache", "op"}, // cache: score|result; op: hit|miss|expired|put|error
	)

	CacheSweepDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "optionpulse_cache_sweep_deleted_total",
			Help: "Expired result-cache entries deleted by sweeps",
		},
	)

	// Provider metrics
	ProviderRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "optionpulse_provider_requests_total",
			Help: "Sentiment provider invocations",
		},
		[]string{"status"}, // status: success|degraded|error
	)

	ProviderDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "optionpulse_provider_duration_seconds",
			Help:    "Sentiment provider call duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)

	// Worker metrics
	WorkerExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "optionpulse_worker_executions_total",
			Help: "Total number of worker executions",
		},
		[]string{"worker", "status"}, // status: success|error
	)
)

func init() {
	prometheus.MustRegister(
		HeatmapRequests,
		HeatmapComputeDuration,
		HeatmapCells,
		CacheOps,
		CacheSweepDeleted,
		ProviderRequests,
		ProviderDuration,
		WorkerExecutions,
	)
}

// Handler returns the HTTP handler for the /metrics endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}
