// Package metrics defines prometheus metrics to expose
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forge_api_request_duration_seconds",
			Help:    "Total time taken for requests in seconds",
			Buckets: []float64{.5, 1, 2.5, 5, 10, 15, 20, 25, 30, 40, 50, 75, 100, 150, 200},
		},
		[]string{"language", "task_type"},
	)

	RequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forge_api_request_count_total",
			Help: "Total number of generation requests processed",
		},
		[]string{"language", "task_type", "status"},
	)

	UpstreamAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forge_api_upstream_attempts_total",
			Help: "Total upstream call attempts, including retries",
		},
		[]string{"target"},
	)

	UpstreamRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forge_api_upstream_retries_total",
			Help: "Upstream attempts that were retried, by cause",
		},
		[]string{"target", "cause"},
	)

	UpstreamErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forge_api_upstream_errors_total",
			Help: "Upstream calls that failed terminally, by kind",
		},
		[]string{"target", "kind"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forge_api_stage_duration_seconds",
			Help:    "Time spent inside each pipeline stage in seconds",
			Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 15, 20, 30, 45, 60, 90, 120},
		},
		[]string{"stage"},
	)

	RateLimitedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forge_api_rate_limited_total",
			Help: "Requests rejected by the rate limit middleware",
		},
		[]string{"path"},
	)

	ResponseCodes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forge_api_status_code",
			Help: "Status Codes",
		},
		[]string{"path", "status_code"},
	)
)
