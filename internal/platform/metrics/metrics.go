// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequests counts requests by route pattern, method and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recall_http_requests_total",
		Help: "Total HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})

	// HTTPDuration tracks request latency by route pattern.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "recall_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
	}, []string{"route"})

	// ReviewsSubmitted counts processed ratings by rating name.
	ReviewsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recall_reviews_submitted_total",
		Help: "Total ratings processed by rating",
	}, []string{"rating"})

	// EngagementEvents counts emitted engagement events by kind.
	EngagementEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recall_engagement_events_total",
		Help: "Total engagement events by kind",
	}, []string{"kind"})

	// BestEffortFailures counts swallowed failures in best-effort steps.
	BestEffortFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recall_best_effort_failures_total",
		Help: "Total failures swallowed by best-effort operations",
	}, []string{"operation"})

	// SessionsSwept counts stale sessions closed by the sweeper.
	SessionsSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recall_sessions_swept_total",
		Help: "Total stale review sessions closed by the sweeper",
	})

	// RateLimited counts requests rejected by the rate limiter.
	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recall_rate_limited_total",
		Help: "Total requests rejected by the per-owner rate limiter",
	})
)

// Handler returns the Prometheus exposition handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRequest records one finished HTTP request.
func ObserveRequest(route, method string, status int, elapsed time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
