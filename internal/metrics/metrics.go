// Package metrics exposes Prometheus collectors for the task engine and HTTP layer.
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
	taskTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_transitions_total",
			Help: "Task engine transitions labeled by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)
	verificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_verifications_total",
			Help: "External verification checks labeled by platform and result",
		},
		[]string{"platform", "result"},
	)
	verificationDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "task_verification_duration_seconds",
			Help:    "Duration of external verification checks in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"platform"},
	)
	pointsAwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "points_awarded_total",
			Help: "Points credited to users labeled by source",
		},
		[]string{"source"},
	)
	notificationFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notification_failures_total",
			Help: "Notifications that could not be stored",
		},
	)
	broadcastDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcast_deliveries_total",
			Help: "Bot broadcast deliveries labeled by status",
		},
		[]string{"status"},
	)
	jobRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "job_runs_total",
			Help: "Scheduled job runs labeled by job and status",
		},
		[]string{"job", "status"},
	)
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests labeled by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// RecordTransition counts one engine operation, e.g. ("mark", "pending").
func RecordTransition(operation, outcome string) {
	taskTransitionsTotal.WithLabelValues(operation, outcome).Inc()
}

func RecordVerification(platform string, verified bool, duration time.Duration) {
	result := "failed"
	if verified {
		result = "verified"
	}
	verificationsTotal.WithLabelValues(platform, result).Inc()
	verificationDurationSeconds.WithLabelValues(platform).Observe(duration.Seconds())
}

func RecordPoints(source string, points int64) {
	if points <= 0 {
		return
	}
	pointsAwardedTotal.WithLabelValues(source).Add(float64(points))
}

func RecordNotificationFailure() {
	notificationFailuresTotal.Inc()
}

func RecordDelivery(ok bool) {
	status := "sent"
	if !ok {
		status = "failed"
	}
	broadcastDeliveriesTotal.WithLabelValues(status).Inc()
}

func RecordJob(job string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	jobRunsTotal.WithLabelValues(job, status).Inc()
}

func ObserveHTTP(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler serves the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
