// Package metrics exposes Prometheus collectors for the intake service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the service-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "intake",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "intake",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "intake",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	applicationsSubmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "intake",
			Subsystem: "applications",
			Name:      "submitted_total",
			Help:      "Total number of applications submitted.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		applicationsSubmitted,
		collectors.NewGoCollector(),
	)
}

// IncInFlight marks a request as started.
func IncInFlight() { httpInFlight.Inc() }

// DecInFlight marks a request as finished.
func DecInFlight() { httpInFlight.Dec() }

// ObserveRequest records one completed HTTP request.
func ObserveRequest(method, path, status string, duration time.Duration) {
	httpRequests.WithLabelValues(method, path, status).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordSubmission counts a successful application submission.
func RecordSubmission() { applicationsSubmitted.Inc() }

// Handler serves the registry over HTTP.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
