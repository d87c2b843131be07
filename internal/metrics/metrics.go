// Package metrics exposes Prometheus collectors for the HTTP API and the
// points ledger.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "referearn",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "referearn",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "referearn",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	ledgerOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "referearn",
			Subsystem: "ledger",
			Name:      "operations_total",
			Help:      "Ledger operations by outcome code.",
		},
		[]string{"operation", "outcome"},
	)

	pointsMoved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "referearn",
			Subsystem: "ledger",
			Name:      "points_total",
			Help:      "Points credited or debited, by ledger entry type.",
		},
		[]string{"entry_type"},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "referearn",
			Subsystem: "notify",
			Name:      "messages_total",
			Help:      "Outbound chat notifications by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		ledgerOperations,
		pointsMoved,
		notifications,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordLedgerOperation counts one ledger operation. outcome is "ok" or the
// stable error code returned to the caller.
func RecordLedgerOperation(operation, outcome string) {
	if outcome == "" {
		outcome = "ok"
	}
	ledgerOperations.WithLabelValues(operation, outcome).Inc()
}

// RecordPoints adds amount to the points counter for entryType.
func RecordPoints(entryType string, amount int64) {
	if amount <= 0 {
		return
	}
	pointsMoved.WithLabelValues(entryType).Add(float64(amount))
}

// RecordNotification counts a notification outcome: "enqueued",
// "enqueue_failed", "sent", "retry" or "dropped".
func RecordNotification(outcome string) {
	notifications.WithLabelValues(outcome).Inc()
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// knownPaths are the routes reported under their own label.
var knownPaths = map[string]bool{
	"/":                     true,
	"/api/register":         true,
	"/api/refer":            true,
	"/api/task/complete":    true,
	"/api/tasks":            true,
	"/api/withdraw":         true,
	"/api/settings":         true,
	"/api/admin/settings":   true,
	"/api/admin/task":       true,
	"/telegram/webhook":     true,
	"/healthz":              true,
	"/metrics":              true,
	"/api/user/:id":         true,
	"/api/user/:id/history": true,
}

// canonicalPath collapses per-user paths and maps anything unrouted to
// "other" so the label set stays bounded.
func canonicalPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	path := "/" + trimmed
	parts := strings.Split(trimmed, "/")
	if len(parts) >= 3 && parts[0] == "api" && parts[1] == "user" {
		path = "/" + strings.Join(append([]string{"api", "user", ":id"}, parts[3:]...), "/")
	}
	if knownPaths[path] {
		return path
	}
	return "other"
}
