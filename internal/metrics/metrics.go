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
	// Registry holds the gateway's collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "altar_gateway",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "altar_gateway",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "altar_gateway",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	upstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "altar_gateway",
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Requests sent to the backend, by outcome.",
		},
		[]string{"upstream", "method", "status"},
	)

	upstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "altar_gateway",
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Duration of backend requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"upstream", "method"},
	)

	checkouts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "altar_gateway",
			Subsystem: "checkout",
			Name:      "total",
			Help:      "Checkout attempts, by outcome.",
		},
		[]string{"outcome"},
	)

	checkoutSideEffectFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "altar_gateway",
			Subsystem: "checkout",
			Name:      "side_effect_failures_total",
			Help:      "Best-effort checkout steps that failed.",
		},
		[]string{"step"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		upstreamRequests,
		upstreamDuration,
		checkouts,
		checkoutSideEffectFailures,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler records request count, latency and in-flight gauge.
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

		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	})
}

// RecordUpstream records one backend round trip. status is 0 on transport errors.
func RecordUpstream(upstream, method string, status int, duration time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	upstreamRequests.WithLabelValues(upstream, method, label).Inc()
	upstreamDuration.WithLabelValues(upstream, method).Observe(duration.Seconds())
}

// RecordCheckout counts a finished checkout: "completed", "completed_with_errors",
// "rejected", "failed" or "replayed".
func RecordCheckout(outcome string) {
	checkouts.WithLabelValues(outcome).Inc()
}

func RecordSideEffectFailure(step string) {
	checkoutSideEffectFailures.WithLabelValues(step).Inc()
}

// maxPathSegments bounds how deep a path label goes.
const maxPathSegments = 5

// canonicalPath collapses identifiers so label cardinality stays bounded. Paths
// outside the known top-level routes all share one label.
func canonicalPath(path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	if !knownRoot(parts[0]) {
		return "/:other"
	}
	if len(parts) > maxPathSegments {
		parts = append(parts[:maxPathSegments], ":rest")
	}
	for i, p := range parts {
		if i == 0 || p == ":rest" {
			continue
		}
		if looksLikeID(p) {
			parts[i] = ":id"
		}
	}
	return "/" + strings.Join(parts, "/")
}

func knownRoot(segment string) bool {
	switch segment {
	case "api", "health", "login", "register",
		"welcome", "dashboard", "volunteering", "inventory", "pos", "cart":
		return true
	}
	return false
}

func looksLikeID(segment string) bool {
	switch segment {
	case "api", "auth", "me", "login", "logout", "register", "products", "inventory",
		"inventorylogs", "cart", "items", "transactions", "checkout", "health", "upstreams":
		return false
	}
	return true
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
