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
			Namespace: "unihaven",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "unihaven",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "unihaven",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	reservationEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "unihaven",
			Subsystem: "reservations",
			Name:      "events_total",
			Help:      "Reservation lifecycle events by outcome.",
		},
		[]string{"event", "success"},
	)

	geocodeLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "unihaven",
			Subsystem: "geocode",
			Name:      "lookups_total",
			Help:      "Address lookup service calls by outcome.",
		},
		[]string{"success"},
	)

	geocodeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "unihaven",
			Subsystem: "geocode",
			Name:      "lookup_duration_seconds",
			Help:      "Duration of address lookup calls.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		reservationEvents,
		geocodeLookups,
		geocodeDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
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

// RecordReservationEvent counts a reservation lifecycle event.
func RecordReservationEvent(event string, success bool) {
	reservationEvents.WithLabelValues(event, strconv.FormatBool(success)).Inc()
}

// RecordGeocodeLookup counts an address lookup call.
func RecordGeocodeLookup(duration time.Duration, success bool) {
	if duration <= 0 {
		duration = time.Millisecond
	}
	geocodeLookups.WithLabelValues(strconv.FormatBool(success)).Inc()
	geocodeDuration.Observe(duration.Seconds())
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// canonicalPath collapses resource identifiers so metric label cardinality
// stays bounded.
func canonicalPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	if parts[0] != "api" {
		return "/" + parts[0]
	}
	if len(parts) == 1 {
		return "/api"
	}
	resource := parts[1]
	if len(parts) == 2 {
		return "/api/" + resource
	}
	if collectionActions[parts[2]] {
		return "/api/" + resource + "/" + parts[2]
	}
	// /api/<resource>/{id}[/<action>] -> /api/<resource>/:id[/<action>]
	out := "/api/" + resource + "/:id"
	if len(parts) > 3 {
		out += "/" + parts[3]
	}
	return out
}

// collectionActions are path segments that act on a collection rather than
// naming a resource id.
var collectionActions = map[string]bool{
	"search":        true,
	"location-data": true,
	"unavailable":   true,
	"pending":       true,
}
