package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coursehub_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "coursehub_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	identityOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coursehub_identity_operations_total",
		Help: "Count of login, register and logout attempts by result",
	}, []string{"operation", "result"})

	catalogMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coursehub_catalog_mutations_total",
		Help: "Count of catalog mutations by operation and result",
	}, []string{"operation", "result"})

	storageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "coursehub_storage_operation_duration_seconds",
		Help:    "Duration of key-value storage operations",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"backend", "operation", "result"})

	storageBreakerTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coursehub_storage_breaker_transitions_total",
		Help: "Count of storage circuit breaker state changes",
	}, []string{"to"})

	catalogCourses = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "coursehub_catalog_courses",
		Help: "Number of courses in the catalog",
	})

	catalogVideos = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "coursehub_catalog_videos",
		Help: "Number of videos across all courses",
	})

	catalogEnrollments = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "coursehub_catalog_enrollments",
		Help: "Number of (course, student) enrollments",
	})

	registeredUsers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "coursehub_registered_users",
		Help: "Number of registered users",
	})

	eventSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "coursehub_event_subscribers",
		Help: "Number of connected change feed subscribers",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveIdentity counts an identity operation with a result label
// (ok, rejected, error).
func ObserveIdentity(operation, result string) {
	identityOperations.WithLabelValues(operation, result).Inc()
}

// ObserveCatalogMutation counts a catalog mutation with a result label
// (ok, noop, error).
func ObserveCatalogMutation(operation, result string) {
	catalogMutations.WithLabelValues(operation, result).Inc()
}

// ObserveStorage records the duration of a storage call
func ObserveStorage(backend, operation, result string, duration time.Duration) {
	storageDuration.WithLabelValues(backend, operation, result).Observe(duration.Seconds())
}

// ObserveBreakerTransition counts circuit breaker state changes
func ObserveBreakerTransition(to string) {
	storageBreakerTransitions.WithLabelValues(to).Inc()
}

// SetCatalogSize sets the catalog gauges.
func SetCatalogSize(courses, videos, enrollments int) {
	catalogCourses.Set(float64(max(courses, 0)))
	catalogVideos.Set(float64(max(videos, 0)))
	catalogEnrollments.Set(float64(max(enrollments, 0)))
}

// SetRegisteredUsers sets the registered-user gauge.
func SetRegisteredUsers(n int) {
	registeredUsers.Set(float64(max(n, 0)))
}

// IncrementSubscribers increments the change feed subscriber gauge.
func IncrementSubscribers() {
	eventSubscribers.Inc()
}

// DecrementSubscribers decrements the change feed subscriber gauge.
func DecrementSubscribers() {
	eventSubscribers.Dec()
}
