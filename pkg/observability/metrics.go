package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Authorization metrics
	PermissionChecksTotal      *prometheus.CounterVec
	UnknownRoleTokensTotal     *prometheus.CounterVec
	LegacyRoleUsageTotal       *prometheus.CounterVec
	PermissionCacheHitsTotal   prometheus.Counter
	PermissionCacheMissesTotal prometheus.Counter

	// Storage metrics
	StorageOperationsTotal   *prometheus.CounterVec
	StorageOperationDuration *prometheus.HistogramVec
	StorageErrorsTotal       *prometheus.CounterVec

	// Identity metrics
	TokenVerificationsTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portal_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		PermissionChecksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_permission_checks_total",
				Help: "Permission check decisions by function, action and result",
			},
			[]string{"function", "action", "result"},
		),
		UnknownRoleTokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_unknown_role_tokens_total",
				Help: "Role tokens skipped because they are absent from the catalog",
			},
			[]string{"role"},
		),
		LegacyRoleUsageTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_legacy_role_usage_total",
				Help: "Resolutions involving legacy wildcard-suffixed role names",
			},
			[]string{"role"},
		),
		PermissionCacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "portal_permission_cache_hits_total",
				Help: "Permission cache hits",
			},
		),
		PermissionCacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "portal_permission_cache_misses_total",
				Help: "Permission cache misses",
			},
		),
		StorageOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_storage_operations_total",
				Help: "Storage operations by collection and operation",
			},
			[]string{"collection", "operation"},
		),
		StorageOperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portal_storage_operation_duration_seconds",
				Help:    "Storage operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"collection", "operation"},
		),
		StorageErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_storage_errors_total",
				Help: "Storage operation errors by collection and operation",
			},
			[]string{"collection", "operation"},
		),
		TokenVerificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_token_verifications_total",
				Help: "ID token verifications by result",
			},
			[]string{"result"},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.PermissionChecksTotal,
		m.UnknownRoleTokensTotal,
		m.LegacyRoleUsageTotal,
		m.PermissionCacheHitsTotal,
		m.PermissionCacheMissesTotal,
		m.StorageOperationsTotal,
		m.StorageOperationDuration,
		m.StorageErrorsTotal,
		m.TokenVerificationsTotal,
	)

	return m
}

// Handler returns the /metrics HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObservePermissionCheck records a permission check decision.
func (m *Metrics) ObservePermissionCheck(function, action string, allowed bool) {
	result := "denied"
	if allowed {
		result = "allowed"
	}
	m.PermissionChecksTotal.WithLabelValues(function, action, result).Inc()
}

// ObserveStorageOperation records one storage call with its duration.
func (m *Metrics) ObserveStorageOperation(collection, operation string, start time.Time, err error) {
	m.StorageOperationsTotal.WithLabelValues(collection, operation).Inc()
	m.StorageOperationDuration.WithLabelValues(collection, operation).Observe(time.Since(start).Seconds())
	if err != nil {
		m.StorageErrorsTotal.WithLabelValues(collection, operation).Inc()
	}
}

// HTTPMiddleware records request counts and latencies per route.
func (m *Metrics) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.HTTPRequestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(rec.status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
