// Package metrics provides Prometheus metrics for the DKR ranking optimizer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the optimizer.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Source Metrics - Fetching and caching against dkr64.com
	pagesFetched  *prometheus.CounterVec
	cacheHits     prometheus.Counter
	cacheMisses   prometheus.Counter
	fetchNotFound prometheus.Counter
	fetchErrors   prometheus.Counter
	parseErrors   *prometheus.CounterVec

	// Analysis Metrics - Opportunity and plan computation
	leaderboardsInScope prometheus.Gauge
	analysesComputed    prometheus.Counter
	analysisDuration    prometheus.Histogram
	planDuration        *prometheus.HistogramVec
	plansInfeasible     *prometheus.CounterVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Operational Health Metrics
	snapshotCount prometheus.Gauge
	fetchWorkers  prometheus.Gauge

	// Error Metrics
	errorsByComponent *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "dkr",
		subsystem:        "optimizer",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Source Metrics - Every page pulled from dkr64.com, by kind
	m.pagesFetched = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "pages_fetched_total",
			Help:      "Total number of pages fetched from the remote source, by page kind",
		},
		[]string{"kind"},
	)

	m.cacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_hits_total",
		Help:      "Total number of page fetches served from the file cache",
	})

	m.cacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_misses_total",
		Help:      "Total number of page fetches that went to the network",
	})

	m.fetchNotFound = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_not_found_total",
		Help:      "Total number of pages cached or returned as non-existent (404/500)",
	})

	m.fetchErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_errors_total",
		Help:      "Total number of failed page fetches",
	})

	m.parseErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "parse_errors_total",
			Help:      "Total number of pages that failed to parse, by page kind",
		},
		[]string{"kind"},
	)

	// Analysis Metrics
	m.leaderboardsInScope = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboards_in_scope",
		Help:      "Track variants with an existing leaderboard in the last analysis",
	})

	m.analysesComputed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "analyses_computed_total",
		Help:      "Total number of full player analyses computed",
	})

	m.analysisDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "analysis_duration_milliseconds",
		Help:      "End-to-end analysis duration in milliseconds, fetch included",
		Buckets:   m.histogramBuckets,
	})

	m.planDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "plan_duration_milliseconds",
			Help:      "Overtake plan computation duration in milliseconds, by mode",
			Buckets:   m.histogramBuckets,
		},
		[]string{"mode"},
	)

	m.plansInfeasible = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "plans_infeasible_total",
			Help:      "Total number of overtake plans that came back infeasible, by mode",
		},
		[]string{"mode"},
	)

	// HTTP Performance Metrics
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	// Operational Health Metrics
	m.snapshotCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_count",
		Help:      "Analysis snapshots currently held in the in-memory store",
	})

	m.fetchWorkers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_workers",
		Help:      "Number of concurrent leaderboard fetch workers",
	})

	// Error Metrics
	m.errorsByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component and type",
		},
		[]string{"component", "error_type"},
	)

	// System Performance Metrics
	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "Current allocated memory in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Current number of goroutines",
	})
}

// Source Metrics Functions.

// RecordPageFetch records a page fetched from the remote source.
func RecordPageFetch(kind string) {
	globalManager.pagesFetched.WithLabelValues(kind).Inc()
}

// RecordCacheHit increments the cache hit counter.
func RecordCacheHit() {
	globalManager.cacheHits.Inc()
}

// RecordCacheMiss increments the cache miss counter.
func RecordCacheMiss() {
	globalManager.cacheMisses.Inc()
}

// RecordFetchNotFound increments the not-found counter.
func RecordFetchNotFound() {
	globalManager.fetchNotFound.Inc()
}

// RecordFetchError increments the fetch error counter.
func RecordFetchError() {
	globalManager.fetchErrors.Inc()
}

// RecordParseError records a page that failed to parse.
func RecordParseError(kind string) {
	globalManager.parseErrors.WithLabelValues(kind).Inc()
}

// Analysis Metrics Functions.

// UpdateLeaderboardsInScope sets the number of leaderboards in scope.
func UpdateLeaderboardsInScope(count int) {
	globalManager.leaderboardsInScope.Set(float64(count))
}

// RecordAnalysis increments the computed analyses counter.
func RecordAnalysis() {
	globalManager.analysesComputed.Inc()
}

// RecordAnalysisDuration records end-to-end analysis duration.
func RecordAnalysisDuration(durationMs float64) {
	globalManager.analysisDuration.Observe(durationMs)
}

// RecordPlanDuration records plan computation duration for a mode.
func RecordPlanDuration(mode string, durationMs float64) {
	globalManager.planDuration.WithLabelValues(mode).Observe(durationMs)
}

// RecordPlanInfeasible increments the infeasible plan counter for a mode.
func RecordPlanInfeasible(mode string) {
	globalManager.plansInfeasible.WithLabelValues(mode).Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Operational Health Functions.

// UpdateSnapshotCount sets the number of stored analysis snapshots.
func UpdateSnapshotCount(count int) {
	globalManager.snapshotCount.Set(float64(count))
}

// UpdateFetchWorkers sets the number of fetch workers.
func UpdateFetchWorkers(count int) {
	globalManager.fetchWorkers.Set(float64(count))
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// System Performance Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
