// Package metrics provides Prometheus metrics for the vcdash service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// defaultPivotBuckets covers pivot runs from 10µs to 50ms.
var defaultPivotBuckets = []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50} //nolint:gochecknoglobals // read-only default

// Manager manages all Prometheus metrics for the vcdash service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	pivotBuckets     []float64
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Upstream usage API
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter

	// Weekly pivot
	pivotRuns       prometheus.Counter
	pivotFailures   prometheus.Counter
	skippedRecords  prometheus.Counter
	droppedRecords  prometheus.Counter
	colorFallbacks  prometheus.Counter
	pivotRows       prometheus.Gauge
	pivotChannels   prometheus.Gauge
	rollingAverage  prometheus.Gauge
	pivotDuration   prometheus.Histogram
	refreshLastUnix prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "vcdash",
		subsystem:        "usage",
		histogramBuckets: prometheus.DefBuckets,
		pivotBuckets:     defaultPivotBuckets,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.upstreamRequests = auto.NewCounterVec(
		m.counterOpts("upstream_requests_total", "Requests sent to the usage API by endpoint and outcome"),
		[]string{"endpoint", "outcome"},
	)
	m.upstreamLatency = auto.NewHistogramVec(
		m.histogramOpts("upstream_latency_milliseconds", "Usage API request latency in milliseconds", m.histogramBuckets),
		[]string{"endpoint"},
	)
	m.cacheHits = auto.NewCounter(m.counterOpts("cache_hits_total", "Usage API responses served from cache"))
	m.cacheMisses = auto.NewCounter(m.counterOpts("cache_misses_total", "Usage API responses not found in cache"))

	m.pivotRuns = auto.NewCounter(m.counterOpts("pivot_runs_total", "Weekly pivot engine invocations"))
	m.pivotFailures = auto.NewCounter(m.counterOpts("pivot_failures_total", "Weekly pivot runs that failed"))
	m.skippedRecords = auto.NewCounter(m.counterOpts("skipped_records_total", "Malformed usage records skipped by the pivot"))
	m.droppedRecords = auto.NewCounter(m.counterOpts("dropped_records_total", "Out-of-window usage records discarded by the pivot"))
	m.colorFallbacks = auto.NewCounter(m.counterOpts("color_fallbacks_total", "Channels resolved to the fallback color"))
	m.pivotRows = auto.NewGauge(m.gaugeOpts("pivot_rows", "Rows in the latest weekly pivot"))
	m.pivotChannels = auto.NewGauge(m.gaugeOpts("pivot_channels", "Distinct channels in the latest weekly pivot"))
	m.rollingAverage = auto.NewGauge(m.gaugeOpts("rolling_average_hours", "Latest seven-day rolling average of daily usage in hours"))
	m.pivotDuration = auto.NewHistogram(
		m.histogramOpts("pivot_duration_milliseconds", "Weekly pivot computation time in milliseconds", m.pivotBuckets),
	)
	m.refreshLastUnix = auto.NewGauge(m.gaugeOpts("refresh_last_unix", "Unix time of the last successful background refresh"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// RecordUpstreamRequest counts a usage API request; outcome is ok, cached or an error kind.
func RecordUpstreamRequest(endpoint, outcome string) {
	globalManager.upstreamRequests.WithLabelValues(endpoint, outcome).Inc()
}

// RecordUpstreamLatency records usage API latency in milliseconds.
func RecordUpstreamLatency(endpoint string, latencyMs float64) {
	globalManager.upstreamLatency.WithLabelValues(endpoint).Observe(latencyMs)
}

// RecordCacheHit increments the cache hit counter.
func RecordCacheHit() {
	globalManager.cacheHits.Inc()
}

// RecordCacheMiss increments the cache miss counter.
func RecordCacheMiss() {
	globalManager.cacheMisses.Inc()
}

// PivotResult summarises one engine run for metrics.
type PivotResult struct {
	Rows       int
	Channels   int
	Skipped    int
	Dropped    int
	Fallbacks  int
	Average    float64
	DurationMs float64
}

// RecordPivot records a successful weekly pivot run.
func RecordPivot(r PivotResult) {
	globalManager.pivotRuns.Inc()
	globalManager.skippedRecords.Add(float64(r.Skipped))
	globalManager.droppedRecords.Add(float64(r.Dropped))
	globalManager.colorFallbacks.Add(float64(r.Fallbacks))
	globalManager.pivotRows.Set(float64(r.Rows))
	globalManager.pivotChannels.Set(float64(r.Channels))
	globalManager.rollingAverage.Set(r.Average)
	globalManager.pivotDuration.Observe(r.DurationMs)
}

// RecordPivotFailure counts a pivot run that returned an error.
func RecordPivotFailure() {
	globalManager.pivotRuns.Inc()
	globalManager.pivotFailures.Inc()
}

// RecordRefresh stores the time of the last successful background refresh.
func RecordRefresh(t time.Time) {
	globalManager.refreshLastUnix.Set(float64(t.Unix()))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
