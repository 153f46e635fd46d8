// Package metrics provides Prometheus metrics for the date night planner service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the planner service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Search pipeline
	searches         *prometheus.CounterVec
	searchDuration   *prometheus.HistogramVec
	searchResults    *prometheus.HistogramVec
	mergedDuplicates prometheus.Counter
	qualityDrops     *prometheus.CounterVec
	exclusions       *prometheus.CounterVec
	plansBuilt       *prometheus.CounterVec

	// Providers
	providerResults  *prometheus.CounterVec
	providerFailures *prometheus.CounterVec
	providerLatency  *prometheus.HistogramVec
	enabledProviders prometheus.Gauge

	// Provider cache
	cacheRequests *prometheus.CounterVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Configure rebuilds the global manager with opts on a fresh registry. It is
// meant to run once at startup, before any handler captures GetRegistry.
func Configure(opts ...Option) {
	registry := prometheus.NewRegistry()
	all := append(append([]Option{}, opts...), WithPrometheusRegistry(registry))
	customRegistry = registry
	globalManager = NewManager(all...)
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "datenight",
		subsystem:        "planner",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.searches = auto.NewCounterVec(m.counterOpts("searches_total",
		"Total number of searches served by kind"), []string{"kind"})
	m.searchDuration = auto.NewHistogramVec(m.histogramOpts("search_duration_milliseconds",
		"End-to-end search latency in milliseconds", m.histogramBuckets), []string{"kind"})
	m.searchResults = auto.NewHistogramVec(m.histogramOpts("search_results",
		"Number of items returned per search", []float64{0, 1, 5, 10, 15, 20, 40, 60}), []string{"kind"})
	m.mergedDuplicates = auto.NewCounter(m.counterOpts("merged_duplicates_total",
		"Total number of cross-provider duplicate records folded by the merger"))
	m.qualityDrops = auto.NewCounterVec(m.counterOpts("quality_drops_total",
		"Venues dropped by the quality filter by reason"), []string{"reason"})
	m.exclusions = auto.NewCounterVec(m.counterOpts("exclusions_total",
		"Venues excluded before scoring by reason"), []string{"reason"})
	m.plansBuilt = auto.NewCounterVec(m.counterOpts("plans_built_total",
		"Plans built by mode"), []string{"mode"})

	m.providerResults = auto.NewCounterVec(m.counterOpts("provider_results_total",
		"Venues returned by each provider"), []string{"provider"})
	m.providerFailures = auto.NewCounterVec(m.counterOpts("provider_failures_total",
		"Provider calls that failed by reason"), []string{"provider", "reason"})
	m.providerLatency = auto.NewHistogramVec(m.histogramOpts("provider_latency_milliseconds",
		"Provider call latency in milliseconds", m.histogramBuckets), []string{"provider"})
	m.enabledProviders = auto.NewGauge(m.gaugeOpts("enabled_providers",
		"Number of providers with credentials configured"))

	m.cacheRequests = auto.NewCounterVec(m.counterOpts("cache_requests_total",
		"Provider cache lookups by result (hit, miss, error, bypass)"), []string{"result"})

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"Total number of HTTP requests by endpoint and method"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", m.histogramBuckets), []string{"endpoint", "method", "status_code"})
	m.errorRateByEndpoint = auto.NewCounterVec(m.counterOpts("errors_by_endpoint_total",
		"Total number of errors by API endpoint"), []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes",
		"Current memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count",
		"Current number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_time_milliseconds",
		"Average GC pause time in milliseconds", []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50}))
}

// Search pipeline.

func RecordSearch(kind string, durationMs float64, results int) {
	if !globalManager.enabled {
		return
	}
	globalManager.searches.WithLabelValues(kind).Inc()
	globalManager.searchDuration.WithLabelValues(kind).Observe(durationMs)
	globalManager.searchResults.WithLabelValues(kind).Observe(float64(results))
}

func RecordMergedDuplicates(n int) {
	if !globalManager.enabled || n <= 0 {
		return
	}
	globalManager.mergedDuplicates.Add(float64(n))
}

func RecordQualityDrops(reason string, n int) {
	if !globalManager.enabled || n <= 0 {
		return
	}
	globalManager.qualityDrops.WithLabelValues(reason).Add(float64(n))
}

func RecordExclusions(reason string, n int) {
	if !globalManager.enabled || n <= 0 {
		return
	}
	globalManager.exclusions.WithLabelValues(reason).Add(float64(n))
}

func RecordPlanBuilt(mode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.plansBuilt.WithLabelValues(mode).Inc()
}

// Providers.

func RecordProviderResults(provider string, n int, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.providerResults.WithLabelValues(provider).Add(float64(n))
	globalManager.providerLatency.WithLabelValues(provider).Observe(latencyMs)
}

func RecordProviderFailure(provider, reason string) {
	if !globalManager.enabled {
		return
	}
	globalManager.providerFailures.WithLabelValues(provider, reason).Inc()
}

func UpdateEnabledProviders(n int) {
	globalManager.enabledProviders.Set(float64(n))
}

// Cache.

func RecordCacheRequest(result string) {
	if !globalManager.enabled {
		return
	}
	globalManager.cacheRequests.WithLabelValues(result).Inc()
}

// HTTP.

func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System.

func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom registry the global metrics are registered on.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// SetEnabled toggles recording on the global manager.
func SetEnabled(enabled bool) {
	globalManager.enabled = enabled
}
