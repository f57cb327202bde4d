// Package metrics provides Prometheus metrics for the NoLimit analytics service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Export pipeline
	exportsRequested    prometheus.Counter
	exportsDeduplicated prometheus.Counter
	exportsCompleted    prometheus.Counter
	exportsFailed       *prometheus.CounterVec
	composeLatency      prometheus.Histogram
	rasterizeLatency    *prometheus.HistogramVec
	encodeLatency       prometheus.Histogram
	reportPages         prometheus.Histogram
	reportBytes         prometheus.Histogram
	exportsStored       prometheus.Gauge

	// Roster and analytics
	rosterAthletes     prometheus.Gauge
	rosterRejected     prometheus.Counter
	dataQualityWarns   *prometheus.CounterVec
	aggregationLatency prometheus.Histogram
	seriesCacheHits    prometheus.Counter
	seriesCacheMisses  prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Queue
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueued          prometheus.Counter
	queueDequeued          prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Workers
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerIdleCount         prometheus.Gauge
	workerMessagesPerSecond prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "nolimit",
		subsystem:        "analytics",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	b := m.histogramBuckets

	m.exportsRequested = m.counter("exports_requested_total", "Report exports accepted for processing")
	m.exportsDeduplicated = m.counter("exports_deduplicated_total", "Report exports answered from an earlier request with the same idempotency key")
	m.exportsCompleted = m.counter("exports_completed_total", "Report exports that produced a downloadable file")
	m.exportsFailed = m.counterVec("exports_failed_total", "Report exports that failed, by reason", "reason")
	m.composeLatency = m.histogram("report_compose_latency_milliseconds", "Report layout latency in milliseconds", b)
	m.rasterizeLatency = m.histogramVec("chart_rasterize_latency_milliseconds", "Chart rasterization latency in milliseconds", "renderer")
	m.encodeLatency = m.histogram("report_encode_latency_milliseconds", "PDF encoding latency in milliseconds", b)
	m.reportPages = m.histogram("report_pages", "Pages per composed report", []float64{1, 2, 3, 4, 5, 6, 8, 10})
	m.reportBytes = m.histogram("report_bytes", "Encoded report size in bytes", prometheus.ExponentialBuckets(16<<10, 2, 10))
	m.exportsStored = m.gauge("exports_stored", "Export jobs currently tracked")

	m.rosterAthletes = m.gauge("roster_athletes", "Athletes in the active roster")
	m.rosterRejected = m.counter("roster_rejected_total", "Roster records rejected during loading")
	m.dataQualityWarns = m.counterVec("data_quality_warnings_total", "Data-quality warnings raised during aggregation, by kind", "kind")
	m.aggregationLatency = m.histogram("aggregation_latency_milliseconds", "Overview aggregation latency in milliseconds", []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50})
	m.seriesCacheHits = m.counter("series_cache_hits_total", "Historical series served from cache")
	m.seriesCacheMisses = m.counter("series_cache_misses_total", "Historical series generated on demand")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.queueSize = m.gauge("queue_size", "Current size of the export queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum export queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Export queue utilization ratio (size / capacity)")
	m.queueEnqueued = m.counter("queue_enqueue_total", "Jobs enqueued")
	m.queueDequeued = m.counter("queue_dequeue_total", "Jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Rejected enqueue attempts")
	m.queueProcessingLatency = m.histogram("queue_processing_latency_milliseconds", "Enqueue latency in milliseconds", b)

	m.workerCount = m.gauge("worker_count", "Configured export workers")
	m.workerActiveCount = m.gauge("worker_active_count", "Workers currently processing a job")
	m.workerIdleCount = m.gauge("worker_idle_count", "Workers waiting for a job")
	m.workerMessagesPerSecond = m.gauge("worker_jobs_per_second", "Jobs processed per second since start")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Job processing latency in milliseconds", b)
	m.workerErrors = m.counter("worker_errors_total", "Jobs that ended in an error")

	m.errorsByComponent = m.counterVec("errors_by_component_total", "Errors by component", "component", "error_type")
	m.errorsByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap memory in use in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// Export pipeline.

func RecordExportRequested()    { globalManager.exportsRequested.Inc() }
func RecordExportDeduplicated() { globalManager.exportsDeduplicated.Inc() }
func RecordExportCompleted()    { globalManager.exportsCompleted.Inc() }

// RecordExportFailed counts a failed export; reason is a short stable label.
func RecordExportFailed(reason string) {
	globalManager.exportsFailed.WithLabelValues(reason).Inc()
}

func RecordComposeLatency(ms float64) { globalManager.composeLatency.Observe(ms) }

// RecordRasterizeLatency records a chart rasterization by renderer name.
func RecordRasterizeLatency(renderer string, ms float64) {
	globalManager.rasterizeLatency.WithLabelValues(renderer).Observe(ms)
}

func RecordEncodeLatency(ms float64) { globalManager.encodeLatency.Observe(ms) }
func RecordReportPages(n int)        { globalManager.reportPages.Observe(float64(n)) }
func RecordReportBytes(n int)        { globalManager.reportBytes.Observe(float64(n)) }
func UpdateExportsStored(n int)      { globalManager.exportsStored.Set(float64(n)) }

// Roster and analytics.

func UpdateRosterAthletes(n int)          { globalManager.rosterAthletes.Set(float64(n)) }
func RecordRosterRejected(n int)          { globalManager.rosterRejected.Add(float64(n)) }
func RecordAggregationLatency(ms float64) { globalManager.aggregationLatency.Observe(ms) }

// RecordDataQualityWarning counts a data-quality warning by kind.
func RecordDataQualityWarning(kind string) {
	globalManager.dataQualityWarns.WithLabelValues(kind).Inc()
}

func RecordSeriesCacheHit()  { globalManager.seriesCacheHits.Inc() }
func RecordSeriesCacheMiss() { globalManager.seriesCacheMisses.Inc() }

// HTTP.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Queue.

func UpdateQueueSize(size int)                { globalManager.queueSize.Set(float64(size)) }
func UpdateQueueCapacity(capacity int)        { globalManager.queueCapacity.Set(float64(capacity)) }
func UpdateQueueUtilization(ratio float64)    { globalManager.queueUtilization.Set(ratio) }
func RecordQueueEnqueue()                     { globalManager.queueEnqueued.Inc() }
func RecordQueueDequeue()                     { globalManager.queueDequeued.Inc() }
func RecordQueueEnqueueError()                { globalManager.queueEnqueueErrors.Inc() }
func RecordQueueProcessingLatency(ms float64) { globalManager.queueProcessingLatency.Observe(ms) }

// Workers.

func UpdateWorkerCount(n int)                  { globalManager.workerCount.Set(float64(n)) }
func UpdateWorkerActiveCount(n int)            { globalManager.workerActiveCount.Set(float64(n)) }
func UpdateWorkerIdleCount(n int)              { globalManager.workerIdleCount.Set(float64(n)) }
func UpdateWorkerMessagesPerSecond(r float64)  { globalManager.workerMessagesPerSecond.Set(r) }
func RecordWorkerProcessingLatency(ms float64) { globalManager.workerProcessingLatency.Observe(ms) }
func RecordWorkerError()                       { globalManager.workerErrors.Inc() }

// Errors.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System.

func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }
func UpdateSystemGoroutineCount(n int)     { globalManager.systemGoroutineCount.Set(float64(n)) }
func RecordSystemGCPauseTime(ms float64)   { globalManager.systemGCPauseTime.Observe(ms) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
