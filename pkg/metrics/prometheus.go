// Package metrics provides Prometheus metrics for the deuce scoring service.
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

	// Scoring metrics
	pointsScored     *prometheus.CounterVec
	undos            prometheus.Counter
	gamesCompleted   *prometheus.CounterVec
	setsCompleted    prometheus.Counter
	matchesCreated   *prometheus.CounterVec
	matchesCompleted *prometheus.CounterVec
	activeMatches    prometheus.Gauge
	totalMatches     prometheus.Gauge

	// Event ingestion metrics
	eventsProcessed   prometheus.Counter
	eventsDuplicate   prometheus.Counter
	eventApplyLatency prometheus.Histogram

	// Repository metrics
	repositoryUpdateLatency           prometheus.Histogram
	repositoryQueryLatency            prometheus.Histogram
	repositorySnapshotRebuildDuration prometheus.Histogram
	repositorySnapshotLastUnix        prometheus.Gauge
	repositorySnapshotCount           prometheus.Counter

	// Queue metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker metrics
	workerCount             prometheus.Gauge
	workerMessagesPerSecond prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Live feed metrics
	liveViewers  prometheus.Gauge
	liveDropped  prometheus.Counter
	liveMessages prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps Go runtime collectors out of /healthz

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "deuce",
		subsystem:        "scorer",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      map[string]string{},
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

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	if buckets == nil {
		buckets = m.histogramBuckets
	}
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.pointsScored = auto.NewCounterVec(m.counterOpts("points_scored_total", "Points scored, by winning side"), []string{"side"})
	m.undos = auto.NewCounter(m.counterOpts("undos_total", "Points taken back with undo"))
	m.gamesCompleted = auto.NewCounterVec(m.counterOpts("games_completed_total", "Games completed, by game kind"), []string{"kind"})
	m.setsCompleted = auto.NewCounter(m.counterOpts("sets_completed_total", "Sets completed"))
	m.matchesCreated = auto.NewCounterVec(m.counterOpts("matches_created_total", "Matches created, by match type"), []string{"match_type"})
	m.matchesCompleted = auto.NewCounterVec(m.counterOpts("matches_completed_total", "Matches completed, by match type"), []string{"match_type"})
	m.activeMatches = auto.NewGauge(m.gaugeOpts("active_matches", "Matches still in progress"))
	m.totalMatches = auto.NewGauge(m.gaugeOpts("total_matches", "Matches held in memory"))

	m.eventsProcessed = auto.NewCounter(m.counterOpts("events_processed_total", "Point events applied by workers"))
	m.eventsDuplicate = auto.NewCounter(m.counterOpts("events_duplicate_total", "Point events rejected as duplicates"))
	m.eventApplyLatency = auto.NewHistogram(m.histogramOpts("event_apply_latency_milliseconds", "Time to apply one point event", nil))

	m.repositoryUpdateLatency = auto.NewHistogram(m.histogramOpts("repository_update_latency_milliseconds", "Match store update latency", nil))
	m.repositoryQueryLatency = auto.NewHistogram(m.histogramOpts("repository_query_latency_milliseconds", "Match store query latency", nil))
	m.repositorySnapshotRebuildDuration = auto.NewHistogram(m.histogramOpts("repository_snapshot_rebuild_duration_milliseconds", "Match store snapshot rebuild duration", nil))
	m.repositorySnapshotLastUnix = auto.NewGauge(m.gaugeOpts("repository_snapshot_last_unix", "Unix time of the last published snapshot"))
	m.repositorySnapshotCount = auto.NewCounter(m.counterOpts("repository_snapshots_total", "Snapshots published by the match store"))

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Point events waiting in queues"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Capacity of a single partition queue"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("queue_utilization_ratio", "Queue fill ratio of the most recently touched partition"))
	m.queueEnqueueRate = auto.NewCounter(m.counterOpts("queue_enqueue_total", "Events enqueued"))
	m.queueDequeueRate = auto.NewCounter(m.counterOpts("queue_dequeue_total", "Events dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total", "Rejected enqueue attempts"))

	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Running event workers"))
	m.workerMessagesPerSecond = auto.NewGauge(m.gaugeOpts("worker_messages_per_second", "Events applied per second across the pool"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogramOpts("worker_processing_latency_milliseconds", "Worker processing latency", nil))
	m.workerErrors = auto.NewCounter(m.counterOpts("worker_errors_total", "Events a worker failed to apply"))

	m.liveViewers = auto.NewGauge(m.gaugeOpts("live_viewers", "Connected live scoreboard viewers"))
	m.liveDropped = auto.NewCounter(m.counterOpts("live_dropped_viewers_total", "Viewers disconnected for falling behind"))
	m.liveMessages = auto.NewCounter(m.counterOpts("live_messages_total", "Score updates sent to viewers"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration", nil), []string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = auto.NewCounterVec(m.counterOpts("errors_by_component_total", "Errors by component and type"), []string{"component", "error_type"})
	m.errorRateByType = auto.NewCounterVec(m.counterOpts("errors_by_type_total", "Errors by type and severity"), []string{"error_type", "severity"})
	m.errorRateByEndpoint = auto.NewCounterVec(m.counterOpts("errors_by_endpoint_total", "Errors by endpoint"), []string{"endpoint", "method", "error_type"})
	m.errorLatency = auto.NewHistogramVec(m.histogramOpts("error_latency_milliseconds", "Latency of failed operations", nil), []string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Allocated heap bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_time_milliseconds", "Average GC pause",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// Scoring metrics.

// RecordPointScored counts a point for side ("home" or "away").
func RecordPointScored(side string) {
	globalManager.pointsScored.WithLabelValues(side).Inc()
}

// RecordUndo counts a successful undo.
func RecordUndo() {
	globalManager.undos.Inc()
}

// RecordGameCompleted counts a finished game; tiebreak selects the kind label.
func RecordGameCompleted(tiebreak bool) {
	kind := "regular"
	if tiebreak {
		kind = "tiebreak"
	}
	globalManager.gamesCompleted.WithLabelValues(kind).Inc()
}

// RecordSetCompleted counts a finished set.
func RecordSetCompleted() {
	globalManager.setsCompleted.Inc()
}

// RecordMatchCreated counts a new match of matchType.
func RecordMatchCreated(matchType string) {
	globalManager.matchesCreated.WithLabelValues(matchType).Inc()
}

// RecordMatchCompleted counts a finished match of matchType.
func RecordMatchCompleted(matchType string) {
	globalManager.matchesCompleted.WithLabelValues(matchType).Inc()
}

// UpdateActiveMatches sets the number of matches in progress.
func UpdateActiveMatches(count int) {
	globalManager.activeMatches.Set(float64(count))
}

// UpdateTotalMatches sets the number of stored matches.
func UpdateTotalMatches(count int) {
	globalManager.totalMatches.Set(float64(count))
}

// Event ingestion metrics.

// RecordEventProcessed increments the applied events counter.
func RecordEventProcessed() {
	globalManager.eventsProcessed.Inc()
}

// RecordEventDuplicate increments the duplicate events counter.
func RecordEventDuplicate() {
	globalManager.eventsDuplicate.Inc()
}

// RecordEventApplyLatency records how long one event took to apply.
func RecordEventApplyLatency(latencyMs float64) {
	globalManager.eventApplyLatency.Observe(latencyMs)
}

// Repository metrics.

// RecordRepositoryUpdateLatency records match store update latency.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	globalManager.repositoryUpdateLatency.Observe(latencyMs)
}

// RecordRepositoryQueryLatency records match store query latency.
func RecordRepositoryQueryLatency(latencyMs float64) {
	globalManager.repositoryQueryLatency.Observe(latencyMs)
}

// RecordRepositorySnapshotRebuildDuration records a snapshot rebuild.
func RecordRepositorySnapshotRebuildDuration(ms float64) {
	globalManager.repositorySnapshotRebuildDuration.Observe(ms)
}

// UpdateRepositorySnapshotLastUnix sets the time of the last snapshot.
func UpdateRepositorySnapshotLastUnix(ts float64) {
	globalManager.repositorySnapshotLastUnix.Set(ts)
}

// IncrementRepositorySnapshotCount counts a published snapshot.
func IncrementRepositorySnapshotCount() {
	globalManager.repositorySnapshotCount.Inc()
}

// Queue metrics.

// UpdateQueueSize sets the number of queued events.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the per-partition queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// Worker metrics.

// UpdateWorkerCount sets the number of running workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerMessagesPerSecond sets the pool throughput.
func UpdateWorkerMessagesPerSecond(rate float64) {
	globalManager.workerMessagesPerSecond.Set(rate)
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// Live feed metrics.

// UpdateLiveViewers sets the number of connected viewers.
func UpdateLiveViewers(count int) {
	globalManager.liveViewers.Set(float64(count))
}

// RecordLiveDropped counts a viewer dropped for being too slow.
func RecordLiveDropped() {
	globalManager.liveDropped.Inc()
}

// RecordLiveMessage counts an update delivered to a viewer.
func RecordLiveMessage() {
	globalManager.liveMessages.Inc()
}

// HTTP metrics.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error metrics.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System metrics.

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
