// Package metrics provides Prometheus metrics for the reelrank service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Ranking metrics
	votesRecorded     prometheus.Counter
	voteErrors        prometheus.Counter
	totalVotes        prometheus.Gauge
	itemCount         prometheus.Gauge
	coverageRatio     prometheus.Gauge
	sessionSaves      prometheus.Counter
	sessionSaveErrors prometheus.Counter
	sessionSaveTime   prometheus.Histogram

	// Swipe metrics
	swipeDecisions *prometheus.CounterVec
	matchesFound   prometheus.Counter

	// Snapshot metrics
	snapshotsCreated prometheus.Counter
	snapshotsLoaded  prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec
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
		namespace:        "reelrank",
		subsystem:        "session",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.votesRecorded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "votes_recorded_total",
		Help:      "Total number of pairwise votes recorded",
	})

	m.voteErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "vote_errors_total",
		Help:      "Total number of rejected or failed votes",
	})

	m.totalVotes = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "total_votes",
		Help:      "Vote counter of the live session",
	})

	m.itemCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "item_count",
		Help:      "Number of items in the live session",
	})

	m.coverageRatio = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pair_coverage_ratio",
		Help:      "Fraction of all unordered item pairs compared at least once",
	})

	m.sessionSaves = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "saves_total",
		Help:      "Total number of session artifact saves",
	})

	m.sessionSaveErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "save_errors_total",
		Help:      "Total number of failed session artifact saves",
	})

	m.sessionSaveTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "save_duration_milliseconds",
		Help:      "Histogram of session artifact save duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.swipeDecisions = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "swipe_decisions_total",
			Help:      "Total number of swipe decisions by outcome",
		},
		[]string{"decision"},
	)

	m.matchesFound = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_found_total",
		Help:      "Total number of titles promoted to matches",
	})

	m.snapshotsCreated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshots_created_total",
		Help:      "Total number of snapshots created",
	})

	m.snapshotsLoaded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshots_loaded_total",
		Help:      "Total number of snapshots restored over the live session",
	})

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

	m.errorsByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_endpoint_total",
			Help:      "Total number of error responses by endpoint and method",
		},
		[]string{"endpoint", "method", "error_type"},
	)
}

// RecordVote increments the recorded votes counter.
func RecordVote() {
	globalManager.votesRecorded.Inc()
}

// RecordVoteError increments the rejected/failed votes counter.
func RecordVoteError() {
	globalManager.voteErrors.Inc()
}

// UpdateTotalVotes sets the live session's vote counter gauge.
func UpdateTotalVotes(count int) {
	globalManager.totalVotes.Set(float64(count))
}

// UpdateItemCount sets the live session's item count gauge.
func UpdateItemCount(count int) {
	globalManager.itemCount.Set(float64(count))
}

// UpdateCoverageRatio sets the global pair coverage gauge.
func UpdateCoverageRatio(ratio float64) {
	globalManager.coverageRatio.Set(ratio)
}

// RecordSessionSave records one successful artifact save and its duration.
func RecordSessionSave(durationMs float64) {
	globalManager.sessionSaves.Inc()
	globalManager.sessionSaveTime.Observe(durationMs)
}

// RecordSessionSaveError increments the failed-save counter.
func RecordSessionSaveError() {
	globalManager.sessionSaveErrors.Inc()
}

// RecordSwipeDecision increments the swipe decision counter for one outcome.
func RecordSwipeDecision(decision string) {
	globalManager.swipeDecisions.WithLabelValues(decision).Inc()
}

// RecordMatchFound increments the matches counter.
func RecordMatchFound() {
	globalManager.matchesFound.Inc()
}

// RecordSnapshotCreated increments the snapshots-created counter.
func RecordSnapshotCreated() {
	globalManager.snapshotsCreated.Inc()
}

// RecordSnapshotLoaded increments the snapshots-loaded counter.
func RecordSnapshotLoaded() {
	globalManager.snapshotsLoaded.Inc()
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByEndpoint increments the error counter for one endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
