package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	defaultRefreshInterval = 10 * time.Second
)

// DefaultBucketsMs are the latency buckets, in milliseconds, used by every
// histogram unless WithHistogramBuckets overrides them.
var DefaultBucketsMs = []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000} //nolint:gochecknoglobals // default buckets

// Manager owns every Prometheus collector the service exports.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Match
	eventsRecorded *prometheus.CounterVec
	eventsDup      prometheus.Counter
	eventsRejected *prometheus.CounterVec
	teamXG         *prometheus.GaugeVec
	teamShots      *prometheus.GaugeVec
	alertsActive   *prometheus.GaugeVec
	matchResets    prometheus.Counter

	// Clock
	clockMinute  prometheus.Gauge
	clockRunning prometheus.Gauge
	clockTicks   prometheus.Counter

	// Live feed
	liveClients    prometheus.Gauge
	liveBroadcasts prometheus.Counter
	liveDropped    prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Process-wide manager and the custom registry it writes to. The default
// registry is avoided so Go runtime collectors stay out of /healthz.
var (
	globalManager  atomic.Pointer[Manager]             //nolint:gochecknoglobals // process-wide metrics manager
	customRegistry atomic.Pointer[prometheus.Registry] //nolint:gochecknoglobals // process-wide registry
)

func init() { //nolint:gochecknoinits // global metrics setup
	Init()
}

// Init replaces the global manager with one built from opts on a fresh
// registry. Call it at startup, before handlers capture GetRegistry.
func Init(opts ...Option) *Manager {
	reg := prometheus.NewRegistry()
	m := NewManager(append(opts, WithPrometheusRegistry(reg))...)
	customRegistry.Store(reg)
	globalManager.Store(m)
	return m
}

func global() *Manager { return globalManager.Load() }

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "matchxg",
		subsystem:        "match",
		histogramBuckets: DefaultBucketsMs,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
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
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.eventsRecorded = auto.NewCounterVec(
		m.counterOpts("events_recorded_total", "Events appended to the match log"),
		[]string{"team", "kind"},
	)
	m.eventsDup = auto.NewCounter(m.counterOpts("events_duplicate_total", "Events dropped because their id was already seen"))
	m.eventsRejected = auto.NewCounterVec(
		m.counterOpts("events_rejected_total", "Events refused before reaching the log"),
		[]string{"reason"},
	)
	m.teamXG = auto.NewGaugeVec(m.gaugeOpts("team_xg", "Cumulative expected goals per team"), []string{"team"})
	m.teamShots = auto.NewGaugeVec(m.gaugeOpts("team_shots", "Shots on and off target per team"), []string{"team"})
	m.alertsActive = auto.NewGaugeVec(m.gaugeOpts("alerts_active", "Alerts currently raised, by kind"), []string{"kind"})
	m.matchResets = auto.NewCounter(m.counterOpts("resets_total", "Full match resets"))

	m.clockMinute = auto.NewGauge(m.gaugeOpts("clock_minute", "Current match minute"))
	m.clockRunning = auto.NewGauge(m.gaugeOpts("clock_running", "1 while the match clock is running"))
	m.clockTicks = auto.NewCounter(m.counterOpts("clock_ticks_total", "Clock ticks applied"))

	m.liveClients = auto.NewGauge(m.gaugeOpts("live_clients", "Connected live feed clients"))
	m.liveBroadcasts = auto.NewCounter(m.counterOpts("live_broadcasts_total", "Snapshots fanned out to live clients"))
	m.liveDropped = auto.NewCounter(m.counterOpts("live_dropped_total", "Live clients dropped for being too slow"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		m.counterOpts("errors_total", "Errors by component and type"),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_bytes", "Heap bytes in use"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutines", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_milliseconds", "Most recent GC pause in milliseconds"))
}

// RefreshInterval is how often system gauges should be sampled.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

func (m *Manager) RecordEvent(team, kind string) { m.eventsRecorded.WithLabelValues(team, kind).Inc() }
func (m *Manager) RecordEventDuplicate()         { m.eventsDup.Inc() }
func (m *Manager) RecordEventRejected(reason string) {
	m.eventsRejected.WithLabelValues(reason).Inc()
}

// UpdateTeam publishes a team's running totals.
func (m *Manager) UpdateTeam(team string, xg float64, shots int) {
	m.teamXG.WithLabelValues(team).Set(xg)
	m.teamShots.WithLabelValues(team).Set(float64(shots))
}

// UpdateAlerts sets the active alert gauge for every known kind; kinds
// missing from active are zeroed.
func (m *Manager) UpdateAlerts(kinds []string, active map[string]int) {
	for _, k := range kinds {
		m.alertsActive.WithLabelValues(k).Set(float64(active[k]))
	}
}

func (m *Manager) RecordMatchReset() { m.matchResets.Inc() }

// UpdateClock publishes the clock position.
func (m *Manager) UpdateClock(minute int, running bool) {
	m.clockMinute.Set(float64(minute))
	if running {
		m.clockRunning.Set(1)
	} else {
		m.clockRunning.Set(0)
	}
}

func (m *Manager) RecordClockTick() { m.clockTicks.Inc() }

func (m *Manager) UpdateLiveClients(n int) { m.liveClients.Set(float64(n)) }
func (m *Manager) RecordLiveBroadcast()    { m.liveBroadcasts.Inc() }
func (m *Manager) RecordLiveDropped()      { m.liveDropped.Inc() }

func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string) {
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

func (m *Manager) RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

func (m *Manager) RecordError(component, errorType string) {
	m.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

func (m *Manager) UpdateSystemMemoryUsage(bytes uint64) { m.systemMemoryUsage.Set(float64(bytes)) }
func (m *Manager) UpdateSystemGoroutineCount(n int)     { m.systemGoroutineCount.Set(float64(n)) }
func (m *Manager) RecordSystemGCPauseTime(pauseMs float64) {
	m.systemGCPauseTime.Observe(pauseMs)
}

// Package-level helpers write to the global manager.

func RecordEvent(team, kind string)     { global().RecordEvent(team, kind) }
func RecordEventDuplicate()             { global().RecordEventDuplicate() }
func RecordEventRejected(reason string) { global().RecordEventRejected(reason) }
func UpdateTeam(team string, xg float64, shots int) {
	global().UpdateTeam(team, xg, shots)
}
func UpdateAlerts(kinds []string, active map[string]int) { global().UpdateAlerts(kinds, active) }
func RecordMatchReset()                                  { global().RecordMatchReset() }
func UpdateClock(minute int, running bool)               { global().UpdateClock(minute, running) }
func RecordClockTick()                                   { global().RecordClockTick() }
func UpdateLiveClients(n int)                            { global().UpdateLiveClients(n) }
func RecordLiveBroadcast()                               { global().RecordLiveBroadcast() }
func RecordLiveDropped()                                 { global().RecordLiveDropped() }

func RecordHTTPRequest(endpoint, method, statusCode string) {
	global().RecordHTTPRequest(endpoint, method, statusCode)
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	global().RecordHTTPRequestDuration(endpoint, method, statusCode, durationMs)
}

func RecordError(component, errorType string) { global().RecordError(component, errorType) }

func UpdateSystemMemoryUsage(bytes uint64) { global().UpdateSystemMemoryUsage(bytes) }
func UpdateSystemGoroutineCount(n int)     { global().UpdateSystemGoroutineCount(n) }
func RecordSystemGCPauseTime(pauseMs float64) {
	global().RecordSystemGCPauseTime(pauseMs)
}

// RefreshInterval reports the global manager's sampling interval.
func RefreshInterval() time.Duration { return global().RefreshInterval() }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry.Load()
}
