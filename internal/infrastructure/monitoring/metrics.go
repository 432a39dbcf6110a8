package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the launcher.
type Metrics struct {
	// Frame pipeline
	FramesCommitted prometheus.Counter
	FramesDropped   *prometheus.CounterVec
	TickDuration    prometheus.Histogram
	TickOverruns    prometheus.Counter

	// App lifecycle
	AppStarts  prometheus.Counter
	AppStops   prometheus.Counter
	AppFaults  *prometheus.CounterVec
	ForceKills prometheus.Counter
	AppActive  prometheus.Gauge

	// Launcher state
	State prometheus.Gauge

	// Input
	InputEvents  *prometheus.CounterVec
	InputDropped prometheus.Counter

	// WebSocket gamepad
	WSConnections prometheus.Gauge

	// System
	Uptime    prometheus.Gauge
	startTime time.Time
}

// New creates a metrics collector registered on reg. A nil reg uses a
// private registry, which keeps repeated construction in tests safe.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	m := &Metrics{
		startTime: time.Now(),

		FramesCommitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledhost_frames_committed_total",
			Help: "Total number of frames committed to the surface",
		}),
		FramesDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ledhost_frames_dropped_total",
			Help: "Total number of frames dropped",
		}, []string{"reason"}),
		TickDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledhost_tick_duration_seconds",
			Help:    "Scheduler tick duration in seconds",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .016, .033, .05, .1, .25},
		}),
		TickOverruns: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledhost_tick_overruns_total",
			Help: "Total number of ticks exceeding the frame period",
		}),

		AppStarts: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledhost_app_starts_total",
			Help: "Total number of app instances started",
		}),
		AppStops: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledhost_app_stops_total",
			Help: "Total number of app instances stopped",
		}),
		AppFaults: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ledhost_app_faults_total",
			Help: "Total number of app faults",
		}, []string{"reason"}),
		ForceKills: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledhost_app_force_kills_total",
			Help: "Total number of force-killed app instances",
		}),
		AppActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ledhost_app_active",
			Help: "Whether an app instance is currently active (0/1)",
		}),

		State: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ledhost_launcher_state",
			Help: "Launcher state (0=booting 1=menu 2=running 3=recovering 4=rescue)",
		}),

		InputEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ledhost_input_events_total",
			Help: "Total number of input events received",
		}, []string{"source"}),
		InputDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledhost_input_dropped_total",
			Help: "Total number of input events dropped",
		}),

		WSConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ledhost_ws_connections",
			Help: "Number of active websocket gamepad connections",
		}),

		Uptime: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ledhost_uptime_seconds",
			Help: "Launcher uptime in seconds",
		}),
	}

	return m
}

// ObserveTick records one scheduler tick.
func (m *Metrics) ObserveTick(d time.Duration, overran bool) {
	m.TickDuration.Observe(d.Seconds())
	if overran {
		m.TickOverruns.Inc()
	}
	m.Uptime.Set(time.Since(m.startTime).Seconds())
}

// RecordFault records an app fault by reason ("hang", "crash",
// "resolution", "signal").
func (m *Metrics) RecordFault(reason string) {
	m.AppFaults.WithLabelValues(reason).Inc()
}

// RecordDroppedFrame records a dropped frame by reason ("overrun",
// "resolution", "no_frame").
func (m *Metrics) RecordDroppedFrame(reason string) {
	m.FramesDropped.WithLabelValues(reason).Inc()
}

// RecordInput records one input event from a source.
func (m *Metrics) RecordInput(source string) {
	m.InputEvents.WithLabelValues(source).Inc()
}

// SetState publishes the launcher state ordinal.
func (m *Metrics) SetState(ordinal int) {
	m.State.Set(float64(ordinal))
}

// SetAppActive publishes whether an instance is active.
func (m *Metrics) SetAppActive(active bool) {
	if active {
		m.AppActive.Set(1)
	} else {
		m.AppActive.Set(0)
	}
}
