package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the decision service.
type Metrics struct {
	// Event pipeline
	EventsTotal    *prometheus.CounterVec
	DecisionsTotal *prometheus.CounterVec

	// Timer/quota state
	QuotaRemaining  prometheus.Gauge
	IntentionTimers prometheus.Gauge
	QuickTaskTimers prometheus.Gauge
	TimersExpired   *prometheus.CounterVec

	// Sessions
	SessionsStarted *prometheus.CounterVec
	SessionsEnded   *prometheus.CounterVec
	SessionActive   prometheus.Gauge

	// Sweeps
	SweepsTotal   prometheus.Counter
	SweepDuration prometheus.Histogram

	// Native bridge
	BridgeCalls  *prometheus.CounterVec
	BridgeErrors prometheus.Counter

	// System
	Uptime    prometheus.Gauge
	startTime time.Time
}

// NewMetrics creates and registers the metrics collector.
func NewMetrics() *Metrics {
	m := &Metrics{
		startTime: time.Now(),

		EventsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pause_foreground_events_total",
				Help: "Foreground events received, by filter class",
			},
			[]string{"class"},
		),
		DecisionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pause_decisions_total",
				Help: "Trigger evaluations, by outcome",
			},
			[]string{"outcome"},
		),

		QuotaRemaining: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "pause_quick_task_quota_remaining",
			Help: "Global quick-task uses remaining in the current window",
		}),
		IntentionTimers: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "pause_intention_timers",
			Help: "Live intention timers",
		}),
		QuickTaskTimers: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "pause_quick_task_timers",
			Help: "Live quick-task timers",
		}),
		TimersExpired: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pause_timers_expired_total",
				Help: "Timer expiries observed, by kind and where the user was",
			},
			[]string{"kind", "location"},
		),

		SessionsStarted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pause_sessions_started_total",
				Help: "System sessions started, by kind",
			},
			[]string{"kind"},
		),
		SessionsEnded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pause_sessions_ended_total",
				Help: "System sessions ended, by kind and reason",
			},
			[]string{"kind", "reason"},
		),
		SessionActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "pause_session_active",
			Help: "1 when a non-idle system session owns the surface",
		}),

		SweepsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pause_sweeps_total",
			Help: "Periodic expiry sweeps executed",
		}),
		SweepDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "pause_sweep_duration_seconds",
			Help:    "Duration of one expiry sweep",
			Buckets: prometheus.DefBuckets,
		}),

		BridgeCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pause_native_bridge_calls_total",
				Help: "Native bridge calls, by operation",
			},
			[]string{"op"},
		),
		BridgeErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pause_native_bridge_errors_total",
			Help: "Failed native bridge calls (best-effort forwarding)",
		}),

		Uptime: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "pause_uptime_seconds",
			Help: "Process uptime in seconds",
		}),
	}

	go m.trackUptime()
	return m
}

// RecordEvent counts one classified foreground event.
func (m *Metrics) RecordEvent(class string) {
	m.EventsTotal.WithLabelValues(class).Inc()
}

// RecordDecision counts one trigger decision.
func (m *Metrics) RecordDecision(outcome string) {
	m.DecisionsTotal.WithLabelValues(outcome).Inc()
}

// RecordSweep observes one sweep execution.
func (m *Metrics) RecordSweep(d time.Duration) {
	m.SweepsTotal.Inc()
	m.SweepDuration.Observe(d.Seconds())
}

// RecordBridgeCall counts one native bridge call and its result.
func (m *Metrics) RecordBridgeCall(op string, err error) {
	m.BridgeCalls.WithLabelValues(op).Inc()
	if err != nil {
		m.BridgeErrors.Inc()
	}
}

func (m *Metrics) trackUptime() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		m.Uptime.Set(time.Since(m.startTime).Seconds())
	}
}
