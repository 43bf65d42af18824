package observability

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Prometheus counters, histograms, and gauges for the
// notification pipeline.
type Metrics struct {
	SweepsStarted prometheus.Counter
	SweepsSkipped prometheus.Counter
	SweepRunning  prometheus.Gauge
	SweepDuration prometheus.Histogram

	// Per-user pipeline outcomes. outcome: notified, no_alert,
	// resolution_failed, fetch_failed, delivery_failed.
	UserOutcomes *prometheus.CounterVec

	NotificationsSent   prometheus.Counter
	NotificationsFailed prometheus.Counter
}

// NewMetrics creates all pipeline metrics and registers them with reg.
// Pass a fresh registry in tests to avoid duplicate-registration panics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SweepsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "skysnap",
			Name:      "sweeps_started_total",
			Help:      "Batch sweeps that began running.",
		}),
		SweepsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "skysnap",
			Name:      "sweeps_skipped_total",
			Help:      "Scheduler triggers ignored because a sweep was still running.",
		}),
		SweepRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "skysnap",
			Name:      "sweep_running",
			Help:      "1 while a batch sweep is in flight.",
		}),
		SweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "skysnap",
			Name:      "sweep_duration_seconds",
			Help:      "Duration of a complete batch sweep.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		}),
		UserOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skysnap",
			Name:      "user_outcomes_total",
			Help:      "Per-user pipeline results by outcome.",
		}, []string{"outcome"}),
		NotificationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "skysnap",
			Name:      "notifications_sent_total",
			Help:      "Weather tip emails delivered.",
		}),
		NotificationsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "skysnap",
			Name:      "notifications_failed_total",
			Help:      "Weather tip emails that failed to send.",
		}),
	}

	reg.MustRegister(
		m.SweepsStarted,
		m.SweepsSkipped,
		m.SweepRunning,
		m.SweepDuration,
		m.UserOutcomes,
		m.NotificationsSent,
		m.NotificationsFailed,
	)

	return m
}
