package retention

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"archivist/internal/records/models"
)

type Metrics struct {
	Runs            *prometheus.CounterVec
	RunDuration     prometheus.Histogram
	LastRunScanned  prometheus.Gauge
	Transitions     *prometheus.CounterVec
	AlertsRaised    *prometheus.CounterVec
	EvaluationFails prometheus.Counter
	Skipped         *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		Runs: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "archivist_retention_runs_total",
			Help: "Retention runs, by result",
		}, []string{"result"}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "archivist_retention_run_duration_seconds",
			Help:    "Wall time of completed retention runs",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 14),
		}),
		LastRunScanned: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "archivist_retention_last_run_scanned",
			Help: "Case files scanned by the most recent completed run",
		}),
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "archivist_retention_lifecycle_updates_total",
			Help: "Case files whose derived lifecycle changed, by resulting phase",
		}, []string{"phase"}),
		AlertsRaised: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "archivist_retention_alerts_raised_total",
			Help: "Alerts inserted, by kind",
		}, []string{"kind"}),
		EvaluationFails: promauto.NewCounter(prometheus.CounterOpts{
			Name: "archivist_retention_evaluation_failures_total",
			Help: "Case files skipped because their evaluation failed",
		}),
		Skipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "archivist_retention_runs_skipped_total",
			Help: "Scheduled runs not started, by reason",
		}, []string{"reason"}),
	}
}

func (m *Metrics) IncRun(result string) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveRun(r RunReport) {
	if m == nil {
		return
	}
	m.RunDuration.Observe(r.Duration.Seconds())
	m.LastRunScanned.Set(float64(r.Scanned))
}

func (m *Metrics) IncTransition(phase models.Phase) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(string(phase)).Inc()
}

func (m *Metrics) IncAlert(kind models.AlertKind) {
	if m == nil {
		return
	}
	m.AlertsRaised.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) IncFailed() {
	if m == nil {
		return
	}
	m.EvaluationFails.Inc()
}

func (m *Metrics) IncSkipped(reason string) {
	if m == nil {
		return
	}
	m.Skipped.WithLabelValues(reason).Inc()
}
