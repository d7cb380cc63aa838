package outbox

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Published      prometheus.Counter
	PublishFailure prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		Published: promauto.NewCounter(prometheus.CounterOpts{
			Name: "archivist_audit_outbox_published_total",
			Help: "Outbox entries delivered to Kafka",
		}),
		PublishFailure: promauto.NewCounter(prometheus.CounterOpts{
			Name: "archivist_audit_outbox_publish_failures_total",
			Help: "Outbox batches the broker rejected",
		}),
	}
}

func (m *Metrics) AddPublished(n int) {
	if m != nil && n > 0 {
		m.Published.Add(float64(n))
	}
}

func (m *Metrics) IncPublishFailures() {
	if m != nil {
		m.PublishFailure.Inc()
	}
}
