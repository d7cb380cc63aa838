package disposition

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"archivist/internal/records/models"
)

type Metrics struct {
	Items *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		Items: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "archivist_disposition_items_total",
			Help: "Case files handled by disposition batches, by action and result",
		}, []string{"action", "result"}),
	}
}

func (m *Metrics) IncItem(action models.DispositionAction, result string) {
	if m == nil {
		return
	}
	m.Items.WithLabelValues(string(action), result).Inc()
}
