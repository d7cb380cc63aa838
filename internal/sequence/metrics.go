package sequence

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"archivist/internal/records/models"
)

type Metrics struct {
	Allocated *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		Allocated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "archivist_sequence_allocations_total",
			Help: "Numbers allocated, by counter kind",
		}, []string{"kind"}),
	}
}

func (m *Metrics) IncAllocated(kind models.CounterKind) {
	if m == nil {
		return
	}
	m.Allocated.WithLabelValues(string(kind)).Inc()
}
