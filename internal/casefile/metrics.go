package casefile

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"archivist/internal/records/models"
)

type Metrics struct {
	Created *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		Created: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "archivist_case_files_created_total",
			Help: "Case files created, by support type and placement outcome",
		}, []string{"support", "placement"}),
	}
}

func (m *Metrics) IncCreated(support models.SupportType, placementFailed bool) {
	if m == nil {
		return
	}
	placement := "placed"
	switch {
	case support != models.SupportPhysical:
		placement = "none"
	case placementFailed:
		placement = "failed"
	}
	m.Created.WithLabelValues(string(support), placement).Inc()
}
