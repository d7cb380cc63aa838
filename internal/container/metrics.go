package container

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks container lifecycle and placement rejections.
type Metrics struct {
	ContainersCreated *prometheus.CounterVec
	CapacityRejected  *prometheus.CounterVec
	Assignments       *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		ContainersCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "archivist_containers_created_total",
			Help: "Containers opened, by kind",
		}, []string{"kind"}),
		CapacityRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "archivist_container_capacity_rejections_total",
			Help: "Placements rejected because the container was full or closed, by kind",
		}, []string{"kind"}),
		Assignments: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "archivist_package_assignments_total",
			Help: "Case files assigned to packages, by whether the assignment rolled the package over",
		}, []string{"rollover"}),
	}
}

func (m *Metrics) IncContainerCreated(kind string) {
	if m == nil {
		return
	}
	m.ContainersCreated.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncCapacityRejected(kind string) {
	if m == nil {
		return
	}
	m.CapacityRejected.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncAssignment(rollover bool) {
	if m == nil {
		return
	}
	label := "false"
	if rollover {
		label = "true"
	}
	m.Assignments.WithLabelValues(label).Inc()
}
