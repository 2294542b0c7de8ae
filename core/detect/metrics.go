package detect

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	detectionPasses   prometheus.Counter
	detectorConflicts *prometheus.CounterVec
)

// newCollectors creates new metric collectors.
func newCollectors() (prometheus.Counter, *prometheus.CounterVec) {
	passes := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "detection_passes_total",
			Help: "Number of completed conflict detection passes",
		},
	)
	found := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "detection_conflicts_total",
			Help: "Conflicts found per sub-detector",
		},
		[]string{"detector"},
	)
	return passes, found
}

func init() {
	detectionPasses, detectorConflicts = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers detection metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(detectionPasses, detectorConflicts)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	detectionPasses, detectorConflicts = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
