package resolve

import (
	"github.com/prometheus/client_golang/prometheus"
)

var resolutionAttempts *prometheus.CounterVec

// newCollectors creates new metric collectors.
func newCollectors() *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resolution_attempts_total",
			Help: "Resolution attempts per strategy and outcome",
		},
		[]string{"strategy", "outcome"},
	)
}

func init() {
	resolutionAttempts = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers resolver metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(resolutionAttempts)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	resolutionAttempts = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
