package optimize

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	optimizerRuns   *prometheus.CounterVec
	generationCount prometheus.Counter
	bestScore       prometheus.Gauge
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, prometheus.Counter, prometheus.Gauge) {
	runs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "optimizer_runs_total",
			Help: "Optimization runs per algorithm",
		},
		[]string{"algorithm"},
	)
	gens := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "optimizer_generations_total",
			Help: "Genetic search generations evaluated",
		},
	)
	best := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "optimizer_best_score",
			Help: "Score of the last schedule produced",
		},
	)
	return runs, gens, best
}

func init() {
	optimizerRuns, generationCount, bestScore = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers optimizer metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(optimizerRuns, generationCount, bestScore)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	optimizerRuns, generationCount, bestScore = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
