package travel

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	providerAttempts  *prometheus.CounterVec
	cacheHits         prometheus.Counter
	fallbackEstimates prometheus.Counter
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, prometheus.Counter, prometheus.Counter) {
	attempts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travel_provider_attempts_total",
			Help: "Travel provider attempts by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)
	hits := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "travel_cache_hits_total",
			Help: "Number of travel estimates served from cache",
		},
	)
	fb := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "travel_fallback_estimates_total",
			Help: "Number of estimates produced by the conservative fallback provider",
		},
	)
	return attempts, hits, fb
}

func init() {
	providerAttempts, cacheHits, fallbackEstimates = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers travel metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(providerAttempts, cacheHits, fallbackEstimates)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	providerAttempts, cacheHits, fallbackEstimates = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
