package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/courtflow/courtsched/core/metrics"
)

// PromSink records scheduling events in Prometheus metrics.
type PromSink struct {
	conflicts   *prometheus.CounterVec
	resolutions *prometheus.CounterVec
	score       prometheus.Gauge
	travel      *prometheus.HistogramVec
}

// NewPromSink registers scheduling metrics on the default Prometheus
// registerer. The Prometheus server should be started separately using
// cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduling_conflicts_total",
		Help: "Total number of detected conflicts",
	}, []string{"type", "severity"})
	resolutions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduling_resolutions_total",
		Help: "Total number of resolution attempts",
	}, []string{"strategy", "status", "superseded"})
	score := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "scheduling_last_score",
		Help: "Score of the last optimized schedule",
	})
	travel := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scheduling_travel_minutes",
		Help:    "Estimated travel minutes per estimate",
		Buckets: []float64{5, 15, 30, 45, 60, 90, 120},
	}, []string{"provider", "mode"})

	if err := reg.Register(conflicts); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			conflicts = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(resolutions); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			resolutions = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(score); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			score = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(travel); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			travel = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{conflicts: conflicts, resolutions: resolutions, score: score, travel: travel}, nil
}

// RecordConflicts increments the counter for each detected conflict.
func (s *PromSink) RecordConflicts(recs []coremetrics.ConflictRecord) error {
	for _, r := range recs {
		s.conflicts.WithLabelValues(r.Type, r.Severity).Inc()
	}
	return nil
}

// RecordResolution counts the resolution attempt by strategy and outcome.
func (s *PromSink) RecordResolution(rec coremetrics.ResolutionRecord) error {
	s.resolutions.WithLabelValues(rec.Strategy, rec.Status, strconv.FormatBool(rec.Superseded)).Inc()
	return nil
}

// RecordOptimization sets the score gauge to the latest run.
func (s *PromSink) RecordOptimization(rec coremetrics.OptimizationRecord) error {
	s.score.Set(rec.Score)
	return nil
}

// RecordTravel observes the travel estimate histogram.
func (s *PromSink) RecordTravel(rec coremetrics.TravelRecord) error {
	s.travel.WithLabelValues(rec.Provider, rec.Mode).Observe(rec.Minutes)
	return nil
}
