package metrics

import (
	"time"
)

// ConflictRecord represents one detected conflict to be recorded.
type ConflictRecord struct {
	Type           string
	Severity       string
	Detector       string
	Events         int
	DeficitMinutes float64
	Time           time.Time
}

// MetricsSink records scheduling events for observability purposes.
type MetricsSink interface {
	RecordConflicts(recs []ConflictRecord) error
}

// OptimizationRecord summarizes one optimizer run.
type OptimizationRecord struct {
	Algorithm  string
	Events     int
	Assigned   int
	Unassigned int
	Score      float64
	Elapsed    time.Duration
	Time       time.Time
}

// OptimizationRecorder records optimizer runs.
type OptimizationRecorder interface {
	RecordOptimization(rec OptimizationRecord) error
}

// ResolutionRecord captures one resolution attempt and its outcome.
type ResolutionRecord struct {
	Signature    string
	ConflictType string
	Strategy     string
	Status       string
	Superseded   bool
	Time         time.Time
}

// ResolutionRecorder records resolution attempts.
type ResolutionRecorder interface {
	RecordResolution(rec ResolutionRecord) error
}

// TravelRecord captures one travel estimate.
type TravelRecord struct {
	Provider   string
	Mode       string
	Minutes    float64
	Confidence float64
	Fallback   bool
	Time       time.Time
}

// TravelRecorder is implemented by sinks able to record travel estimates.
type TravelRecorder interface {
	RecordTravel(rec TravelRecord) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordConflicts([]ConflictRecord) error      { return nil }
func (NopSink) RecordOptimization(OptimizationRecord) error { return nil }
func (NopSink) RecordResolution(ResolutionRecord) error     { return nil }
func (NopSink) RecordTravel(TravelRecord) error             { return nil }
