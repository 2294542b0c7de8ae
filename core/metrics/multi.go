package metrics

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordConflicts forwards the records to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordConflicts(recs []ConflictRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordConflicts(recs); err != nil {
			return err
		}
	}
	return nil
}

// RecordOptimization forwards optimizer runs when supported by the sink.
func (m *MultiSink) RecordOptimization(rec OptimizationRecord) error {
	for _, s := range m.Sinks {
		if r, ok := s.(OptimizationRecorder); ok {
			if err := r.RecordOptimization(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordResolution forwards resolution attempts when supported by the sink.
func (m *MultiSink) RecordResolution(rec ResolutionRecord) error {
	for _, s := range m.Sinks {
		if r, ok := s.(ResolutionRecorder); ok {
			if err := r.RecordResolution(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordTravel forwards travel estimates when supported by the sink.
func (m *MultiSink) RecordTravel(rec TravelRecord) error {
	for _, s := range m.Sinks {
		if r, ok := s.(TravelRecorder); ok {
			if err := r.RecordTravel(rec); err != nil {
				return err
			}
		}
	}
	return nil
}
