package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/courtflow/courtsched/core/metrics"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	total := 0.0
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if m.Counter != nil {
				total += m.Counter.GetValue()
			}
		}
	}
	return total
}

func TestPromSinkRecordsConflicts(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("NewPromSinkWithRegistry: %v", err)
	}
	recs := []coremetrics.ConflictRecord{
		{Type: "overlap", Severity: "critical"},
		{Type: "travel_time", Severity: "high"},
	}
	if err := sink.RecordConflicts(recs); err != nil {
		t.Fatalf("RecordConflicts: %v", err)
	}
	if got := counterValue(t, reg, "scheduling_conflicts_total"); got != 2 {
		t.Fatalf("expected 2 conflicts recorded, got %v", got)
	}
}

func TestPromSinkRecordsResolutions(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("NewPromSinkWithRegistry: %v", err)
	}
	rec, ok := sink.(coremetrics.ResolutionRecorder)
	if !ok {
		t.Fatalf("PromSink does not record resolutions")
	}
	if err := rec.RecordResolution(coremetrics.ResolutionRecord{Strategy: "buffer_time", Status: "resolved"}); err != nil {
		t.Fatalf("RecordResolution: %v", err)
	}
	if got := counterValue(t, reg, "scheduling_resolutions_total"); got != 1 {
		t.Fatalf("expected 1 resolution recorded, got %v", got)
	}
}

func TestPromSinkDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg); err != nil {
		t.Fatalf("second registration should reuse collectors: %v", err)
	}
}
