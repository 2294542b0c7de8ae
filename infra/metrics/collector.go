package metrics

import (
	"context"
	"time"

	"github.com/courtflow/courtsched/core/events"
	coremetrics "github.com/courtflow/courtsched/core/metrics"
	"github.com/courtflow/courtsched/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for
// scheduling events. It stops when the context is canceled.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				switch e := ev.(type) {
				case events.ConflictEvent:
					recs := make([]coremetrics.ConflictRecord, len(e.Conflicts))
					for i, c := range e.Conflicts {
						recs[i] = coremetrics.ConflictRecord{
							Type:           c.Type.String(),
							Severity:       c.Severity.String(),
							Detector:       c.Detector,
							Events:         len(c.AllEvents()),
							DeficitMinutes: c.DeficitMinutes,
							Time:           c.DetectedAt,
						}
					}
					_ = sink.RecordConflicts(recs)
				case events.OptimizeEvent:
					if r, ok := sink.(coremetrics.OptimizationRecorder); ok {
						_ = r.RecordOptimization(coremetrics.OptimizationRecord{
							Algorithm:  e.Algorithm,
							Events:     e.Events,
							Assigned:   e.Assigned,
							Unassigned: e.Unassigned,
							Score:      e.Score,
							Elapsed:    e.Elapsed,
							Time:       time.Now(),
						})
					}
				case events.ResolutionEvent:
					if r, ok := sink.(coremetrics.ResolutionRecorder); ok {
						_ = r.RecordResolution(coremetrics.ResolutionRecord{
							Signature: e.Signature,
							Strategy:  e.Strategy,
							Status:    string(e.Status),
							Time:      time.Now(),
						})
					}
				case events.TravelFallbackEvent:
					if r, ok := sink.(coremetrics.TravelRecorder); ok {
						_ = r.RecordTravel(coremetrics.TravelRecord{
							Provider: "fallback",
							Mode:     string(e.Mode),
							Fallback: true,
							Time:     time.Now(),
						})
					}
				}
			}
		}
	}()
}
