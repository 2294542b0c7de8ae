package detect

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/courtflow/courtsched/core/events"
	"github.com/courtflow/courtsched/core/logger"
	"github.com/courtflow/courtsched/core/model"
	"github.com/courtflow/courtsched/core/travel"
	"github.com/courtflow/courtsched/internal/eventbus"
)

// TravelEstimator is the slice of the travel estimator the detector needs.
type TravelEstimator interface {
	Estimate(ctx context.Context, origin, dest model.Location, mode model.TravelMode, departure time.Time, opts travel.Options) model.TravelResult
}

// Snapshot is the immutable input of one detection pass.
type Snapshot struct {
	Events    []model.Event
	Locations map[string]model.Location
}

// Location resolves a location id, returning a zero location when unknown.
func (s Snapshot) Location(id string) model.Location {
	if s.Locations == nil {
		return model.Location{ID: id}
	}
	loc, ok := s.Locations[id]
	if !ok {
		return model.Location{ID: id}
	}
	return loc
}

// subDetector is one independent detection pass over the snapshot.
type subDetector struct {
	name string
	run  func(ctx context.Context, snap Snapshot) []model.Conflict
}

// Detector runs the sub-detectors over an event snapshot and merges their
// output into a deduplicated, severity-ranked conflict list.
type Detector struct {
	cfg       Config
	catalog   *model.ResourceCatalog
	estimator TravelEstimator
	log       logger.Logger
	bus       eventbus.EventBus
}

// NewDetector creates a detector. The estimator may be nil, which disables
// travel-time detection.
func NewDetector(cfg Config, estimator TravelEstimator, log logger.Logger, bus eventbus.EventBus) *Detector {
	cfg.SetDefaults()
	return &Detector{
		cfg:       cfg,
		catalog:   model.NewResourceCatalog(cfg.ResourceRules),
		estimator: estimator,
		log:       log,
		bus:       bus,
	}
}

// Detect runs all sub-detectors concurrently over the snapshot, joins their
// results, deduplicates by signature (first occurrence wins) and sorts by
// severity, deficit and conflicting-event count. The output is deterministic
// for identical input.
func (d *Detector) Detect(ctx context.Context, snap Snapshot) []model.Conflict {
	start := time.Now()
	subs := []subDetector{
		{"overlap", d.detectOverlaps},
		{"resource", d.detectResourceContention},
		{"travel", d.detectTravelShortfalls},
		{"hours", d.detectBusinessHours},
		{"cross_source", d.detectCrossSource},
	}

	// Sub-detectors share no mutable state; each writes its own result
	// slot so the merge order stays fixed regardless of completion order.
	results := make([][]model.Conflict, len(subs))
	var wg sync.WaitGroup
	for i, sub := range subs {
		wg.Add(1)
		go func(i int, sub subDetector) {
			defer wg.Done()
			found := sub.run(ctx, snap)
			for k := range found {
				found[k].Detector = sub.name
			}
			results[i] = found
			detectorConflicts.WithLabelValues(sub.name).Add(float64(len(found)))
		}(i, sub)
	}
	wg.Wait()

	var merged []model.Conflict
	for _, r := range results {
		merged = append(merged, r...)
	}
	out := dedupe(merged)
	sortConflicts(out)

	detectionPasses.Inc()
	elapsed := time.Since(start)
	d.log.Infof("detection pass: %d events, %d conflicts in %s", len(snap.Events), len(out), elapsed)
	if d.bus != nil {
		d.bus.Publish(events.ConflictEvent{Conflicts: out, Elapsed: elapsed})
	}
	return out
}

// dedupe drops conflicts whose signature was already seen, keeping the first
// occurrence.
func dedupe(conflicts []model.Conflict) []model.Conflict {
	seen := make(map[string]bool, len(conflicts))
	out := conflicts[:0]
	for _, c := range conflicts {
		sig := c.Signature()
		if seen[sig] {
			continue
		}
		seen[sig] = true
		out = append(out, c)
	}
	return out
}

// sortConflicts orders by severity desc, deficit desc, conflicting-event
// count desc, signature asc. The signature key makes the order total.
func sortConflicts(conflicts []model.Conflict) {
	sort.SliceStable(conflicts, func(i, j int) bool {
		a, b := conflicts[i], conflicts[j]
		if a.Severity != b.Severity {
			return a.Severity > b.Severity
		}
		if a.DeficitMinutes != b.DeficitMinutes {
			return a.DeficitMinutes > b.DeficitMinutes
		}
		if len(a.ConflictingEvents) != len(b.ConflictingEvents) {
			return len(a.ConflictingEvents) > len(b.ConflictingEvents)
		}
		return a.Signature() < b.Signature()
	})
}
