package detect

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/courtflow/courtsched/core/model"
	"github.com/courtflow/courtsched/core/travel"
	"github.com/courtflow/courtsched/infra/logger"
)

func tr(day time.Time, startHour, startMin, endHour, endMin int) model.TimeRange {
	return model.TimeRange{
		Start: time.Date(day.Year(), day.Month(), day.Day(), startHour, startMin, 0, 0, time.UTC),
		End:   time.Date(day.Year(), day.Month(), day.Day(), endHour, endMin, 0, 0, time.UTC),
	}
}

var monday = time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

func judgeReq(id string) model.ResourceRequirement {
	return model.ResourceRequirement{Kind: model.ResourceJudge, ResourceID: id, Criticality: model.CriticalityRequired}
}

// fixedEstimator returns a constant transit time.
type fixedEstimator struct{ minutes float64 }

func (f fixedEstimator) Estimate(ctx context.Context, origin, dest model.Location, mode model.TravelMode, departure time.Time, opts travel.Options) model.TravelResult {
	return model.TravelResult{
		OriginID: origin.ID, DestinationID: dest.ID, Mode: mode,
		BaseMinutes: f.minutes, Confidence: 0.9,
	}
}

func newTestDetector(cfg Config, est TravelEstimator) *Detector {
	ResetMetrics(nil)
	return NewDetector(cfg, est, logger.NopLogger{}, nil)
}

func sigs(conflicts []model.Conflict) map[string]model.Conflict {
	m := make(map[string]model.Conflict, len(conflicts))
	for _, c := range conflicts {
		m[c.Signature()] = c
	}
	return m
}

func findType(t *testing.T, conflicts []model.Conflict, typ model.ConflictType) model.Conflict {
	t.Helper()
	for _, c := range conflicts {
		if c.Type == typ {
			return c
		}
	}
	t.Fatalf("no conflict of type %s in %v", typ, conflicts)
	return model.Conflict{}
}

func TestScenarioSameJudgeTrials(t *testing.T) {
	// Two trials before the same judge, 09:00-12:00 and 11:00-14:00.
	snap := Snapshot{Events: []model.Event{
		{ID: "trial-1", Category: model.CategoryTrial, Window: tr(monday, 9, 0, 12, 0), Resources: []model.ResourceRequirement{judgeReq("j1")}},
		{ID: "trial-2", Category: model.CategoryTrial, Window: tr(monday, 11, 0, 14, 0), Resources: []model.ResourceRequirement{judgeReq("j1")}},
	}}
	d := newTestDetector(Config{}, nil)
	out := d.Detect(context.Background(), snap)

	ov := findType(t, out, model.ConflictOverlap)
	if ov.DeficitMinutes != 60 {
		t.Fatalf("expected 60 overlap minutes, got %v", ov.DeficitMinutes)
	}
	if ov.Severity != model.SeverityCritical {
		t.Fatalf("expected critical severity, got %s", ov.Severity)
	}
	ju := findType(t, out, model.ConflictJudgeUnavailable)
	if ju.ResourceKey != "judge/j1" {
		t.Fatalf("judge contention should name the judge, got %q", ju.ResourceKey)
	}
	if ju.Severity != model.SeverityHigh {
		t.Fatalf("judge contention is high severity, got %s", ju.Severity)
	}
	if ov.Detector != "overlap" || ju.Detector != "resource" {
		t.Fatalf("conflicts should carry their sub-detector: %q, %q", ov.Detector, ju.Detector)
	}
}

func TestMissingImpliedResourcesFlagged(t *testing.T) {
	// A judge implies a courtroom and a reporter under the default rules.
	snap := Snapshot{Events: []model.Event{
		{ID: "trial-1", Category: model.CategoryTrial, Window: tr(monday, 9, 0, 12, 0), Resources: []model.ResourceRequirement{judgeReq("j1")}},
		{ID: "meet-1", Category: model.CategoryMeeting, Window: tr(monday, 13, 0, 14, 0)},
	}}
	d := newTestDetector(Config{}, nil)
	out := d.Detect(context.Background(), snap)

	rc := findType(t, out, model.ConflictResource)
	if rc.EventID != "trial-1" {
		t.Fatalf("expected trial-1 flagged, got %s", rc.EventID)
	}
	if rc.Severity != model.SeverityMedium {
		t.Fatalf("missing dependencies are medium severity, got %s", rc.Severity)
	}
	for _, want := range []string{"courtroom", "reporter"} {
		if !strings.Contains(rc.Detail, want) {
			t.Fatalf("detail should name the missing %s: %q", want, rc.Detail)
		}
	}
	for _, c := range out {
		if c.Type == model.ConflictResource && c.EventID == "meet-1" {
			t.Fatalf("event without resources must not be flagged: %+v", c)
		}
	}
}

func TestDependencyRulesSatisfiedNoConflict(t *testing.T) {
	snap := Snapshot{Events: []model.Event{
		{ID: "trial-1", Category: model.CategoryTrial, Window: tr(monday, 9, 0, 12, 0), Resources: []model.ResourceRequirement{
			judgeReq("j1"),
			{Kind: model.ResourceCourtroom, ResourceID: "rm1"},
			{Kind: model.ResourceReporter, ResourceID: "rep1"},
		}},
	}}
	d := newTestDetector(Config{}, nil)
	for _, c := range d.Detect(context.Background(), snap) {
		if c.Type == model.ConflictResource {
			t.Fatalf("satisfied dependencies must not conflict: %+v", c)
		}
	}
}

func TestOverlapSeverityMonotonic(t *testing.T) {
	mins := []int{10, 20, 40, 70}
	var last model.Severity = -1
	for _, m := range mins {
		snap := Snapshot{Events: []model.Event{
			{ID: "a", Category: model.CategoryMeeting, Window: tr(monday, 9, 0, 10, 40)},
			{ID: "b", Category: model.CategoryMeeting, Window: model.TimeRange{
				Start: tr(monday, 9, 0, 10, 40).End.Add(-time.Duration(m) * time.Minute),
				End:   tr(monday, 9, 0, 10, 40).End.Add(2 * time.Hour),
			}},
		}}
		d := newTestDetector(Config{CloseHour: 23}, nil)
		out := d.Detect(context.Background(), snap)
		ov := findType(t, out, model.ConflictOverlap)
		if ov.Severity < last {
			t.Fatalf("severity decreased with more overlap: %s after %s", ov.Severity, last)
		}
		last = ov.Severity
	}
}

func TestDoubleBookingClassification(t *testing.T) {
	w := tr(monday, 9, 0, 10, 0)
	snap := Snapshot{Events: []model.Event{
		{ID: "a", Category: model.CategoryMeeting, Window: w},
		{ID: "b", Category: model.CategoryMeeting, Window: w},
	}}
	d := newTestDetector(Config{}, nil)
	out := d.Detect(context.Background(), snap)
	findType(t, out, model.ConflictDoubleBooking)
}

func TestDetectDeterministic(t *testing.T) {
	snap := Snapshot{Events: []model.Event{
		{ID: "a", Category: model.CategoryTrial, Window: tr(monday, 9, 0, 12, 0), Resources: []model.ResourceRequirement{judgeReq("j1")}},
		{ID: "b", Category: model.CategoryMotion, Window: tr(monday, 11, 0, 13, 0), Resources: []model.ResourceRequirement{judgeReq("j1")}},
		{ID: "c", Category: model.CategoryMeeting, Window: tr(monday, 6, 0, 7, 0)},
	}}
	d := newTestDetector(Config{}, nil)
	first := d.Detect(context.Background(), snap)
	second := d.Detect(context.Background(), snap)
	if len(first) != len(second) {
		t.Fatalf("run sizes differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Signature() != second[i].Signature() {
			t.Fatalf("order differs at %d: %s vs %s", i, first[i].Signature(), second[i].Signature())
		}
	}
	a, b := sigs(first), sigs(second)
	for sig := range a {
		if _, ok := b[sig]; !ok {
			t.Fatalf("signature %s missing from second run", sig)
		}
	}
}

func TestScenarioTravelShortfall(t *testing.T) {
	// Attorney ends at noon at location A, next event at B starts 12:15,
	// but transit needs 45 minutes.
	snap := Snapshot{
		Events: []model.Event{
			{ID: "dep-1", Category: model.CategoryDeposition, Window: tr(monday, 10, 0, 12, 0), LocationID: "loc-a", Participants: []string{"atty-1"}},
			{ID: "hear-1", Category: model.CategoryHearing, Window: tr(monday, 12, 15, 13, 0), LocationID: "loc-b", Participants: []string{"atty-1"}},
		},
		Locations: map[string]model.Location{
			"loc-a": {ID: "loc-a"},
			"loc-b": {ID: "loc-b"},
		},
	}
	d := newTestDetector(Config{TravelBufferMinutes: 10}, fixedEstimator{minutes: 45})
	out := d.Detect(context.Background(), snap)
	tc := findType(t, out, model.ConflictTravelTime)
	if tc.Severity != model.SeverityHigh {
		t.Fatalf("travel conflicts are high severity, got %s", tc.Severity)
	}
	// gap 15, required 45+10.
	if tc.DeficitMinutes != 40 {
		t.Fatalf("expected 40 minute deficit, got %v", tc.DeficitMinutes)
	}
}

func TestTravelSufficientGapNoConflict(t *testing.T) {
	snap := Snapshot{Events: []model.Event{
		{ID: "a", Window: tr(monday, 9, 0, 10, 0), LocationID: "loc-a", Participants: []string{"p"}},
		{ID: "b", Window: tr(monday, 12, 0, 13, 0), LocationID: "loc-b", Participants: []string{"p"}},
	}}
	d := newTestDetector(Config{TravelBufferMinutes: 10}, fixedEstimator{minutes: 45})
	for _, c := range d.Detect(context.Background(), snap) {
		if c.Type == model.ConflictTravelTime {
			t.Fatalf("unexpected travel conflict: %+v", c)
		}
	}
}

func TestBusinessHoursAndClosure(t *testing.T) {
	saturday := time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{Events: []model.Event{
		{ID: "early", Window: tr(monday, 6, 0, 7, 0)},
		{ID: "holiday", Window: tr(monday.AddDate(0, 0, 1), 9, 0, 10, 0)},
		{ID: "weekend", Window: tr(saturday, 9, 0, 10, 0)},
	}}
	d := newTestDetector(Config{WeekendsClosed: true, Closures: []string{"2024-03-12"}}, nil)
	out := d.Detect(context.Background(), snap)
	m := sigs(out)

	early := model.NewConflict(model.ConflictBusinessHours, model.SeverityMedium, "early", nil, 0)
	if _, ok := m[early.Signature()]; !ok {
		t.Fatalf("expected business-hours conflict for early event: %v", out)
	}
	holiday := model.NewConflict(model.ConflictClosure, model.SeverityHigh, "holiday", nil, 60)
	if _, ok := m[holiday.Signature()]; !ok {
		t.Fatalf("expected closure conflict for holiday event: %v", out)
	}
	weekend := model.NewConflict(model.ConflictClosure, model.SeverityHigh, "weekend", nil, 60)
	if _, ok := m[weekend.Signature()]; !ok {
		t.Fatalf("expected closure conflict for weekend event: %v", out)
	}
}

func TestCrossSourceDrift(t *testing.T) {
	snap := Snapshot{Events: []model.Event{
		{ID: "src-a", MatterID: "matter-9", Window: tr(monday, 9, 0, 10, 0)},
		{ID: "src-b", MatterID: "matter-9", Window: tr(monday, 10, 30, 11, 30)},
	}}
	d := newTestDetector(Config{CrossSourceToleranceMinutes: 5}, nil)
	out := d.Detect(context.Background(), snap)
	cs := findType(t, out, model.ConflictCrossSource)
	if cs.DeficitMinutes != 90 {
		t.Fatalf("expected 90 minute drift, got %v", cs.DeficitMinutes)
	}
}

func TestCrossSourceWithinTolerance(t *testing.T) {
	snap := Snapshot{Events: []model.Event{
		{ID: "src-a", MatterID: "matter-9", Window: tr(monday, 9, 0, 10, 0)},
		{ID: "src-b", MatterID: "matter-9", Window: tr(monday, 9, 3, 10, 3)},
	}}
	d := newTestDetector(Config{CrossSourceToleranceMinutes: 5}, nil)
	for _, c := range d.Detect(context.Background(), snap) {
		if c.Type == model.ConflictCrossSource {
			t.Fatalf("drift within tolerance must not conflict")
		}
	}
}

func TestSortedBySeverity(t *testing.T) {
	snap := Snapshot{Events: []model.Event{
		{ID: "a", Category: model.CategoryTrial, Window: tr(monday, 9, 0, 12, 0), Resources: []model.ResourceRequirement{judgeReq("j1")}},
		{ID: "b", Category: model.CategoryTrial, Window: tr(monday, 11, 0, 14, 0), Resources: []model.ResourceRequirement{judgeReq("j1")}},
		{ID: "c", Category: model.CategoryMeeting, Window: tr(monday, 6, 0, 6, 30)},
	}}
	d := newTestDetector(Config{}, nil)
	out := d.Detect(context.Background(), snap)
	for i := 1; i < len(out); i++ {
		if out[i].Severity > out[i-1].Severity {
			t.Fatalf("conflicts not sorted by severity at %d", i)
		}
	}
}
