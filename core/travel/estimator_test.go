package travel

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/courtflow/courtsched/core/model"
	"github.com/courtflow/courtsched/infra/logger"
)

var (
	courthouse = model.Location{
		ID: "court-a", Lat: 48.8566, Lon: 2.3522,
		Building: model.BuildingCourthouse, Parking: model.ParkingScarce, ScreeningMinutes: 10,
	}
	office = model.Location{
		ID: "office-b", Lat: 48.8738, Lon: 2.295,
		Building: model.BuildingOffice, Parking: model.ParkingGood,
	}
)

func newTestEstimator(t *testing.T, cfg Config, providers []Provider) *Estimator {
	t.Helper()
	ResetMetrics(nil)
	return NewEstimator(cfg, providers, logger.NopLogger{}, nil)
}

type failingProvider struct{ calls int }

func (p *failingProvider) Name() string { return "failing" }
func (p *failingProvider) Attempt(ctx context.Context, o, d model.Location, m model.TravelMode, dep time.Time) (Estimate, error) {
	p.calls++
	return Estimate{}, errors.New("boom")
}

func TestEstimateNeverFails(t *testing.T) {
	fp := &failingProvider{}
	e := newTestEstimator(t, Config{}, []Provider{fp})
	res := e.Estimate(context.Background(), office, courthouse, model.ModeDrive, time.Date(2024, 3, 11, 11, 0, 0, 0, time.UTC), Options{})
	if fp.calls != 1 {
		t.Fatalf("expected failing provider to be attempted once, got %d", fp.calls)
	}
	if !res.Fallback || res.Provider != "fallback" {
		t.Fatalf("expected fallback result, got %#v", res)
	}
	if res.Confidence >= 0.5 {
		t.Fatalf("fallback confidence should be low, got %v", res.Confidence)
	}
	if res.TotalMinutes() <= 0 {
		t.Fatalf("fallback must still produce a usable estimate")
	}
}

func TestMatrixPreferredOverHaversine(t *testing.T) {
	cfg := Config{Matrix: map[string]map[string]float64{"office-b": {"court-a": 25}}}
	e := newTestEstimator(t, cfg, nil)
	res := e.Estimate(context.Background(), office, courthouse, model.ModeDrive, time.Date(2024, 3, 11, 11, 0, 0, 0, time.UTC), Options{})
	if res.Provider != "matrix" {
		t.Fatalf("expected matrix provider, got %s", res.Provider)
	}
	// 25 raw minutes with the default 15 percent buffer.
	if res.BaseMinutes != 25*1.15 {
		t.Fatalf("unexpected base minutes %v", res.BaseMinutes)
	}
}

func TestBufferMonotonic(t *testing.T) {
	dep := time.Date(2024, 3, 11, 11, 0, 0, 0, time.UTC)
	e := newTestEstimator(t, Config{}, nil)
	small := e.Estimate(context.Background(), office, courthouse, model.ModeDrive, dep, Options{BufferPercent: 5, SkipCache: true})
	large := e.Estimate(context.Background(), office, courthouse, model.ModeDrive, dep, Options{BufferPercent: 40, SkipCache: true})
	if large.TotalMinutes() < small.TotalMinutes() {
		t.Fatalf("larger buffer decreased travel time: %v < %v", large.TotalMinutes(), small.TotalMinutes())
	}
}

func TestDestinationOverheadDeterministic(t *testing.T) {
	dep := time.Date(2024, 3, 11, 11, 0, 0, 0, time.UTC)
	e := newTestEstimator(t, Config{}, nil)
	res := e.Estimate(context.Background(), office, courthouse, model.ModeDrive, dep, Options{})
	if res.ParkingMinutes != 20 {
		t.Fatalf("scarce parking should cost 20 minutes, got %v", res.ParkingMinutes)
	}
	if res.SecurityMinutes != 10 {
		t.Fatalf("screening minutes should come from location metadata, got %v", res.SecurityMinutes)
	}
	if res.WalkingMinutes != 5 || res.PrepMinutes != e.cfg.PrepMinutes {
		t.Fatalf("courthouse overhead wrong: %#v", res)
	}

	back := e.Estimate(context.Background(), courthouse, office, model.ModeDrive, dep, Options{})
	if back.PrepMinutes != 0 || back.SecurityMinutes != 0 {
		t.Fatalf("office destinations carry no prep or screening: %#v", back)
	}
}

func TestRushHourTraffic(t *testing.T) {
	e := newTestEstimator(t, Config{}, nil)
	noon := e.Estimate(context.Background(), office, courthouse, model.ModeDrive, time.Date(2024, 3, 11, 12, 0, 0, 0, time.UTC), Options{})
	rush := e.Estimate(context.Background(), office, courthouse, model.ModeDrive, time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC), Options{})
	if noon.TrafficMinutes != 0 {
		t.Fatalf("no traffic delay expected at noon, got %v", noon.TrafficMinutes)
	}
	if rush.TrafficMinutes <= 0 {
		t.Fatalf("rush hour must add traffic delay")
	}
}

func TestCacheHitAndLazyEviction(t *testing.T) {
	cfg := Config{Matrix: map[string]map[string]float64{"office-b": {"court-a": 25}}}
	e := newTestEstimator(t, cfg, nil)
	now := time.Date(2024, 3, 11, 11, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return now }

	dep := now
	first := e.Estimate(context.Background(), office, courthouse, model.ModeDrive, dep, Options{})
	if e.CacheSize() != 1 {
		t.Fatalf("expected one cache entry, got %d", e.CacheSize())
	}
	second := e.Estimate(context.Background(), office, courthouse, model.ModeDrive, dep, Options{})
	if second != first {
		t.Fatalf("expected cached result")
	}

	now = now.Add(2 * time.Hour) // past the matrix TTL
	third := e.Estimate(context.Background(), office, courthouse, model.ModeDrive, dep, Options{})
	if third.ExpiresAt.Equal(first.ExpiresAt) {
		t.Fatalf("stale entry should have been evicted and recomputed")
	}
}

func TestRateLimitedProviderSkipped(t *testing.T) {
	cfg := Config{RateLimitPerMinute: 1, Matrix: map[string]map[string]float64{"office-b": {"court-a": 25}}}
	e := newTestEstimator(t, cfg, nil)
	dep := time.Date(2024, 3, 11, 11, 0, 0, 0, time.UTC)
	first := e.Estimate(context.Background(), office, courthouse, model.ModeDrive, dep, Options{SkipCache: true})
	if first.Provider != "matrix" {
		t.Fatalf("first call should hit matrix, got %s", first.Provider)
	}
	second := e.Estimate(context.Background(), office, courthouse, model.ModeDrive, dep, Options{SkipCache: true})
	if second.Provider == "matrix" {
		t.Fatalf("rate limited provider must be skipped")
	}
}

func TestSameLocationIsFree(t *testing.T) {
	e := newTestEstimator(t, Config{}, nil)
	res := e.Estimate(context.Background(), office, office, model.ModeWalk, time.Now(), Options{})
	if res.TotalMinutes() != 0 || res.Confidence != 1 {
		t.Fatalf("same-location travel should be free: %#v", res)
	}
}

func TestFindOptimalDeparture(t *testing.T) {
	cfg := Config{
		Matrix:               map[string]map[string]float64{"office-b": {"court-a": 30}},
		DepartureStepMinutes: 15,
		BufferPercent:        10,
	}
	e := newTestEstimator(t, cfg, nil)
	arrival := time.Date(2024, 3, 11, 14, 0, 0, 0, time.UTC)
	dep, res, ok := e.FindOptimalDeparture(context.Background(), office, courthouse, arrival, model.ModeDrive, 4*time.Hour)
	if !ok {
		t.Fatalf("expected a feasible departure")
	}
	arrive := dep.Add(time.Duration(res.TotalMinutes() * float64(time.Minute)))
	if arrive.After(arrival) {
		t.Fatalf("departure %v arrives late at %v", dep, arrive)
	}
	// A later candidate step must not be feasible.
	lateArrive := dep.Add(15 * time.Minute).Add(time.Duration(res.TotalMinutes() * float64(time.Minute)))
	if !lateArrive.After(arrival) {
		t.Fatalf("a later departure was feasible, search was not optimal")
	}
}

func TestFindOptimalDepartureInfeasible(t *testing.T) {
	cfg := Config{
		Matrix:               map[string]map[string]float64{"office-b": {"court-a": 600}},
		DepartureStepMinutes: 30,
	}
	e := newTestEstimator(t, cfg, nil)
	arrival := time.Date(2024, 3, 11, 14, 0, 0, 0, time.UTC)
	_, _, ok := e.FindOptimalDeparture(context.Background(), office, courthouse, arrival, model.ModeDrive, time.Hour)
	if ok {
		t.Fatalf("expected no feasible departure inside a one hour window")
	}
}
