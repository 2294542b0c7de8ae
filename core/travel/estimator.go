package travel

import (
	"context"
	"time"

	"github.com/courtflow/courtsched/core/events"
	"github.com/courtflow/courtsched/core/logger"
	"github.com/courtflow/courtsched/core/model"
	"github.com/courtflow/courtsched/internal/eventbus"
)

// Options overrides per-call estimation parameters. Zero values fall back to
// the configured defaults.
type Options struct {
	BufferPercent float64
	PrepMinutes   float64
	SkipCache     bool
}

// Estimator produces door-to-seat travel estimates through an ordered
// provider chain. The chain always ends with FallbackProvider, so Estimate
// never fails; at worst it returns a low-confidence flagged result.
type Estimator struct {
	cfg       Config
	providers []Provider
	cache     *resultCache
	limiter   *rateLimiter
	log       logger.Logger
	bus       eventbus.EventBus
	now       func() time.Time
}

// NewEstimator creates an estimator. A nil provider list installs the
// default chain: matrix (when configured), haversine, conservative fallback.
func NewEstimator(cfg Config, providers []Provider, log logger.Logger, bus eventbus.EventBus) *Estimator {
	cfg.SetDefaults()
	if providers == nil {
		if len(cfg.Matrix) > 0 {
			providers = append(providers, NewMatrixProvider(cfg.Matrix))
		}
		providers = append(providers, HaversineProvider{})
	}
	terminal := false
	for _, p := range providers {
		if _, ok := p.(FallbackProvider); ok {
			terminal = true
		}
	}
	if !terminal {
		providers = append(providers, FallbackProvider{})
	}
	return &Estimator{
		cfg:       cfg,
		providers: providers,
		cache:     newResultCache(),
		limiter:   newRateLimiter(cfg.RateLimitPerMinute),
		log:       log,
		bus:       bus,
		now:       time.Now,
	}
}

// trafficFactor models rush-hour slowdown for road-bound modes. It depends
// only on the departure hour, never on the provider.
func trafficFactor(departure time.Time, mode model.TravelMode) float64 {
	if mode == model.ModeWalk {
		return 1
	}
	switch h := departure.Hour(); {
	case h >= 7 && h < 10:
		return 1.4
	case h >= 16 && h < 19:
		return 1.5
	default:
		return 1
	}
}

// destinationOverhead derives the deterministic arrival overhead from the
// destination metadata.
func (e *Estimator) destinationOverhead(dest model.Location, mode model.TravelMode, prep float64) (parking, security, walking, prepOut float64) {
	if mode == model.ModeDrive && dest.Building != model.BuildingRemote {
		switch dest.Parking {
		case model.ParkingScarce:
			parking = 20
		case model.ParkingLimited:
			parking = 10
		default:
			parking = 5
		}
	}
	security = float64(dest.ScreeningMinutes)
	if security == 0 && dest.Building == model.BuildingCourthouse {
		security = 15
	}
	switch dest.Building {
	case model.BuildingCourthouse:
		walking = 5
		prepOut = prep
	case model.BuildingOffice:
		walking = 3
	}
	return parking, security, walking, prepOut
}

// Estimate returns the travel estimate for the route. Provider failures
// degrade confidence and move down the chain; they never surface as errors.
func (e *Estimator) Estimate(ctx context.Context, origin, dest model.Location, mode model.TravelMode, departure time.Time, opts Options) model.TravelResult {
	buffer := opts.BufferPercent
	if buffer == 0 {
		buffer = e.cfg.BufferPercent
	}
	prep := opts.PrepMinutes
	if prep == 0 {
		prep = e.cfg.PrepMinutes
	}

	if origin.ID == dest.ID {
		return model.TravelResult{
			OriginID: origin.ID, DestinationID: dest.ID, Mode: mode,
			Confidence: 1, Provider: "same_location",
			ExpiresAt: e.now().Add(time.Hour),
		}
	}

	key := cacheKey(origin.ID, dest.ID, mode, departure)
	if !opts.SkipCache {
		if cached, ok := e.cache.get(key, e.now()); ok {
			cacheHits.Inc()
			return cached
		}
	}

	est, provider := e.attemptChain(ctx, origin, dest, mode, departure)

	base := est.Minutes * (1 + buffer/100)
	traffic := est.Minutes * (trafficFactor(departure, mode) - 1)
	parking, security, walking, prepMin := e.destinationOverhead(dest, mode, prep)

	fallback := provider == nil || provider.Name() == "fallback"
	name := "fallback"
	if provider != nil {
		name = provider.Name()
	}
	res := model.TravelResult{
		OriginID:        origin.ID,
		DestinationID:   dest.ID,
		Mode:            mode,
		DistanceKm:      est.DistanceKm,
		BaseMinutes:     base,
		TrafficMinutes:  traffic,
		ParkingMinutes:  parking,
		SecurityMinutes: security,
		WalkingMinutes:  walking,
		PrepMinutes:     prepMin,
		Confidence:      est.Confidence,
		Fallback:        fallback,
		Provider:        name,
		ExpiresAt:       e.now().Add(est.TTL),
	}
	e.cache.put(key, res)
	return res
}

// attemptChain walks the provider chain and returns the first successful
// estimate. The terminal fallback provider guarantees a result.
func (e *Estimator) attemptChain(ctx context.Context, origin, dest model.Location, mode model.TravelMode, departure time.Time) (Estimate, Provider) {
	timeout := time.Duration(e.cfg.ProviderTimeoutSeconds) * time.Second
	for _, p := range e.providers {
		if !e.limiter.allow(p.Name(), e.now()) {
			providerAttempts.WithLabelValues(p.Name(), "rate_limited").Inc()
			e.log.Debugf("provider %s rate limited, trying next", p.Name())
			continue
		}
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		est, err := p.Attempt(attemptCtx, origin, dest, mode, departure)
		cancel()
		if err != nil {
			providerAttempts.WithLabelValues(p.Name(), "error").Inc()
			e.log.Debugf("provider %s failed for %s->%s: %v", p.Name(), origin.ID, dest.ID, err)
			continue
		}
		providerAttempts.WithLabelValues(p.Name(), "ok").Inc()
		if p.Name() == "fallback" {
			fallbackEstimates.Inc()
			if e.bus != nil {
				e.bus.Publish(events.TravelFallbackEvent{OriginID: origin.ID, DestinationID: dest.ID, Mode: mode})
			}
			e.log.Warnf("using fallback travel estimate for %s->%s", origin.ID, dest.ID)
		}
		return est, p
	}
	// Unreachable with a well-formed chain; keep the call safe anyway.
	est, _ := FallbackProvider{}.Attempt(ctx, origin, dest, mode, departure)
	return est, nil
}

// FindOptimalDeparture scans candidate departures across the window and
// returns the latest one that still arrives by requiredArrival. Ties are
// broken by higher confidence, then later departure. ok is false when no
// candidate in the window arrives on time.
func (e *Estimator) FindOptimalDeparture(ctx context.Context, origin, dest model.Location, requiredArrival time.Time, mode model.TravelMode, window time.Duration) (time.Time, model.TravelResult, bool) {
	step := time.Duration(e.cfg.DepartureStepMinutes) * time.Minute
	var (
		bestDep time.Time
		bestRes model.TravelResult
		found   bool
	)
	for dep := requiredArrival.Add(-window); !dep.After(requiredArrival); dep = dep.Add(step) {
		res := e.Estimate(ctx, origin, dest, mode, dep, Options{})
		arrival := dep.Add(time.Duration(res.TotalMinutes() * float64(time.Minute)))
		if arrival.After(requiredArrival) {
			continue
		}
		switch {
		case !found,
			dep.After(bestDep),
			dep.Equal(bestDep) && res.Confidence > bestRes.Confidence:
			bestDep, bestRes, found = dep, res, true
		}
	}
	return bestDep, bestRes, found
}

// CacheSize returns the number of live cache entries. Intended for tests and
// diagnostics.
func (e *Estimator) CacheSize() int { return e.cache.len() }
