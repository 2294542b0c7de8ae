package travel

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/courtflow/courtsched/core/model"
)

// ErrUnavailable indicates a provider cannot serve the request right now.
var ErrUnavailable = errors.New("travel: provider unavailable")

// ErrRateLimited indicates the provider's rate limit budget is exhausted.
var ErrRateLimited = errors.New("travel: provider rate limited")

// ErrNoRoute indicates the provider has no data for the requested pair.
var ErrNoRoute = errors.New("travel: no route")

// Estimate is a raw provider answer before overhead is applied.
type Estimate struct {
	Minutes    float64
	DistanceKm float64
	Confidence float64
	// TTL bounds how long the estimate may be served from cache.
	TTL time.Duration
}

// Provider produces raw transit estimates. Implementations form an ordered
// chain; an error moves the estimator on to the next provider.
type Provider interface {
	Name() string
	// Attempt returns the raw estimate for the route. It must honor the
	// context deadline.
	Attempt(ctx context.Context, origin, dest model.Location, mode model.TravelMode, departure time.Time) (Estimate, error)
}

// rateLimiter is a minimal sliding-window limiter checked before each
// provider call.
type rateLimiter struct {
	mu      sync.Mutex
	perMin  int
	windows map[string][]time.Time
}

func newRateLimiter(perMinute int) *rateLimiter {
	return &rateLimiter{perMin: perMinute, windows: make(map[string][]time.Time)}
}

// allow records a call for the provider and reports whether it is within
// budget. A zero budget disables limiting.
func (r *rateLimiter) allow(provider string, now time.Time) bool {
	if r.perMin <= 0 {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := now.Add(-time.Minute)
	kept := r.windows[provider][:0]
	for _, t := range r.windows[provider] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= r.perMin {
		r.windows[provider] = kept
		return false
	}
	r.windows[provider] = append(kept, now)
	return true
}

// haversineKm returns the great-circle distance between two locations.
func haversineKm(a, b model.Location) float64 {
	const earthRadiusKm = 6371.0
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// modeSpeedKmh returns the assumed average speed for a travel mode.
func modeSpeedKmh(mode model.TravelMode) float64 {
	switch mode {
	case model.ModeWalk:
		return 5
	case model.ModeTransit:
		return 25
	default:
		return 40
	}
}
