package travel

import (
	"context"
	"time"

	"github.com/courtflow/courtsched/core/model"
)

// MatrixProvider serves estimates from a static point-to-point minute matrix
// loaded from configuration. It is the most trusted source when it has data.
type MatrixProvider struct {
	matrix map[string]map[string]float64
}

// NewMatrixProvider builds a provider over the configured minute matrix.
func NewMatrixProvider(matrix map[string]map[string]float64) *MatrixProvider {
	return &MatrixProvider{matrix: matrix}
}

func (p *MatrixProvider) Name() string { return "matrix" }

// Attempt implements Provider. Pairs not present in the matrix yield
// ErrNoRoute so the chain can continue.
func (p *MatrixProvider) Attempt(ctx context.Context, origin, dest model.Location, mode model.TravelMode, departure time.Time) (Estimate, error) {
	if err := ctx.Err(); err != nil {
		return Estimate{}, err
	}
	if mode != model.ModeDrive {
		return Estimate{}, ErrNoRoute
	}
	row, ok := p.matrix[origin.ID]
	if !ok {
		return Estimate{}, ErrNoRoute
	}
	minutes, ok := row[dest.ID]
	if !ok {
		return Estimate{}, ErrNoRoute
	}
	return Estimate{
		Minutes:    minutes,
		DistanceKm: minutes / 60 * modeSpeedKmh(mode),
		Confidence: 0.9,
		TTL:        time.Hour,
	}, nil
}

// HaversineProvider estimates free-flow transit from great-circle distance
// and average mode speed. Traffic delay is added by the estimator.
type HaversineProvider struct{}

func (HaversineProvider) Name() string { return "haversine" }

// Attempt implements Provider. Locations without coordinates yield ErrNoRoute.
func (HaversineProvider) Attempt(ctx context.Context, origin, dest model.Location, mode model.TravelMode, departure time.Time) (Estimate, error) {
	if err := ctx.Err(); err != nil {
		return Estimate{}, err
	}
	if origin.Lat == 0 && origin.Lon == 0 || dest.Lat == 0 && dest.Lon == 0 {
		return Estimate{}, ErrNoRoute
	}
	km := haversineKm(origin, dest)
	minutes := km / modeSpeedKmh(mode) * 60
	return Estimate{
		Minutes:    minutes,
		DistanceKm: km,
		Confidence: 0.7,
		TTL:        30 * time.Minute,
	}, nil
}

// FallbackProvider is the terminal element of every chain. It never fails
// and returns a deliberately conservative low-confidence estimate.
type FallbackProvider struct {
	// DefaultMinutes is used when no distance information exists at all.
	DefaultMinutes float64
}

func (FallbackProvider) Name() string { return "fallback" }

// Attempt implements Provider and always succeeds.
func (p FallbackProvider) Attempt(ctx context.Context, origin, dest model.Location, mode model.TravelMode, departure time.Time) (Estimate, error) {
	minutes := p.DefaultMinutes
	if minutes == 0 {
		minutes = 45
	}
	if (origin.Lat != 0 || origin.Lon != 0) && (dest.Lat != 0 || dest.Lon != 0) {
		km := haversineKm(origin, dest)
		// Conservative: assume the slow end of the mode's speed range.
		if est := km / (modeSpeedKmh(mode) * 0.6) * 60; est > 0 {
			minutes = est
		}
	}
	return Estimate{
		Minutes:    minutes,
		DistanceKm: haversineKm(origin, dest),
		Confidence: 0.3,
		TTL:        10 * time.Minute,
	}, nil
}
