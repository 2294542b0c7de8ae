package travel

import "fmt"

// Config defines travel estimation settings.
type Config struct {
	// BufferPercent inflates raw transit time to absorb uncertainty.
	BufferPercent float64 `json:"buffer_percent"`
	// PrepMinutes is added before any courthouse appearance.
	PrepMinutes float64 `json:"prep_minutes"`
	// ProviderTimeoutSeconds bounds each provider attempt.
	ProviderTimeoutSeconds int `json:"provider_timeout_seconds"`
	// DepartureStepMinutes is the scan resolution of FindOptimalDeparture.
	DepartureStepMinutes int `json:"departure_step_minutes"`
	// Matrix holds known point-to-point drive minutes keyed by origin then
	// destination location id.
	Matrix map[string]map[string]float64 `json:"matrix"`
	// RateLimitPerMinute caps provider calls; zero disables the limit.
	RateLimitPerMinute int `json:"rate_limit_per_minute"`
}

// SetDefaults fills unset fields with working values.
func (c *Config) SetDefaults() {
	if c.BufferPercent == 0 {
		c.BufferPercent = 15
	}
	if c.PrepMinutes == 0 {
		c.PrepMinutes = 10
	}
	if c.ProviderTimeoutSeconds == 0 {
		c.ProviderTimeoutSeconds = 5
	}
	if c.DepartureStepMinutes == 0 {
		c.DepartureStepMinutes = 10
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.BufferPercent < 0 {
		return fmt.Errorf("buffer_percent must not be negative")
	}
	if c.DepartureStepMinutes < 0 {
		return fmt.Errorf("departure_step_minutes must not be negative")
	}
	return nil
}
