package detect

import (
	"fmt"
	"time"

	"github.com/courtflow/courtsched/core/model"
)

// Config defines conflict detection settings.
type Config struct {
	// OpenHour and CloseHour bound the business day (local time, 24h).
	OpenHour  int `json:"open_hour"`
	CloseHour int `json:"close_hour"`
	// WeekendsClosed treats Saturday and Sunday as closed.
	WeekendsClosed bool `json:"weekends_closed"`
	// Closures lists court closure dates in 2006-01-02 form.
	Closures []string `json:"closures"`
	// TravelBufferMinutes is the margin added on top of the estimated
	// transit time between consecutive events.
	TravelBufferMinutes float64 `json:"travel_buffer_minutes"`
	// CrossSourceToleranceMinutes is the allowed start-time drift between
	// two records of the same matter from different sources.
	CrossSourceToleranceMinutes float64 `json:"cross_source_tolerance_minutes"`
	// ResourceRules declares which resource kinds imply further kinds. An
	// event missing an implied kind is flagged as a resource conflict.
	ResourceRules []model.DependencyRule `json:"resource_rules"`
}

// SetDefaults fills unset fields with working values.
func (c *Config) SetDefaults() {
	if c.OpenHour == 0 {
		c.OpenHour = 8
	}
	if c.CloseHour == 0 {
		c.CloseHour = 18
	}
	if c.TravelBufferMinutes == 0 {
		c.TravelBufferMinutes = 15
	}
	if c.CrossSourceToleranceMinutes == 0 {
		c.CrossSourceToleranceMinutes = 5
	}
	if c.ResourceRules == nil {
		c.ResourceRules = []model.DependencyRule{
			{Kind: model.ResourceJudge, Requires: []model.ResourceKind{model.ResourceCourtroom, model.ResourceReporter}},
		}
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.OpenHour < 0 || c.OpenHour > 23 || c.CloseHour < 1 || c.CloseHour > 24 {
		return fmt.Errorf("business hours out of range: %d-%d", c.OpenHour, c.CloseHour)
	}
	if c.OpenHour >= c.CloseHour {
		return fmt.Errorf("open_hour %d must precede close_hour %d", c.OpenHour, c.CloseHour)
	}
	for _, d := range c.Closures {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return fmt.Errorf("invalid closure date %q: %w", d, err)
		}
	}
	return nil
}

// closureSet returns the parsed closure dates keyed by date string.
func (c *Config) closureSet() map[string]bool {
	m := make(map[string]bool, len(c.Closures))
	for _, d := range c.Closures {
		m[d] = true
	}
	return m
}
