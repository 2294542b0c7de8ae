package resolve

import "fmt"

// RuleConfig declares one entry of the rule table.
type RuleConfig struct {
	Name     string `json:"name"`
	Priority int    `json:"priority"`
	// Conflict filters by conflict type name ("overlap", "travel_time",
	// ...). Empty matches every type.
	Conflict string `json:"conflict"`
	// MinSeverity filters by severity name; empty matches every severity.
	MinSeverity string `json:"min_severity"`
	Strategy    string `json:"strategy"`
	Disabled    bool   `json:"disabled"`
}

// AuditConfig selects the audit store backend.
type AuditConfig struct {
	// Store is one of "memory", "jsonl", "rotating", "sqlite".
	Store string `json:"store"`
	Path  string `json:"path"`

	// Rotation settings, used by the rotating store only.
	MaxSizeMB  int `json:"max_size_mb"`
	MaxBackups int `json:"max_backups"`
	MaxAgeDays int `json:"max_age_days"`
}

// Config defines resolver settings.
type Config struct {
	Rules []RuleConfig `json:"rules"`
	Audit AuditConfig  `json:"audit"`

	// Business hours bound every automatic reschedule.
	OpenHour  int `json:"open_hour"`
	CloseHour int `json:"close_hour"`

	// BufferMarginMinutes is added on top of the travel deficit by the
	// buffer-time strategy.
	BufferMarginMinutes float64 `json:"buffer_margin_minutes"`

	// Actor is recorded on every audit entry produced by this resolver.
	Actor string `json:"actor"`
}

// DefaultRules returns the standard rule table, ordered by priority.
func DefaultRules() []RuleConfig {
	return []RuleConfig{
		{Name: "judge-contention", Priority: 10, Conflict: "judge_unavailable", Strategy: StrategyPreferCourt},
		{Name: "double-booking", Priority: 20, Conflict: "double_booking", Strategy: StrategyAutoReschedule},
		{Name: "travel-shortfall", Priority: 30, Conflict: "travel_time", Strategy: StrategyBufferTime},
		{Name: "closure", Priority: 40, Conflict: "closure", Strategy: StrategyAutoReschedule},
		{Name: "after-hours", Priority: 50, Conflict: "business_hours", Strategy: StrategyAutoReschedule},
		{Name: "attorney-contention", Priority: 60, Conflict: "attorney_unavailable", Strategy: StrategyPreferRecent},
		{Name: "room-contention", Priority: 70, Conflict: "resource", Strategy: StrategyBlockSlot},
		{Name: "source-drift", Priority: 80, Conflict: "cross_source", Strategy: StrategyNotifyOnly},
		{Name: "severe-overlap", Priority: 90, Conflict: "overlap", MinSeverity: "high", Strategy: StrategyAutoReschedule},
		{Name: "minor-overlap", Priority: 100, Conflict: "overlap", Strategy: StrategyNotifyOnly},
	}
}

// SetDefaults fills unset fields with working values.
func (c *Config) SetDefaults() {
	if len(c.Rules) == 0 {
		c.Rules = DefaultRules()
	}
	if c.Audit.Store == "" {
		c.Audit.Store = "memory"
	}
	if c.OpenHour == 0 {
		c.OpenHour = 8
	}
	if c.CloseHour == 0 {
		c.CloseHour = 18
	}
	if c.BufferMarginMinutes == 0 {
		c.BufferMarginMinutes = 10
	}
	if c.Actor == "" {
		c.Actor = "resolver"
	}
}

// Validate checks the configuration. Unknown strategy names are rejected
// here so a bad rule table fails at startup, not at resolution time.
func (c *Config) Validate() error {
	if c.OpenHour < 0 || c.CloseHour > 24 || c.OpenHour >= c.CloseHour {
		return fmt.Errorf("invalid business hours %d..%d", c.OpenHour, c.CloseHour)
	}
	switch c.Audit.Store {
	case "", "memory", "jsonl", "rotating", "sqlite":
	default:
		return fmt.Errorf("unknown audit store %q", c.Audit.Store)
	}
	if (c.Audit.Store == "jsonl" || c.Audit.Store == "rotating" || c.Audit.Store == "sqlite") && c.Audit.Path == "" {
		return fmt.Errorf("audit store %q requires a path", c.Audit.Store)
	}
	for _, r := range c.Rules {
		if !knownStrategy(r.Strategy) {
			return fmt.Errorf("rule %q: %w: %q", r.Name, ErrUnknownStrategy, r.Strategy)
		}
	}
	return nil
}
