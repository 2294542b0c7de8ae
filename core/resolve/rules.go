package resolve

import (
	"fmt"
	"sort"
	"time"

	"github.com/courtflow/courtsched/core/model"
)

// rule is one compiled entry of the rule table.
type rule struct {
	name        string
	priority    int
	conflict    string
	minSeverity model.Severity
	hasMin      bool
	strategy    Strategy
}

// matches reports whether the rule applies to the conflict.
func (r rule) matches(c model.Conflict) bool {
	if r.conflict != "" && r.conflict != c.Type.String() {
		return false
	}
	if r.hasMin && c.Severity < r.minSeverity {
		return false
	}
	return true
}

func severityByName(name string) (model.Severity, error) {
	for s := model.SeverityLow; s <= model.SeverityCritical; s++ {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown severity %q", name)
}

// buildRules compiles the configured rule table, ordered by ascending
// priority. Unknown strategy or severity names fail here.
func buildRules(cfg Config, notifier Notifier) ([]rule, error) {
	h := hours{open: cfg.OpenHour, close: cfg.CloseHour}
	margin := time.Duration(cfg.BufferMarginMinutes) * time.Minute

	rules := make([]rule, 0, len(cfg.Rules))
	for _, rc := range cfg.Rules {
		if rc.Disabled {
			continue
		}
		strat, err := buildStrategy(rc.Strategy, h, margin, notifier)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", rc.Name, err)
		}
		r := rule{
			name:     rc.Name,
			priority: rc.Priority,
			conflict: rc.Conflict,
			strategy: strat,
		}
		if rc.MinSeverity != "" {
			sev, err := severityByName(rc.MinSeverity)
			if err != nil {
				return nil, fmt.Errorf("rule %q: %w", rc.Name, err)
			}
			r.minSeverity, r.hasMin = sev, true
		}
		rules = append(rules, r)
	}
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].priority < rules[j].priority })
	return rules, nil
}
