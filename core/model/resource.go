package model

import (
	"fmt"
	"time"
)

// ResourceKind identifies a class of scheduling resource.
type ResourceKind string

const (
	ResourceJudge       ResourceKind = "judge"
	ResourceCourtroom   ResourceKind = "courtroom"
	ResourceReporter    ResourceKind = "reporter"
	ResourceAttorney    ResourceKind = "attorney"
	ResourceInterpreter ResourceKind = "interpreter"
	ResourceEquipment   ResourceKind = "equipment"
)

// Shareable reports whether two events may hold the resource at the same
// time. Equipment can be pooled; people and rooms cannot.
func (k ResourceKind) Shareable() bool { return k == ResourceEquipment }

// Criticality expresses how strongly an event needs a resource.
type Criticality string

const (
	CriticalityRequired  Criticality = "required"
	CriticalityPreferred Criticality = "preferred"
	CriticalityOptional  Criticality = "optional"
)

// ResourceRequirement binds an event to a concrete resource for a padded
// window around the event itself.
type ResourceRequirement struct {
	Kind           ResourceKind `json:"kind"`
	ResourceID     string       `json:"resource_id"`
	SetupMinutes   int          `json:"setup_minutes"`
	CleanupMinutes int          `json:"cleanup_minutes"`
	Criticality    Criticality  `json:"criticality"`
}

// Key returns the identity of the underlying resource, shared by all
// requirements pointing at the same physical resource.
func (r ResourceRequirement) Key() string {
	return fmt.Sprintf("%s/%s", r.Kind, r.ResourceID)
}

// PaddedWindow returns the event window extended by setup and cleanup time.
func (r ResourceRequirement) PaddedWindow(w TimeRange) TimeRange {
	return TimeRange{
		Start: w.Start.Add(-time.Duration(r.SetupMinutes) * time.Minute),
		End:   w.End.Add(time.Duration(r.CleanupMinutes) * time.Minute),
	}
}

// DependencyRule declares that requiring a resource kind implies further
// requirements. Rules are data loaded from configuration, e.g. a judge
// implies a courtroom and a reporter.
type DependencyRule struct {
	Kind     ResourceKind   `json:"kind"`
	Requires []ResourceKind `json:"requires"`
}

// ResourceCatalog holds the known resources and the declarative dependency
// rules between resource kinds. It is constructed once and passed by
// reference into the engine components.
type ResourceCatalog struct {
	rules map[ResourceKind][]ResourceKind
}

// NewResourceCatalog builds a catalog from dependency rules.
func NewResourceCatalog(rules []DependencyRule) *ResourceCatalog {
	m := make(map[ResourceKind][]ResourceKind, len(rules))
	for _, r := range rules {
		m[r.Kind] = append(m[r.Kind], r.Requires...)
	}
	return &ResourceCatalog{rules: m}
}

// Dependencies returns the resource kinds implied by the given kind.
func (c *ResourceCatalog) Dependencies(k ResourceKind) []ResourceKind {
	deps := c.rules[k]
	cp := make([]ResourceKind, len(deps))
	copy(cp, deps)
	return cp
}

// MissingDependencies returns the kinds required by the rules but absent
// from the given requirement list.
func (c *ResourceCatalog) MissingDependencies(reqs []ResourceRequirement) []ResourceKind {
	present := make(map[ResourceKind]bool, len(reqs))
	for _, r := range reqs {
		present[r.Kind] = true
	}
	var missing []ResourceKind
	seen := make(map[ResourceKind]bool)
	for _, r := range reqs {
		for _, dep := range c.rules[r.Kind] {
			if !present[dep] && !seen[dep] {
				missing = append(missing, dep)
				seen[dep] = true
			}
		}
	}
	return missing
}
