package model

import "fmt"

// Schedule is a value object: an assignment of events to slots plus derived
// diagnostics. Optimizers never mutate a schedule in place; every candidate
// is newly constructed or cloned.
type Schedule struct {
	// Assignments maps event id to slot id.
	Assignments map[string]string `json:"assignments"`
	// Unassigned lists events no compatible slot could take.
	Unassigned []string `json:"unassigned"`

	Conflicts          []Conflict `json:"conflicts,omitempty"`
	TotalTravelMinutes float64    `json:"total_travel_minutes"`
	Efficiency         float64    `json:"efficiency"`
	Violations         []string   `json:"violations,omitempty"`
	Score              float64    `json:"score"`
}

// NewSchedule returns an empty schedule.
func NewSchedule() *Schedule {
	return &Schedule{Assignments: make(map[string]string)}
}

// Clone returns a deep copy of the schedule.
func (s *Schedule) Clone() *Schedule {
	cp := &Schedule{
		Assignments:        make(map[string]string, len(s.Assignments)),
		Unassigned:         append([]string(nil), s.Unassigned...),
		Conflicts:          append([]Conflict(nil), s.Conflicts...),
		TotalTravelMinutes: s.TotalTravelMinutes,
		Efficiency:         s.Efficiency,
		Violations:         append([]string(nil), s.Violations...),
		Score:              s.Score,
	}
	for k, v := range s.Assignments {
		cp.Assignments[k] = v
	}
	return cp
}

// IsValid reports whether the schedule violates no hard constraint. Invalid
// schedules are still returned by the optimizer but must be treated as
// non-final by callers.
func (s *Schedule) IsValid() bool { return len(s.Violations) == 0 }

// AssignmentRate returns the fraction of events that received a slot.
func (s *Schedule) AssignmentRate() float64 {
	total := len(s.Assignments) + len(s.Unassigned)
	if total == 0 {
		return 1
	}
	return float64(len(s.Assignments)) / float64(total)
}

// CheckResourceWindows appends a violation for every pair of assigned events
// that hold the same non-shareable resource over overlapping padded windows.
// The events map must contain every assigned event.
func (s *Schedule) CheckResourceWindows(events map[string]Event) {
	type usage struct {
		eventID string
		window  TimeRange
	}
	byKey := make(map[string][]usage)
	for id := range s.Assignments {
		ev, ok := events[id]
		if !ok {
			continue
		}
		for _, r := range ev.Resources {
			if r.Kind.Shareable() {
				continue
			}
			byKey[r.Key()] = append(byKey[r.Key()], usage{id, r.PaddedWindow(ev.Window)})
		}
	}
	for key, uses := range byKey {
		for i := 0; i < len(uses); i++ {
			for j := i + 1; j < len(uses); j++ {
				if uses[i].window.Overlaps(uses[j].window) {
					s.Violations = append(s.Violations, fmt.Sprintf(
						"resource %s double-held by %s and %s", key, uses[i].eventID, uses[j].eventID))
				}
			}
		}
	}
}

// ConstraintClass classifies a scheduling constraint.
type ConstraintClass string

const (
	ConstraintHard       ConstraintClass = "hard"
	ConstraintSoft       ConstraintClass = "soft"
	ConstraintPreference ConstraintClass = "preference"
)

// Constraint is a predicate over a schedule. Hard constraint violations make
// a schedule invalid; soft and preference violations only penalize its score.
type Constraint struct {
	ID     string
	Class  ConstraintClass
	Weight float64
	Check  func(*Schedule) bool
}
