package optimize

import (
	"context"
	"math"
	"sort"

	"github.com/courtflow/courtsched/core/model"
)

// GreedyOptimizer assigns events to slots in a single best-fit pass. Events
// are processed in priority order; for each one the structurally compatible
// slots are scored and the best is taken. The weights can be tuned.
type GreedyOptimizer struct {
	TimeWeight     float64
	LocationWeight float64
	ResourceWeight float64
	CostWeight     float64
	TravelWeight   float64
	PrefWeight     float64

	// TimeToleranceHours bounds slot compatibility around the requested
	// start time.
	TimeToleranceHours float64
}

// NewGreedyOptimizer returns a greedy optimizer with sensible default weights.
func NewGreedyOptimizer() *GreedyOptimizer {
	return &GreedyOptimizer{
		TimeWeight:         0.4,
		LocationWeight:     0.2,
		ResourceWeight:     0.2,
		CostWeight:         0.1,
		TravelWeight:       0.1,
		PrefWeight:         0.1,
		TimeToleranceHours: 48,
	}
}

// compatible reports whether the slot can structurally take the event:
// remaining capacity, fitting duration, time proximity and location.
func (g *GreedyOptimizer) compatible(ev model.Event, slot model.Slot, remaining map[string]int, blocked map[string]bool) bool {
	if blocked[slot.ID] {
		return false
	}
	if remaining[slot.ID] <= 0 {
		return false
	}
	if !slot.Fits(ev) {
		return false
	}
	proximity := math.Abs(slot.Window.Start.Sub(ev.Window.Start).Hours())
	if proximity > g.TimeToleranceHours {
		return false
	}
	if ev.LocationID != "" && slot.LocationID != "" && ev.LocationID != slot.LocationID {
		return false
	}
	return true
}

// score rates a compatible slot for the event. Higher is better.
func (g *GreedyOptimizer) score(ev model.Event, slot model.Slot) float64 {
	// Time preference decays with distance from the requested start.
	hours := math.Abs(slot.Window.Start.Sub(ev.Window.Start).Hours())
	timeScore := math.Exp(-hours / 12.0)

	locScore := 0.5
	if ev.LocationID == "" || slot.LocationID == "" || ev.LocationID == slot.LocationID {
		locScore = 1
	}

	resScore := 1.0
	if len(ev.Resources) > 0 {
		have := 0
		for _, r := range ev.Resources {
			if slot.HasResource(r.Key()) {
				have++
			}
		}
		resScore = float64(have) / float64(len(ev.Resources))
	}

	travelScore := 1.0
	if ev.LocationID != "" && slot.LocationID != "" && ev.LocationID != slot.LocationID {
		travelScore = 0
	}

	return timeScore*g.TimeWeight +
		locScore*g.LocationWeight +
		resScore*g.ResourceWeight +
		travelScore*g.TravelWeight +
		slot.Preference*g.PrefWeight -
		slot.Cost*g.CostWeight
}

// Optimize implements the greedy assignment. Unassignable events are
// reported in the schedule, never dropped. The slot capacity counters are
// owned exclusively by this run.
func (g *GreedyOptimizer) Optimize(ctx context.Context, p Problem) *model.Schedule {
	s := model.NewSchedule()

	ordered := append([]model.Event(nil), p.Events...)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Category.Priority() != b.Category.Priority() {
			return a.Category.Priority() > b.Category.Priority()
		}
		if !a.Window.Start.Equal(b.Window.Start) {
			return a.Window.Start.Before(b.Window.Start)
		}
		return a.ID < b.ID
	})

	remaining := make(map[string]int, len(p.Slots))
	for _, slot := range p.Slots {
		remaining[slot.ID] = slot.Capacity
	}

	for _, ev := range ordered {
		if ctx.Err() != nil {
			// Cooperative cancellation: everything not yet placed is
			// reported unassigned.
			s.Unassigned = append(s.Unassigned, ev.ID)
			continue
		}
		bestIdx := -1
		bestScore := math.Inf(-1)
		for i, slot := range p.Slots {
			if !g.compatible(ev, slot, remaining, p.BlockedSlots) {
				continue
			}
			if sc := g.score(ev, slot); sc > bestScore {
				bestScore, bestIdx = sc, i
			}
		}
		if bestIdx < 0 {
			s.Unassigned = append(s.Unassigned, ev.ID)
			continue
		}
		slot := p.Slots[bestIdx]
		s.Assignments[ev.ID] = slot.ID
		remaining[slot.ID]--
	}
	return s
}

// SuggestSlots scores the currently empty compatible slots for a new event
// against a fixed existing assignment and returns the best k slot ids in
// descending score order. No re-optimization is performed.
func (g *GreedyOptimizer) SuggestSlots(ev model.Event, p Problem, existing *model.Schedule, k int) []string {
	used := make(map[string]int)
	if existing != nil {
		for _, slotID := range existing.Assignments {
			used[slotID]++
		}
	}
	remaining := make(map[string]int, len(p.Slots))
	for _, slot := range p.Slots {
		remaining[slot.ID] = slot.Capacity - used[slot.ID]
	}

	type scored struct {
		id    string
		score float64
	}
	var candidates []scored
	for _, slot := range p.Slots {
		if used[slot.ID] > 0 {
			continue
		}
		if !g.compatible(ev, slot, remaining, p.BlockedSlots) {
			continue
		}
		candidates = append(candidates, scored{slot.ID, g.score(ev, slot)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].id < candidates[j].id
	})
	if k > 0 && len(candidates) > k {
		candidates = candidates[:k]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.id
	}
	return out
}

// dropIncompatible is used by the genetic repair step: it removes
// assignments that exceed slot capacity or pair incompatible events and
// slots, moving those events to the unassigned list.
func (g *GreedyOptimizer) dropIncompatible(p Problem, s *model.Schedule) {
	remaining := make(map[string]int, len(p.Slots))
	for _, slot := range p.Slots {
		remaining[slot.ID] = slot.Capacity
	}
	events := make(map[string]model.Event, len(p.Events))
	ids := make([]string, 0, len(p.Events))
	for _, ev := range p.Events {
		events[ev.ID] = ev
		ids = append(ids, ev.ID)
	}
	sort.Strings(ids)

	s.Unassigned = nil
	for _, id := range ids {
		slotID, ok := s.Assignments[id]
		if !ok {
			s.Unassigned = append(s.Unassigned, id)
			continue
		}
		slot, found := p.slotByID(slotID)
		if !found || !g.compatible(events[id], slot, remaining, p.BlockedSlots) {
			delete(s.Assignments, id)
			s.Unassigned = append(s.Unassigned, id)
			continue
		}
		remaining[slotID]--
	}
}
