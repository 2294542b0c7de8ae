package optimize

import (
	"context"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/courtflow/courtsched/core/detect"
	"github.com/courtflow/courtsched/core/model"
	"github.com/courtflow/courtsched/core/travel"
)

// Problem is the immutable input of one optimization run.
type Problem struct {
	Events      []model.Event
	Slots       []model.Slot
	Locations   map[string]model.Location
	Constraints []model.Constraint
	// BlockedSlots are excluded from assignment, typically after a
	// block-scheduling resolution.
	BlockedSlots map[string]bool
}

func (p Problem) slotByID(id string) (model.Slot, bool) {
	for _, s := range p.Slots {
		if s.ID == id {
			return s, true
		}
	}
	return model.Slot{}, false
}

// severityPenalty weights a conflict by how bad it is.
func severityPenalty(s model.Severity) float64 {
	switch s {
	case model.SeverityCritical:
		return 10
	case model.SeverityHigh:
		return 5
	case model.SeverityMedium:
		return 2
	default:
		return 1
	}
}

// evaluator derives the diagnostics of a candidate schedule: it materializes
// the assignment, re-runs conflict detection and travel estimation and
// computes the weighted objective score.
type evaluator struct {
	detector  *detect.Detector
	estimator detect.TravelEstimator
	objective Objective
}

// materialize returns each assigned event moved into its slot's window and
// location. Unassigned events keep their requested window.
func (e *evaluator) materialize(p Problem, assignments map[string]string) map[string]model.Event {
	out := make(map[string]model.Event, len(p.Events))
	for _, ev := range p.Events {
		if slotID, ok := assignments[ev.ID]; ok {
			if slot, found := p.slotByID(slotID); found {
				moved := ev
				moved.Window = model.TimeRange{Start: slot.Window.Start, End: slot.Window.Start.Add(ev.Window.Duration())}
				if slot.LocationID != "" {
					moved.LocationID = slot.LocationID
				}
				out[ev.ID] = moved
				continue
			}
		}
		out[ev.ID] = ev
	}
	return out
}

// evaluate fills a schedule's diagnostics and score in place.
func (e *evaluator) evaluate(ctx context.Context, p Problem, s *model.Schedule) {
	events := e.materialize(p, s.Assignments)

	assigned := make([]model.Event, 0, len(s.Assignments))
	for id := range s.Assignments {
		assigned = append(assigned, events[id])
	}
	sort.Slice(assigned, func(i, j int) bool { return assigned[i].ID < assigned[j].ID })

	if e.detector != nil {
		s.Conflicts = e.detector.Detect(ctx, detect.Snapshot{Events: assigned, Locations: p.Locations})
	}
	s.TotalTravelMinutes = e.totalTravel(ctx, p, assigned)

	s.Violations = nil
	s.CheckResourceWindows(events)
	penalty := 0.0
	for _, c := range p.Constraints {
		if c.Check == nil || c.Check(s) {
			continue
		}
		if c.Class == model.ConstraintHard {
			s.Violations = append(s.Violations, "hard constraint violated: "+c.ID)
			continue
		}
		penalty += c.Weight
	}

	conflictPenalty := 0.0
	for _, c := range s.Conflicts {
		conflictPenalty += severityPenalty(c.Severity)
	}
	s.Efficiency = s.AssignmentRate()*100 - conflictPenalty

	cost := 0.0
	for _, slotID := range s.Assignments {
		if slot, ok := p.slotByID(slotID); ok {
			cost += slot.Cost
		}
	}

	s.Score = e.objective.Efficiency*s.Efficiency -
		e.objective.Conflicts*conflictPenalty -
		e.objective.Travel*s.TotalTravelMinutes -
		e.objective.Cost*cost -
		e.objective.Balance*judgeImbalance(assigned) -
		penalty
}

// judgeImbalance measures workload spread as the standard deviation of
// events per judge.
func judgeImbalance(events []model.Event) float64 {
	counts := make(map[string]float64)
	for _, ev := range events {
		if j := ev.Judge(); j != "" {
			counts[j]++
		}
	}
	if len(counts) < 2 {
		return 0
	}
	vals := make([]float64, 0, len(counts))
	for _, c := range counts {
		vals = append(vals, c)
	}
	return stat.StdDev(vals, nil)
}

// totalTravel sums the estimated transit between consecutive events of each
// participant.
func (e *evaluator) totalTravel(ctx context.Context, p Problem, events []model.Event) float64 {
	if e.estimator == nil {
		return 0
	}
	byParticipant := make(map[string][]model.Event)
	for _, ev := range events {
		for _, part := range ev.Participants {
			byParticipant[part] = append(byParticipant[part], ev)
		}
	}
	names := make([]string, 0, len(byParticipant))
	for n := range byParticipant {
		names = append(names, n)
	}
	sort.Strings(names)

	loc := func(id string) model.Location {
		if l, ok := p.Locations[id]; ok {
			return l
		}
		return model.Location{ID: id}
	}

	total := 0.0
	for _, n := range names {
		evs := byParticipant[n]
		sort.Slice(evs, func(i, j int) bool { return evs[i].Window.Start.Before(evs[j].Window.Start) })
		for i := 0; i+1 < len(evs); i++ {
			if evs[i].LocationID == evs[i+1].LocationID {
				continue
			}
			res := e.estimator.Estimate(ctx, loc(evs[i].LocationID), loc(evs[i+1].LocationID),
				model.ModeDrive, evs[i].Window.End, travel.Options{})
			total += res.TotalMinutes()
		}
	}
	return total
}
