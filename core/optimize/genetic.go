package optimize

import (
	"context"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/courtflow/courtsched/core/model"
)

// GeneticOptimizer runs a population search over assignment maps. The random
// generator is passed in explicitly so runs are reproducible under a fixed
// seed.
type GeneticOptimizer struct {
	PopulationSize int
	Generations    int
	MutationRate   float64
	TournamentK    int
	Elites         int

	greedy *GreedyOptimizer
}

// NewGeneticOptimizer returns a population search with the given parameters.
func NewGeneticOptimizer(cfg Config, greedy *GreedyOptimizer) *GeneticOptimizer {
	return &GeneticOptimizer{
		PopulationSize: cfg.PopulationSize,
		Generations:    cfg.Generations,
		MutationRate:   cfg.MutationRate,
		TournamentK:    cfg.TournamentK,
		Elites:         cfg.Elites,
		greedy:         greedy,
	}
}

type individual struct {
	schedule *model.Schedule
	fitness  float64
}

// PopulationStats summarizes the final generation for diagnostics.
type PopulationStats struct {
	BestScore  float64
	MeanScore  float64
	StdDev     float64
	Generation int
}

// randomIndividual assigns every event to a random compatible slot, or
// leaves it unassigned when none exists.
func (ga *GeneticOptimizer) randomIndividual(p Problem, eventIDs []string, events map[string]model.Event, rng *rand.Rand) *model.Schedule {
	s := model.NewSchedule()
	for _, id := range eventIDs {
		var options []string
		for _, slot := range p.Slots {
			if p.BlockedSlots[slot.ID] || !slot.Fits(events[id]) {
				continue
			}
			options = append(options, slot.ID)
		}
		if len(options) == 0 {
			continue
		}
		s.Assignments[id] = options[rng.Intn(len(options))]
	}
	ga.greedy.dropIncompatible(p, s)
	return s
}

// crossover combines two parents at a single cut point over the fixed event
// order.
func (ga *GeneticOptimizer) crossover(p Problem, eventIDs []string, a, b *model.Schedule, rng *rand.Rand) *model.Schedule {
	child := model.NewSchedule()
	cut := rng.Intn(len(eventIDs) + 1)
	for i, id := range eventIDs {
		src := a
		if i >= cut {
			src = b
		}
		if slotID, ok := src.Assignments[id]; ok {
			child.Assignments[id] = slotID
		}
	}
	ga.greedy.dropIncompatible(p, child)
	return child
}

// mutate reassigns one random event to a random compatible slot.
func (ga *GeneticOptimizer) mutate(p Problem, eventIDs []string, events map[string]model.Event, s *model.Schedule, rng *rand.Rand) {
	if rng.Float64() >= ga.MutationRate || len(eventIDs) == 0 || len(p.Slots) == 0 {
		return
	}
	id := eventIDs[rng.Intn(len(eventIDs))]
	slot := p.Slots[rng.Intn(len(p.Slots))]
	if p.BlockedSlots[slot.ID] || !slot.Fits(events[id]) {
		return
	}
	s.Assignments[id] = slot.ID
	ga.greedy.dropIncompatible(p, s)
}

// tournament picks the fittest of k random individuals.
func (ga *GeneticOptimizer) tournament(pop []individual, rng *rand.Rand) individual {
	best := pop[rng.Intn(len(pop))]
	for i := 1; i < ga.TournamentK; i++ {
		c := pop[rng.Intn(len(pop))]
		if c.fitness > best.fitness {
			best = c
		}
	}
	return best
}

// Optimize runs the generational loop and returns the best schedule ever
// seen together with final population statistics. The best score is
// non-decreasing across generations by construction.
func (ga *GeneticOptimizer) Optimize(ctx context.Context, p Problem, eval *evaluator, rng *rand.Rand) (*model.Schedule, PopulationStats) {
	eventIDs := make([]string, 0, len(p.Events))
	events := make(map[string]model.Event, len(p.Events))
	for _, ev := range p.Events {
		eventIDs = append(eventIDs, ev.ID)
		events[ev.ID] = ev
	}
	sort.Strings(eventIDs)

	score := func(s *model.Schedule) float64 {
		eval.evaluate(ctx, p, s)
		return s.Score
	}

	pop := make([]individual, 0, ga.PopulationSize)
	// Seed the population with the greedy solution so the search never
	// starts worse than the fast path.
	seed := ga.greedy.Optimize(ctx, p)
	pop = append(pop, individual{seed, score(seed)})
	for len(pop) < ga.PopulationSize {
		ind := ga.randomIndividual(p, eventIDs, events, rng)
		pop = append(pop, individual{ind, score(ind)})
	}

	best := pop[0]
	for _, ind := range pop {
		if ind.fitness > best.fitness {
			best = ind
		}
	}

	gen := 0
	for ; gen < ga.Generations; gen++ {
		if ctx.Err() != nil {
			break
		}
		want := ga.PopulationSize - ga.Elites
		offspring := make([]individual, 0, want)
		for len(offspring) < want {
			a := ga.tournament(pop, rng)
			b := ga.tournament(pop, rng)
			child := ga.crossover(p, eventIDs, a.schedule, b.schedule, rng)
			ga.mutate(p, eventIDs, events, child, rng)
			offspring = append(offspring, individual{child, score(child)})
		}

		// Elitist replacement: the top parents survive unconditionally,
		// offspring fill the rest.
		sort.SliceStable(pop, func(i, j int) bool { return pop[i].fitness > pop[j].fitness })
		next := append([]individual(nil), pop[:ga.Elites]...)
		next = append(next, offspring...)
		sort.SliceStable(next, func(i, j int) bool { return next[i].fitness > next[j].fitness })
		pop = next

		if pop[0].fitness > best.fitness {
			best = pop[0]
		}
		generationCount.Inc()
	}

	fits := make([]float64, len(pop))
	for i, ind := range pop {
		fits[i] = ind.fitness
	}
	stats := PopulationStats{
		BestScore:  best.fitness,
		MeanScore:  stat.Mean(fits, nil),
		StdDev:     stat.StdDev(fits, nil),
		Generation: gen,
	}
	// Return a copy so later generations cannot alias the caller's result.
	return best.schedule.Clone(), stats
}
