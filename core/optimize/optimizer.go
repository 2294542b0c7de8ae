package optimize

import (
	"context"
	"math/rand"
	"time"

	"github.com/courtflow/courtsched/core/detect"
	"github.com/courtflow/courtsched/core/events"
	"github.com/courtflow/courtsched/core/logger"
	"github.com/courtflow/courtsched/core/model"
	"github.com/courtflow/courtsched/internal/eventbus"
)

// Algorithm selects the assignment strategy.
type Algorithm string

const (
	// AlgorithmAuto picks the strategy from the problem size.
	AlgorithmAuto Algorithm = "auto"
	// AlgorithmGreedy is the single-pass best-fit strategy.
	AlgorithmGreedy Algorithm = "greedy"
	// AlgorithmGenetic is the population search strategy.
	AlgorithmGenetic Algorithm = "genetic"
)

// Optimizer assigns events to slots using either the greedy or the genetic
// strategy and evaluates candidates through the conflict detector and travel
// estimator.
type Optimizer struct {
	cfg     Config
	greedy  *GreedyOptimizer
	genetic *GeneticOptimizer
	eval    *evaluator
	log     logger.Logger
	bus     eventbus.EventBus
}

// NewOptimizer creates an optimizer. detector and estimator may be nil in
// tests; candidates are then scored without conflict or travel terms.
func NewOptimizer(cfg Config, detector *detect.Detector, estimator detect.TravelEstimator, log logger.Logger, bus eventbus.EventBus) *Optimizer {
	cfg.SetDefaults()
	greedy := NewGreedyOptimizer()
	greedy.TimeToleranceHours = cfg.TimeToleranceHours
	return &Optimizer{
		cfg:     cfg,
		greedy:  greedy,
		genetic: NewGeneticOptimizer(cfg, greedy),
		eval:    &evaluator{detector: detector, estimator: estimator, objective: cfg.Objective},
		log:     log,
		bus:     bus,
	}
}

// choose implements the automatic algorithm selection: population search for
// small problems where exploration is cheap, greedy otherwise.
func (o *Optimizer) choose(p Problem, hint Algorithm) Algorithm {
	if hint == AlgorithmGreedy || hint == AlgorithmGenetic {
		return hint
	}
	if len(p.Events) <= o.cfg.GeneticMaxEvents && len(p.Slots) <= o.cfg.GeneticMaxSlots {
		return AlgorithmGenetic
	}
	return AlgorithmGreedy
}

// Optimize computes an assignment of the problem's events to its slots. The
// random generator drives the genetic search; a fixed seed reproduces the
// run exactly. The returned schedule is always the best candidate found;
// infeasibility shows up as unassigned events or IsValid()==false, never as
// an error.
func (o *Optimizer) Optimize(ctx context.Context, p Problem, hint Algorithm, rng *rand.Rand) *model.Schedule {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	start := time.Now()
	algo := o.choose(p, hint)

	var s *model.Schedule
	switch algo {
	case AlgorithmGenetic:
		var stats PopulationStats
		s, stats = o.genetic.Optimize(ctx, p, o.eval, rng)
		o.log.Debugf("genetic search: %d generations, best %.2f, mean %.2f (stddev %.2f)",
			stats.Generation, stats.BestScore, stats.MeanScore, stats.StdDev)
	default:
		s = o.greedy.Optimize(ctx, p)
		o.eval.evaluate(ctx, p, s)
	}

	optimizerRuns.WithLabelValues(string(algo)).Inc()
	bestScore.Set(s.Score)
	elapsed := time.Since(start)
	o.log.Infof("optimize(%s): %d/%d events assigned, score %.2f in %s",
		algo, len(s.Assignments), len(p.Events), s.Score, elapsed)
	if o.bus != nil {
		o.bus.Publish(events.OptimizeEvent{
			Algorithm:  string(algo),
			Events:     len(p.Events),
			Assigned:   len(s.Assignments),
			Unassigned: len(s.Unassigned),
			Score:      s.Score,
			Elapsed:    elapsed,
		})
	}
	return s
}

// SuggestSlots answers low-latency "where can this event go" queries against
// a fixed existing schedule using the greedy per-slot scorer.
func (o *Optimizer) SuggestSlots(ev model.Event, p Problem, existing *model.Schedule, k int) []string {
	return o.greedy.SuggestSlots(ev, p, existing, k)
}
