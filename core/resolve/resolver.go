package resolve

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/courtflow/courtsched/core/events"
	"github.com/courtflow/courtsched/core/logger"
	"github.com/courtflow/courtsched/core/model"
	"github.com/courtflow/courtsched/internal/eventbus"
)

// Resolver applies the rule table to detected conflicts, drives each
// conflict through the resolution workflow and records every attempt in the
// audit store. It is safe for concurrent use.
type Resolver struct {
	cfg      Config
	rules    []rule
	fallback Strategy
	audit    AuditStore
	log      logger.Logger
	bus      eventbus.EventBus
	now      func() time.Time

	mu       sync.Mutex
	status   map[string]model.ResolutionStatus
	last     map[string]Record
	attempts map[string]int
}

// NewResolver compiles the rule table and returns a resolver. A bad rule
// table, including an unknown strategy name, fails here.
func NewResolver(cfg Config, audit AuditStore, notifier Notifier, log logger.Logger, bus eventbus.EventBus) (*Resolver, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rules, err := buildRules(cfg, notifier)
	if err != nil {
		return nil, err
	}
	if audit == nil {
		audit = NewMemoryStore()
	}
	return &Resolver{
		cfg:      cfg,
		rules:    rules,
		fallback: manualReview{notifier: notifier},
		audit:    audit,
		log:      log,
		bus:      bus,
		now:      time.Now,
		status:   make(map[string]model.ResolutionStatus),
		last:     make(map[string]Record),
		attempts: make(map[string]int),
	}, nil
}

// Status returns the workflow state of a conflict signature. Unknown
// signatures are pending.
func (r *Resolver) Status(signature string) model.ResolutionStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.status[signature]; ok {
		return s
	}
	return model.ResolutionPending
}

// History returns the audit records of a conflict signature in order.
func (r *Resolver) History(ctx context.Context, signature string) ([]Record, error) {
	return r.audit.Query(ctx, Query{Signature: signature})
}

// Resolve drives one conflict through the workflow. A conflict already
// resolved under the same signature returns the prior record without a new
// audit entry; failed, escalated and deferred conflicts may be resubmitted
// as a new attempt.
func (r *Resolver) Resolve(ctx context.Context, c model.Conflict, st *State) (Record, error) {
	return r.resolve(ctx, c, st, false)
}

func (r *Resolver) resolve(ctx context.Context, c model.Conflict, st *State, revalidate bool) (Record, error) {
	sig := c.Signature()

	r.mu.Lock()
	if prior, ok := r.last[sig]; ok && r.status[sig] == model.ResolutionResolved {
		r.mu.Unlock()
		return prior, nil
	}
	r.status[sig] = model.ResolutionInProgress
	r.attempts[sig]++
	r.mu.Unlock()

	if st.Now.IsZero() {
		st.Now = r.now()
	}

	if revalidate && !r.stillHolds(c, st) {
		rec := r.record(sig, c, "none", Outcome{
			Status:    model.ResolutionResolved,
			Rationale: "triggering condition no longer holds",
		}, true)
		return rec, r.commit(ctx, rec)
	}

	strat, ruleName := r.match(c)
	out, err := strat.Apply(ctx, c, st)
	if err != nil {
		// A strategy that cannot run hands the conflict to a human.
		r.log.Warnf("strategy %s failed on %s: %v", strat.Name(), sig, err)
		out = Outcome{Status: model.ResolutionEscalated, Rationale: "strategy error: " + err.Error()}
	}
	r.log.Debugw("conflict resolution attempt", map[string]any{
		"signature": sig,
		"rule":      ruleName,
		"strategy":  strat.Name(),
		"status":    string(out.Status),
	})

	rec := r.record(sig, c, strat.Name(), out, false)
	if r.bus != nil {
		r.bus.Publish(events.ResolutionEvent{
			Signature: sig,
			Strategy:  strat.Name(),
			Status:    out.Status,
			Err:       err,
		})
	}
	return rec, r.commit(ctx, rec)
}

// match returns the strategy of the first enabled rule matching the
// conflict, falling back to manual review.
func (r *Resolver) match(c model.Conflict) (Strategy, string) {
	for _, rl := range r.rules {
		if rl.matches(c) {
			return rl.strategy, rl.name
		}
	}
	return r.fallback, "fallback"
}

// stillHolds re-validates the triggering condition against current event
// state. Temporal conflicts are recomputed from the live windows; conditions
// this resolver cannot observe are assumed to still hold.
func (r *Resolver) stillHolds(c model.Conflict, st *State) bool {
	switch c.Type {
	case model.ConflictOverlap, model.ConflictDoubleBooking, model.ConflictResource,
		model.ConflictJudgeUnavailable, model.ConflictAttorneyUnavailable:
		ids := c.AllEvents()
		for i := 0; i < len(ids); i++ {
			a, ok := st.Event(ids[i])
			if !ok {
				return false
			}
			for j := i + 1; j < len(ids); j++ {
				b, ok := st.Event(ids[j])
				if !ok {
					return false
				}
				if a.Window.Overlaps(b.Window) {
					return true
				}
			}
		}
		return false
	case model.ConflictBusinessHours:
		ev, ok := st.Event(c.EventID)
		if !ok {
			return false
		}
		h := hours{open: r.cfg.OpenHour, close: r.cfg.CloseHour}
		return !h.contains(ev.Window)
	default:
		return true
	}
}

func (r *Resolver) record(sig string, c model.Conflict, strategy string, out Outcome, superseded bool) Record {
	rec := Record{
		ID:           uuid.NewString(),
		Signature:    sig,
		ConflictType: c.Type.String(),
		Strategy:     strategy,
		Actor:        r.cfg.Actor,
		Timestamp:    r.now(),
		Status:       out.Status,
		Rationale:    out.Rationale,
		Superseded:   superseded,
	}
	r.mu.Lock()
	r.status[sig] = out.Status
	r.last[sig] = rec
	r.mu.Unlock()
	resolutionAttempts.WithLabelValues(strategy, string(out.Status)).Inc()
	return rec
}

func (r *Resolver) commit(ctx context.Context, rec Record) error {
	if err := r.audit.Append(ctx, rec); err != nil {
		r.log.Errorf("audit append failed for %s: %v", rec.Signature, err)
		return err
	}
	return nil
}

// ResolveAll processes a batch of conflicts in order. Earlier resolutions
// mutate the state, so each conflict's triggering condition is re-validated
// right before its strategy runs; a stale conflict becomes a superseded
// no-op recorded as resolved. An audit append failure does not stop the
// batch: the record is still returned and the failures come back joined.
func (r *Resolver) ResolveAll(ctx context.Context, conflicts []model.Conflict, st *State) ([]Record, error) {
	recs := make([]Record, 0, len(conflicts))
	var errs []error
	for _, c := range conflicts {
		if ctx.Err() != nil {
			return recs, ctx.Err()
		}
		rec, err := r.resolve(ctx, c, st, true)
		recs = append(recs, rec)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.Signature(), err))
		}
	}
	return recs, errors.Join(errs...)
}

// Stats summarizes resolution outcomes per conflict signature. Resubmitted
// conflicts count once, under their latest status.
type Stats struct {
	Total     int                            `json:"total"`
	Attempts  int                            `json:"attempts"`
	ByStatus  map[model.ResolutionStatus]int `json:"by_status"`
	Resolved  int                            `json:"resolved"`
	Escalated int                            `json:"escalated"`
}

// Stats returns the current resolution statistics.
func (r *Resolver) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := Stats{ByStatus: make(map[model.ResolutionStatus]int)}
	for _, st := range r.status {
		s.Total++
		s.ByStatus[st]++
	}
	for _, n := range r.attempts {
		s.Attempts += n
	}
	s.Resolved = s.ByStatus[model.ResolutionResolved]
	s.Escalated = s.ByStatus[model.ResolutionEscalated]
	return s
}

// Close releases the audit store.
func (r *Resolver) Close() error { return r.audit.Close() }
