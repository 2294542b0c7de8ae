package resolve

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/courtflow/courtsched/core/model"
)

// ErrUnknownStrategy marks a strategy name not in the closed set.
var ErrUnknownStrategy = errors.New("unknown resolution strategy")

// Strategy names accepted in rule configuration.
const (
	StrategyManualReview   = "manual_review"
	StrategyAutoReschedule = "auto_reschedule"
	StrategyPreferCourt    = "prefer_court"
	StrategyPreferRecent   = "prefer_recent"
	StrategyNotifyOnly     = "notify_only"
	StrategyBufferTime     = "buffer_time"
	StrategyBlockSlot      = "block_slot"
)

func knownStrategy(name string) bool {
	switch name {
	case StrategyManualReview, StrategyAutoReschedule, StrategyPreferCourt,
		StrategyPreferRecent, StrategyNotifyOnly, StrategyBufferTime, StrategyBlockSlot:
		return true
	}
	return false
}

// State is the mutable scheduling state strategies act on. Rescheduling
// strategies update Events in place; block-slot marks slots for exclusion
// from the next optimizer run.
type State struct {
	Events map[string]model.Event
	// Assignments maps event ids to the slot they currently occupy.
	Assignments  map[string]string
	BlockedSlots map[string]bool
	Now          time.Time
}

// Event looks up an involved event, reporting whether it still exists.
func (st *State) Event(id string) (model.Event, bool) {
	ev, ok := st.Events[id]
	return ev, ok
}

// Outcome is the result of one strategy application.
type Outcome struct {
	Status    model.ResolutionStatus
	Rationale string
}

// Strategy applies one resolution tactic to a conflict.
type Strategy interface {
	Name() string
	Apply(ctx context.Context, c model.Conflict, st *State) (Outcome, error)
}

// hours bounds automatic rescheduling to the court's business day.
type hours struct {
	open, close int
}

func (h hours) contains(w model.TimeRange) bool {
	if w.Start.Hour() < h.open {
		return false
	}
	end := w.End.Hour()*60 + w.End.Minute()
	if w.End.Second() > 0 || w.End.Nanosecond() > 0 {
		end++
	}
	if end > h.close*60 {
		return false
	}
	return w.Start.Year() == w.End.Year() && w.Start.YearDay() == w.End.YearDay()
}

// nextOpening moves the window to the opening hour of the following day,
// preserving its duration.
func (h hours) nextOpening(w model.TimeRange) model.TimeRange {
	day := w.Start.AddDate(0, 0, 1)
	start := time.Date(day.Year(), day.Month(), day.Day(), h.open, 0, 0, 0, day.Location())
	return model.TimeRange{Start: start, End: start.Add(w.Duration())}
}

// laterOf returns the id of the involved event that starts last and still
// exists in the state. The second return is false when none do.
func laterOf(c model.Conflict, st *State) (model.Event, bool) {
	ids := c.AllEvents()
	sort.Strings(ids)
	var later model.Event
	found := false
	for _, id := range ids {
		ev, ok := st.Event(id)
		if !ok {
			continue
		}
		if !found || ev.Window.Start.After(later.Window.Start) {
			later, found = ev, true
		}
	}
	return later, found
}

// moverByPriority returns the involved event that should give way: the one
// with the lowest category priority, the later-starting one on ties. The
// second return is false when no involved event exists in the state.
func moverByPriority(c model.Conflict, st *State) (model.Event, bool) {
	ids := c.AllEvents()
	sort.Strings(ids)
	var mover model.Event
	found := false
	for _, id := range ids {
		ev, ok := st.Event(id)
		if !ok {
			continue
		}
		if !found {
			mover, found = ev, true
			continue
		}
		if ev.Category.Priority() < mover.Category.Priority() {
			mover = ev
		} else if ev.Category.Priority() == mover.Category.Priority() && ev.Window.Start.After(mover.Window.Start) {
			mover = ev
		}
	}
	return mover, found
}

// parties collects the distinct participants of every involved event.
func parties(c model.Conflict, st *State) []string {
	seen := make(map[string]bool)
	for _, id := range c.AllEvents() {
		ev, ok := st.Event(id)
		if !ok {
			continue
		}
		for _, p := range ev.Participants {
			seen[p] = true
		}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// manualReview escalates the conflict to a human and notifies the parties.
type manualReview struct {
	notifier Notifier
}

func (s manualReview) Name() string { return StrategyManualReview }

func (s manualReview) Apply(ctx context.Context, c model.Conflict, st *State) (Outcome, error) {
	if s.notifier != nil {
		err := s.notifier.Notify(ctx, Notification{
			Subject:   "conflict requires manual review",
			Body:      fmt.Sprintf("%s conflict involving %v needs a clerk decision", c.Type, c.AllEvents()),
			Parties:   parties(c, st),
			Signature: c.Signature(),
		})
		if err != nil {
			return Outcome{}, err
		}
	}
	return Outcome{Status: model.ResolutionEscalated, Rationale: "escalated for manual review"}, nil
}

// notifyOnly informs the parties and leaves the schedule untouched.
type notifyOnly struct {
	notifier Notifier
}

func (s notifyOnly) Name() string { return StrategyNotifyOnly }

func (s notifyOnly) Apply(ctx context.Context, c model.Conflict, st *State) (Outcome, error) {
	if s.notifier != nil {
		err := s.notifier.Notify(ctx, Notification{
			Subject:   "scheduling conflict detected",
			Body:      fmt.Sprintf("%s conflict involving %v, no automatic change applied", c.Type, c.AllEvents()),
			Parties:   parties(c, st),
			Signature: c.Signature(),
		})
		if err != nil {
			return Outcome{}, err
		}
	}
	return Outcome{Status: model.ResolutionResolved, Rationale: "parties notified, schedule unchanged"}, nil
}

// autoReschedule shifts the lower-priority event by the first offset that
// lands it inside business hours without touching the other involved events.
type autoReschedule struct {
	hours   hours
	offsets []time.Duration
}

func defaultOffsets() []time.Duration {
	return []time.Duration{time.Hour, 2 * time.Hour, 24 * time.Hour, 48 * time.Hour}
}

func (s autoReschedule) Name() string { return StrategyAutoReschedule }

func (s autoReschedule) Apply(_ context.Context, c model.Conflict, st *State) (Outcome, error) {
	mover, ok := moverByPriority(c, st)
	if !ok {
		return Outcome{Status: model.ResolutionFailed, Rationale: "no involved event left to move"}, nil
	}
	for _, off := range s.offsets {
		candidate := mover.Window.Shift(off)
		if !s.hours.contains(candidate) {
			continue
		}
		if s.collides(c, st, mover.ID, candidate) {
			continue
		}
		st.Events[mover.ID] = mover.Reschedule(candidate, st.Now)
		return Outcome{
			Status:    model.ResolutionResolved,
			Rationale: fmt.Sprintf("moved %s forward by %s", mover.ID, off),
		}, nil
	}
	return Outcome{Status: model.ResolutionFailed, Rationale: "no offset fits business hours"}, nil
}

func (s autoReschedule) collides(c model.Conflict, st *State, moverID string, w model.TimeRange) bool {
	for _, id := range c.AllEvents() {
		if id == moverID {
			continue
		}
		if other, ok := st.Event(id); ok && other.Window.Overlaps(w) {
			return true
		}
	}
	return false
}

// priorityKeep shifts the losing event to after the winner. prefer-court
// keeps the event with the higher category priority; prefer-recent keeps the
// most recently updated one.
type priorityKeep struct {
	name   string
	hours  hours
	margin time.Duration
	wins   func(a, b model.Event) bool
}

func preferCourt(h hours) priorityKeep {
	return priorityKeep{
		name:   StrategyPreferCourt,
		hours:  h,
		margin: 15 * time.Minute,
		wins: func(a, b model.Event) bool {
			if a.Category.Priority() != b.Category.Priority() {
				return a.Category.Priority() > b.Category.Priority()
			}
			return a.UpdatedAt.After(b.UpdatedAt)
		},
	}
}

func preferRecent(h hours) priorityKeep {
	return priorityKeep{
		name:   StrategyPreferRecent,
		hours:  h,
		margin: 15 * time.Minute,
		wins:   func(a, b model.Event) bool { return a.UpdatedAt.After(b.UpdatedAt) },
	}
}

func (s priorityKeep) Name() string { return s.name }

func (s priorityKeep) Apply(_ context.Context, c model.Conflict, st *State) (Outcome, error) {
	ids := c.AllEvents()
	if len(ids) < 2 {
		return Outcome{Status: model.ResolutionFailed, Rationale: "conflict does not involve two events"}, nil
	}
	sort.Strings(ids)
	a, okA := st.Event(ids[0])
	b, okB := st.Event(ids[1])
	if !okA || !okB {
		return Outcome{Status: model.ResolutionFailed, Rationale: "involved event no longer exists"}, nil
	}
	winner, loser := a, b
	if s.wins(b, a) {
		winner, loser = b, a
	}
	start := winner.Window.End.Add(s.margin)
	moved := model.TimeRange{Start: start, End: start.Add(loser.Window.Duration())}
	if !s.hours.contains(moved) {
		moved = s.hours.nextOpening(loser.Window)
	}
	st.Events[loser.ID] = loser.Reschedule(moved, st.Now)
	return Outcome{
		Status:    model.ResolutionResolved,
		Rationale: fmt.Sprintf("kept %s, moved %s to %s", winner.ID, loser.ID, moved.Start.Format(time.RFC3339)),
	}, nil
}

// bufferTime pushes the later event forward by the travel deficit plus a
// configured margin.
type bufferTime struct {
	hours  hours
	margin time.Duration
}

func (s bufferTime) Name() string { return StrategyBufferTime }

func (s bufferTime) Apply(_ context.Context, c model.Conflict, st *State) (Outcome, error) {
	mover, ok := laterOf(c, st)
	if !ok {
		return Outcome{Status: model.ResolutionFailed, Rationale: "no involved event left to move"}, nil
	}
	shift := time.Duration(c.DeficitMinutes)*time.Minute + s.margin
	moved := mover.Window.Shift(shift)
	if !s.hours.contains(moved) {
		return Outcome{Status: model.ResolutionFailed, Rationale: "buffered window leaves business hours"}, nil
	}
	st.Events[mover.ID] = mover.Reschedule(moved, st.Now)
	return Outcome{
		Status:    model.ResolutionResolved,
		Rationale: fmt.Sprintf("pushed %s by %s to absorb travel shortfall", mover.ID, shift),
	}, nil
}

// blockSlot withdraws the slot hosting the primary event from future
// optimizer runs. The events themselves are left for the next optimization
// pass to reseat.
type blockSlot struct{}

func (blockSlot) Name() string { return StrategyBlockSlot }

func (blockSlot) Apply(_ context.Context, c model.Conflict, st *State) (Outcome, error) {
	slotID, ok := st.Assignments[c.EventID]
	if !ok || slotID == "" {
		return Outcome{Status: model.ResolutionFailed, Rationale: "primary event has no slot assignment"}, nil
	}
	if st.BlockedSlots == nil {
		st.BlockedSlots = make(map[string]bool)
	}
	st.BlockedSlots[slotID] = true
	return Outcome{
		Status:    model.ResolutionResolved,
		Rationale: fmt.Sprintf("slot %s withdrawn from future runs", slotID),
	}, nil
}

// buildStrategy resolves a strategy name to its implementation.
func buildStrategy(name string, h hours, margin time.Duration, notifier Notifier) (Strategy, error) {
	switch name {
	case StrategyManualReview:
		return manualReview{notifier: notifier}, nil
	case StrategyNotifyOnly:
		return notifyOnly{notifier: notifier}, nil
	case StrategyAutoReschedule:
		return autoReschedule{hours: h, offsets: defaultOffsets()}, nil
	case StrategyPreferCourt:
		return preferCourt(h), nil
	case StrategyPreferRecent:
		return preferRecent(h), nil
	case StrategyBufferTime:
		return bufferTime{hours: h, margin: margin}, nil
	case StrategyBlockSlot:
		return blockSlot{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}
