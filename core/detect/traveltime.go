package detect

import (
	"context"
	"fmt"
	"sort"

	"github.com/courtflow/courtsched/core/model"
	"github.com/courtflow/courtsched/core/travel"
)

// detectTravelShortfalls walks each participant's events in time order and
// flags consecutive pairs whose gap cannot absorb the estimated transit plus
// the configured buffer.
func (d *Detector) detectTravelShortfalls(ctx context.Context, snap Snapshot) []model.Conflict {
	if d.estimator == nil {
		return nil
	}

	byParticipant := make(map[string][]model.Event)
	for _, ev := range snap.Events {
		for _, p := range ev.Participants {
			byParticipant[p] = append(byParticipant[p], ev)
		}
	}
	participants := make([]string, 0, len(byParticipant))
	for p := range byParticipant {
		participants = append(participants, p)
	}
	sort.Strings(participants)

	seen := make(map[string]bool)
	var out []model.Conflict
	for _, p := range participants {
		if ctx.Err() != nil {
			return out
		}
		evs := byParticipant[p]
		sort.Slice(evs, func(i, j int) bool { return evs[i].Window.Start.Before(evs[j].Window.Start) })
		for i := 0; i+1 < len(evs); i++ {
			prev, next := evs[i], evs[i+1]
			if prev.LocationID == next.LocationID {
				continue
			}
			gap := prev.Window.Gap(next.Window).Minutes()
			if gap < 0 {
				// Overlapping events are the overlap detector's problem.
				continue
			}
			res := d.estimator.Estimate(ctx, snap.Location(prev.LocationID), snap.Location(next.LocationID),
				model.ModeDrive, prev.Window.End, travel.Options{})
			required := res.TotalMinutes() + d.cfg.TravelBufferMinutes
			if gap >= required {
				continue
			}
			c := model.NewConflict(model.ConflictTravelTime, model.SeverityHigh, prev.ID, []string{next.ID}, required-gap)
			c.Detail = fmt.Sprintf("participant %s has %.0f minutes to travel %s->%s, needs %.0f",
				p, gap, prev.LocationID, next.LocationID, required)
			if seen[c.Signature()] {
				// Several shared participants produce the same pair.
				continue
			}
			seen[c.Signature()] = true
			out = append(out, c)
		}
	}
	return out
}
