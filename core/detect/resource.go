package detect

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/courtflow/courtsched/core/model"
)

// contentionType maps a resource kind to the conflict type it produces.
func contentionType(k model.ResourceKind) model.ConflictType {
	switch k {
	case model.ResourceJudge:
		return model.ConflictJudgeUnavailable
	case model.ResourceAttorney:
		return model.ConflictAttorneyUnavailable
	default:
		return model.ConflictResource
	}
}

// contentionSeverity follows the resource kind: judges and courtrooms are
// high, everything else medium.
func contentionSeverity(k model.ResourceKind) model.Severity {
	if k == model.ResourceJudge || k == model.ResourceCourtroom {
		return model.SeverityHigh
	}
	return model.SeverityMedium
}

// detectResourceContention checks each event's requirements against the
// catalog's dependency rules, then groups padded resource windows by resource
// key and flags every pairwise overlap within a group.
func (d *Detector) detectResourceContention(ctx context.Context, snap Snapshot) []model.Conflict {
	var out []model.Conflict
	for _, ev := range snap.Events {
		missing := d.catalog.MissingDependencies(ev.Resources)
		if len(missing) == 0 {
			continue
		}
		names := make([]string, len(missing))
		for i, k := range missing {
			names[i] = string(k)
		}
		c := model.NewConflict(model.ConflictResource, model.SeverityMedium, ev.ID, nil, 0)
		c.Detail = fmt.Sprintf("%s is missing implied resources: %s", ev.ID, strings.Join(names, ", "))
		out = append(out, c)
	}

	type claim struct {
		event  model.Event
		kind   model.ResourceKind
		window model.TimeRange
	}
	byKey := make(map[string][]claim)
	for _, ev := range snap.Events {
		for _, r := range ev.Resources {
			if r.Kind.Shareable() {
				continue
			}
			byKey[r.Key()] = append(byKey[r.Key()], claim{ev, r.Kind, r.PaddedWindow(ev.Window)})
		}
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if ctx.Err() != nil {
			return out
		}
		claims := byKey[key]
		for i := 0; i < len(claims); i++ {
			for j := i + 1; j < len(claims); j++ {
				a, b := claims[i], claims[j]
				minutes := a.window.OverlapMinutes(b.window)
				if minutes <= 0 {
					continue
				}
				c := model.NewConflict(contentionType(a.kind), contentionSeverity(a.kind), a.event.ID, []string{b.event.ID}, minutes)
				c.ResourceKey = key
				c.Detail = fmt.Sprintf("%s claimed by %s and %s for %.0f overlapping minutes", key, a.event.ID, b.event.ID, minutes)
				out = append(out, c)
			}
		}
	}
	return out
}
