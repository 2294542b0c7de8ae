package detect

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/courtflow/courtsched/core/model"
)

// detectCrossSource compares events that reference the same external matter.
// Records of the same matter whose start times drift beyond the configured
// tolerance indicate inconsistent source systems.
func (d *Detector) detectCrossSource(ctx context.Context, snap Snapshot) []model.Conflict {
	byMatter := make(map[string][]model.Event)
	for _, ev := range snap.Events {
		if ev.MatterID == "" {
			continue
		}
		byMatter[ev.MatterID] = append(byMatter[ev.MatterID], ev)
	}
	matters := make([]string, 0, len(byMatter))
	for m := range byMatter {
		matters = append(matters, m)
	}
	sort.Strings(matters)

	var out []model.Conflict
	for _, m := range matters {
		if ctx.Err() != nil {
			return out
		}
		evs := byMatter[m]
		for i := 0; i < len(evs); i++ {
			for j := i + 1; j < len(evs); j++ {
				drift := math.Abs(evs[i].Window.Start.Sub(evs[j].Window.Start).Minutes())
				if drift <= d.cfg.CrossSourceToleranceMinutes {
					continue
				}
				c := model.NewConflict(model.ConflictCrossSource, model.SeverityHigh, evs[i].ID, []string{evs[j].ID}, drift)
				c.Detail = fmt.Sprintf("matter %s recorded with %.0f minute start drift", m, drift)
				out = append(out, c)
			}
		}
	}
	return out
}
