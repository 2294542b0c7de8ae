package detect

import (
	"context"
	"fmt"

	"github.com/courtflow/courtsched/core/model"
)

// overlapSeverity maps overlap minutes to a base severity.
func overlapSeverity(minutes float64) model.Severity {
	switch {
	case minutes >= 60:
		return model.SeverityCritical
	case minutes >= 30:
		return model.SeverityHigh
	case minutes >= 15:
		return model.SeverityMedium
	default:
		return model.SeverityLow
	}
}

// detectOverlaps finds temporal overlaps between every event pair. Identical
// windows are classified as double-bookings. Severity escalates when a
// high-priority category is involved and again when both events need the
// same judge.
func (d *Detector) detectOverlaps(ctx context.Context, snap Snapshot) []model.Conflict {
	var out []model.Conflict
	evs := snap.Events
	for i := 0; i < len(evs); i++ {
		if ctx.Err() != nil {
			return out
		}
		for j := i + 1; j < len(evs); j++ {
			a, b := evs[i], evs[j]
			minutes := a.Window.OverlapMinutes(b.Window)
			if minutes <= 0 {
				continue
			}

			typ := model.ConflictOverlap
			if a.Window == b.Window {
				typ = model.ConflictDoubleBooking
			}
			sev := overlapSeverity(minutes)
			if a.Category.IsHighPriority() || b.Category.IsHighPriority() {
				sev = sev.Escalate()
			}
			sameJudge := a.Judge() != "" && a.Judge() == b.Judge()
			if sameJudge {
				sev = sev.Escalate()
			}

			c := model.NewConflict(typ, sev, a.ID, []string{b.ID}, minutes)
			c.Detail = fmt.Sprintf("%s overlaps %s by %.0f minutes", a.ID, b.ID, minutes)
			if sameJudge {
				c.ResourceKey = "judge/" + a.Judge()
			}
			out = append(out, c)
		}
	}
	return out
}
