package detect

import (
	"context"
	"fmt"

	"github.com/courtflow/courtsched/core/model"
)

// detectBusinessHours flags events scheduled outside the configured business
// day and events falling on registered closure dates or closed weekends.
func (d *Detector) detectBusinessHours(ctx context.Context, snap Snapshot) []model.Conflict {
	closures := d.cfg.closureSet()
	var out []model.Conflict
	for _, ev := range snap.Events {
		if ctx.Err() != nil {
			return out
		}
		day := ev.Window.Start.Format("2006-01-02")
		weekend := d.cfg.WeekendsClosed && (ev.Window.Start.Weekday() == 0 || ev.Window.Start.Weekday() == 6)
		if closures[day] || weekend {
			c := model.NewConflict(model.ConflictClosure, model.SeverityHigh, ev.ID, nil, ev.Window.Duration().Minutes())
			c.Detail = fmt.Sprintf("%s falls on closed day %s", ev.ID, day)
			out = append(out, c)
			continue
		}
		startHour := ev.Window.Start.Hour()
		endHour := ev.Window.End.Hour()
		if ev.Window.End.Minute() > 0 || ev.Window.End.Second() > 0 {
			endHour++
		}
		if startHour < d.cfg.OpenHour || endHour > d.cfg.CloseHour {
			c := model.NewConflict(model.ConflictBusinessHours, model.SeverityMedium, ev.ID, nil, 0)
			c.Detail = fmt.Sprintf("%s outside business hours %02d:00-%02d:00", ev.ID, d.cfg.OpenHour, d.cfg.CloseHour)
			out = append(out, c)
		}
	}
	return out
}
