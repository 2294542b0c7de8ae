package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/courtflow/courtsched/core/model"
)

// WriteConflictsJSON writes the conflict report to w in JSON format.
func WriteConflictsJSON(w io.Writer, conflicts []model.Conflict) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(conflicts)
}

// WriteConflictsCSV writes the conflict report to w in CSV format.
func WriteConflictsCSV(w io.Writer, conflicts []model.Conflict) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"signature", "type", "severity", "events", "deficit_minutes", "detected_at", "status"}); err != nil {
		return err
	}
	for _, c := range conflicts {
		rec := []string{
			c.Signature(),
			c.Type.String(),
			c.Severity.String(),
			strings.Join(c.AllEvents(), ";"),
			strconv.FormatFloat(c.DeficitMinutes, 'f', -1, 64),
			c.DetectedAt.Format(time.RFC3339),
			string(c.Status),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteScheduleJSON writes the optimized schedule to w in JSON format.
func WriteScheduleJSON(w io.Writer, s *model.Schedule) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// WriteScheduleCSV writes the assignment table to w in CSV format, one row
// per event in deterministic order. Unassigned events have an empty slot
// column.
func WriteScheduleCSV(w io.Writer, s *model.Schedule) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"event_id", "slot_id"}); err != nil {
		return err
	}
	ids := make([]string, 0, len(s.Assignments)+len(s.Unassigned))
	for id := range s.Assignments {
		ids = append(ids, id)
	}
	ids = append(ids, s.Unassigned...)
	sort.Strings(ids)
	for _, id := range ids {
		if err := cw.Write([]string{id, s.Assignments[id]}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
