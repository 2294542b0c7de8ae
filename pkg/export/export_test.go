package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/courtflow/courtsched/core/model"
)

func TestWriteConflictsCSV(t *testing.T) {
	c := model.NewConflict(model.ConflictOverlap, model.SeverityHigh, "ev-a", []string{"ev-b"}, 30)
	c.DetectedAt = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	if err := WriteConflictsCSV(&buf, []model.Conflict{c}); err != nil {
		t.Fatalf("WriteConflictsCSV: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header plus one row, got %d", len(rows))
	}
	if rows[1][0] != "overlap:ev-a,ev-b" {
		t.Fatalf("unexpected signature column: %q", rows[1][0])
	}
	if rows[1][2] != "high" {
		t.Fatalf("unexpected severity column: %q", rows[1][2])
	}
}

func TestWriteScheduleCSVDeterministic(t *testing.T) {
	s := model.NewSchedule()
	s.Assignments["ev-b"] = "slot-2"
	s.Assignments["ev-a"] = "slot-1"
	s.Unassigned = []string{"ev-c"}

	var first, second bytes.Buffer
	if err := WriteScheduleCSV(&first, s); err != nil {
		t.Fatalf("WriteScheduleCSV: %v", err)
	}
	if err := WriteScheduleCSV(&second, s); err != nil {
		t.Fatalf("WriteScheduleCSV: %v", err)
	}
	if first.String() != second.String() {
		t.Fatal("schedule export not deterministic")
	}
	lines := strings.Split(strings.TrimSpace(first.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header plus three rows, got %v", lines)
	}
	if lines[3] != "ev-c," {
		t.Fatalf("unassigned event should have empty slot: %q", lines[3])
	}
}

func TestWriteConflictsJSONRoundTrip(t *testing.T) {
	c := model.NewConflict(model.ConflictTravelTime, model.SeverityHigh, "ev-a", []string{"ev-b"}, 40)
	var buf bytes.Buffer
	if err := WriteConflictsJSON(&buf, []model.Conflict{c}); err != nil {
		t.Fatalf("WriteConflictsJSON: %v", err)
	}
	if !strings.Contains(buf.String(), "travel_time") {
		t.Fatalf("type name missing from JSON: %s", buf.String())
	}
}
