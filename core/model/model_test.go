package model

import (
	"testing"
	"time"
)

func tr(startHour, endHour int) TimeRange {
	day := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	return TimeRange{Start: day.Add(time.Duration(startHour) * time.Hour), End: day.Add(time.Duration(endHour) * time.Hour)}
}

func TestOverlapSymmetric(t *testing.T) {
	a := tr(9, 12)
	b := tr(11, 14)
	if !a.Overlaps(b) || !b.Overlaps(a) {
		t.Fatalf("expected symmetric overlap")
	}
	if a.OverlapMinutes(b) != b.OverlapMinutes(a) {
		t.Fatalf("overlap minutes not symmetric: %v vs %v", a.OverlapMinutes(b), b.OverlapMinutes(a))
	}
	if got := a.OverlapMinutes(b); got != 60 {
		t.Fatalf("expected 60 minutes got %v", got)
	}
}

func TestOverlapDisjoint(t *testing.T) {
	a := tr(9, 10)
	b := tr(10, 11)
	if a.Overlaps(b) {
		t.Fatalf("half-open ranges sharing a boundary must not overlap")
	}
	if got := a.OverlapMinutes(b); got != 0 {
		t.Fatalf("expected 0 got %v", got)
	}
	if got := a.Gap(b); got != 0 {
		t.Fatalf("expected zero gap got %v", got)
	}
}

func TestRescheduleKeepsIdentity(t *testing.T) {
	ev := Event{ID: "ev1", Window: tr(9, 10), Status: StatusScheduled}
	now := time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC)
	moved := ev.Reschedule(tr(14, 15), now)
	if moved.ID != "ev1" {
		t.Fatalf("reschedule changed identity: %s", moved.ID)
	}
	if moved.Status != StatusRescheduled || !moved.UpdatedAt.Equal(now) {
		t.Fatalf("reschedule did not update status/timestamp: %#v", moved)
	}
	if ev.Window != tr(9, 10) {
		t.Fatalf("reschedule mutated the original event")
	}
}

func TestConflictSignatureOrderIndependent(t *testing.T) {
	a := NewConflict(ConflictOverlap, SeverityHigh, "ev1", []string{"ev2"}, 30)
	b := NewConflict(ConflictOverlap, SeverityLow, "ev2", []string{"ev1"}, 30)
	if a.Signature() != b.Signature() {
		t.Fatalf("signatures differ: %s vs %s", a.Signature(), b.Signature())
	}
	c := NewConflict(ConflictResource, SeverityHigh, "ev1", []string{"ev2"}, 30)
	if a.Signature() == c.Signature() {
		t.Fatalf("different types must not share a signature")
	}
}

func TestSeverityEscalateCapped(t *testing.T) {
	if SeverityHigh.Escalate() != SeverityCritical {
		t.Fatalf("high should escalate to critical")
	}
	if SeverityCritical.Escalate() != SeverityCritical {
		t.Fatalf("critical must stay critical")
	}
}

func TestPaddedWindow(t *testing.T) {
	r := ResourceRequirement{Kind: ResourceCourtroom, ResourceID: "rm1", SetupMinutes: 15, CleanupMinutes: 30}
	w := r.PaddedWindow(tr(9, 10))
	if w.Start != tr(9, 10).Start.Add(-15*time.Minute) {
		t.Fatalf("setup padding wrong: %v", w.Start)
	}
	if w.End != tr(9, 10).End.Add(30*time.Minute) {
		t.Fatalf("cleanup padding wrong: %v", w.End)
	}
}

func TestCatalogMissingDependencies(t *testing.T) {
	cat := NewResourceCatalog([]DependencyRule{
		{Kind: ResourceJudge, Requires: []ResourceKind{ResourceCourtroom, ResourceReporter}},
	})
	reqs := []ResourceRequirement{
		{Kind: ResourceJudge, ResourceID: "j1"},
		{Kind: ResourceCourtroom, ResourceID: "rm1"},
	}
	missing := cat.MissingDependencies(reqs)
	if len(missing) != 1 || missing[0] != ResourceReporter {
		t.Fatalf("expected missing reporter, got %v", missing)
	}
}

func TestScheduleResourceWindows(t *testing.T) {
	events := map[string]Event{
		"ev1": {ID: "ev1", Window: tr(9, 12), Resources: []ResourceRequirement{{Kind: ResourceJudge, ResourceID: "j1"}}},
		"ev2": {ID: "ev2", Window: tr(11, 14), Resources: []ResourceRequirement{{Kind: ResourceJudge, ResourceID: "j1"}}},
	}
	s := NewSchedule()
	s.Assignments["ev1"] = "s1"
	s.Assignments["ev2"] = "s2"
	s.CheckResourceWindows(events)
	if s.IsValid() {
		t.Fatalf("expected invalid schedule, violations: %v", s.Violations)
	}
}

func TestScheduleSharedEquipmentAllowed(t *testing.T) {
	events := map[string]Event{
		"ev1": {ID: "ev1", Window: tr(9, 12), Resources: []ResourceRequirement{{Kind: ResourceEquipment, ResourceID: "cam"}}},
		"ev2": {ID: "ev2", Window: tr(11, 14), Resources: []ResourceRequirement{{Kind: ResourceEquipment, ResourceID: "cam"}}},
	}
	s := NewSchedule()
	s.Assignments["ev1"] = "s1"
	s.Assignments["ev2"] = "s2"
	s.CheckResourceWindows(events)
	if !s.IsValid() {
		t.Fatalf("shareable equipment must not invalidate the schedule: %v", s.Violations)
	}
}

func TestScheduleClone(t *testing.T) {
	s := NewSchedule()
	s.Assignments["ev1"] = "s1"
	s.Unassigned = []string{"ev2"}
	cp := s.Clone()
	cp.Assignments["ev3"] = "s2"
	cp.Unassigned = append(cp.Unassigned, "ev4")
	if len(s.Assignments) != 1 || len(s.Unassigned) != 1 {
		t.Fatalf("clone shares state with original")
	}
}

func TestAssignmentRate(t *testing.T) {
	s := NewSchedule()
	if s.AssignmentRate() != 1 {
		t.Fatalf("empty schedule should report full assignment")
	}
	s.Assignments["ev1"] = "s1"
	s.Unassigned = []string{"ev2"}
	if got := s.AssignmentRate(); got != 0.5 {
		t.Fatalf("expected 0.5 got %v", got)
	}
}
