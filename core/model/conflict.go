package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ConflictType enumerates the closed set of detectable scheduling conflicts.
type ConflictType int

const (
	ConflictOverlap ConflictType = iota
	ConflictDoubleBooking
	ConflictResource
	ConflictTravelTime
	ConflictBusinessHours
	ConflictClosure
	ConflictJudgeUnavailable
	ConflictAttorneyUnavailable
	ConflictCrossSource
)

// String returns a human-readable representation of the conflict type.
func (t ConflictType) String() string {
	switch t {
	case ConflictOverlap:
		return "overlap"
	case ConflictDoubleBooking:
		return "double_booking"
	case ConflictResource:
		return "resource"
	case ConflictTravelTime:
		return "travel_time"
	case ConflictBusinessHours:
		return "business_hours"
	case ConflictClosure:
		return "closure"
	case ConflictJudgeUnavailable:
		return "judge_unavailable"
	case ConflictAttorneyUnavailable:
		return "attorney_unavailable"
	case ConflictCrossSource:
		return "cross_source"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the type by name.
func (t ConflictType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes a type name.
func (t *ConflictType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for c := ConflictOverlap; c <= ConflictCrossSource; c++ {
		if c.String() == name {
			*t = c
			return nil
		}
	}
	return fmt.Errorf("unknown conflict type %q", name)
}

// Severity ranks how serious a conflict is. Higher values are worse.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// String returns a human-readable representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the severity by name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a severity name.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for sev := SeverityLow; sev <= SeverityCritical; sev++ {
		if sev.String() == name {
			*s = sev
			return nil
		}
	}
	return fmt.Errorf("unknown severity %q", name)
}

// Escalate returns the next severity level, capped at critical.
func (s Severity) Escalate() Severity {
	if s >= SeverityCritical {
		return SeverityCritical
	}
	return s + 1
}

// ResolutionStatus is the state of a conflict in the resolution workflow.
type ResolutionStatus string

const (
	ResolutionPending    ResolutionStatus = "pending"
	ResolutionInProgress ResolutionStatus = "in_progress"
	ResolutionResolved   ResolutionStatus = "resolved"
	ResolutionFailed     ResolutionStatus = "failed"
	ResolutionEscalated  ResolutionStatus = "escalated"
	ResolutionDeferred   ResolutionStatus = "deferred"
)

// Terminal reports whether the status ends the workflow. Only resolved is
// terminal; failed, escalated and deferred conflicts may be resubmitted.
func (s ResolutionStatus) Terminal() bool { return s == ResolutionResolved }

// Conflict is a detected scheduling problem between one or more events.
// Conflicts are recomputed on every detection pass; identity across passes is
// given by Signature, not by ID.
type Conflict struct {
	ID                string       `json:"id"`
	Type              ConflictType `json:"type"`
	Severity          Severity     `json:"severity"`
	EventID           string       `json:"event_id"`
	ConflictingEvents []string     `json:"conflicting_events"`

	// DeficitMinutes quantifies the conflict: overlap minutes for temporal
	// conflicts, missing travel minutes for travel conflicts.
	DeficitMinutes float64 `json:"deficit_minutes"`

	Detail      string           `json:"detail,omitempty"`
	ResourceKey string           `json:"resource_key,omitempty"`
	// Detector names the sub-detector that produced the conflict. It is
	// stamped by the detection pass and excluded from the signature.
	Detector   string           `json:"detector,omitempty"`
	DetectedAt time.Time        `json:"detected_at"`
	Status     ResolutionStatus `json:"status"`
}

// NewConflict creates a pending conflict with a fresh id.
func NewConflict(t ConflictType, sev Severity, eventID string, conflicting []string, deficit float64) Conflict {
	return Conflict{
		ID:                uuid.NewString(),
		Type:              t,
		Severity:          sev,
		EventID:           eventID,
		ConflictingEvents: conflicting,
		DeficitMinutes:    deficit,
		DetectedAt:        time.Now(),
		Status:            ResolutionPending,
	}
}

// Signature returns the deduplication key for the conflict: its type plus
// the sorted tuple of all involved event ids. Two conflicts with the same
// signature are the same conflict, regardless of the pass that produced them.
func (c Conflict) Signature() string {
	ids := make([]string, 0, len(c.ConflictingEvents)+1)
	ids = append(ids, c.EventID)
	ids = append(ids, c.ConflictingEvents...)
	sort.Strings(ids)
	return c.Type.String() + ":" + strings.Join(ids, ",")
}

// AllEvents returns the ids of every event involved in the conflict.
func (c Conflict) AllEvents() []string {
	ids := make([]string, 0, len(c.ConflictingEvents)+1)
	ids = append(ids, c.EventID)
	ids = append(ids, c.ConflictingEvents...)
	return ids
}
