package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Category classifies a scheduled court event. The ordering of the constants
// reflects increasing scheduling priority.
type Category int

const (
	CategoryMeeting Category = iota
	CategoryConference
	CategoryDeadline
	CategoryDeposition
	CategoryMotion
	CategoryHearing
	CategoryTrial
)

// String returns a human-readable representation of the category.
func (c Category) String() string {
	switch c {
	case CategoryMeeting:
		return "meeting"
	case CategoryConference:
		return "conference"
	case CategoryDeadline:
		return "deadline"
	case CategoryDeposition:
		return "deposition"
	case CategoryMotion:
		return "motion"
	case CategoryHearing:
		return "hearing"
	case CategoryTrial:
		return "trial"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the category by name.
func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes a category name.
func (c *Category) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for cat := CategoryMeeting; cat <= CategoryTrial; cat++ {
		if cat.String() == name {
			*c = cat
			return nil
		}
	}
	return fmt.Errorf("unknown category %q", name)
}

// Priority returns the scheduling priority rank of the category. Higher
// values are scheduled first and win tie-breaks during conflict resolution.
func (c Category) Priority() int { return int(c) }

// IsHighPriority returns true for categories that escalate conflict severity.
func (c Category) IsHighPriority() bool {
	return c == CategoryTrial || c == CategoryHearing
}

// IsCourtEvent returns true for events held before the court. Court events are
// kept fixed by the prefer-court resolution strategy.
func (c Category) IsCourtEvent() bool {
	return c == CategoryTrial || c == CategoryHearing || c == CategoryMotion
}

// EventStatus tracks the lifecycle of an event.
type EventStatus string

const (
	StatusScheduled   EventStatus = "scheduled"
	StatusRescheduled EventStatus = "rescheduled"
	StatusCancelled   EventStatus = "cancelled"
	StatusCompleted   EventStatus = "completed"
)

// TimeRange is a half-open interval [Start, End).
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps reports whether the two ranges share any time.
func (t TimeRange) Overlaps(other TimeRange) bool {
	return t.Start.Before(other.End) && other.Start.Before(t.End)
}

// OverlapMinutes returns the overlap between the two ranges in minutes,
// or zero if they do not overlap. The result is symmetric.
func (t TimeRange) OverlapMinutes(other TimeRange) float64 {
	start := t.Start
	if other.Start.After(start) {
		start = other.Start
	}
	end := t.End
	if other.End.Before(end) {
		end = other.End
	}
	if !start.Before(end) {
		return 0
	}
	return end.Sub(start).Minutes()
}

// Duration returns the length of the range.
func (t TimeRange) Duration() time.Duration { return t.End.Sub(t.Start) }

// Gap returns the time between the end of t and the start of other.
// Negative values indicate overlap.
func (t TimeRange) Gap(other TimeRange) time.Duration {
	return other.Start.Sub(t.End)
}

// Shift returns the range moved forward by d. Negative values move it back.
func (t TimeRange) Shift(d time.Duration) TimeRange {
	return TimeRange{Start: t.Start.Add(d), End: t.End.Add(d)}
}

// Event is a time-boxed court event with resource and location requirements.
type Event struct {
	ID           string                `json:"id"`
	Title        string                `json:"title"`
	Window       TimeRange             `json:"window"`
	Category     Category              `json:"category"`
	Resources    []ResourceRequirement `json:"resources"`
	LocationID   string                `json:"location_id"`
	Participants []string              `json:"participants"`
	MatterID     string                `json:"matter_id,omitempty"`
	Status       EventStatus           `json:"status"`
	Confidence   float64               `json:"confidence"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// Reschedule returns a copy of the event moved to the given window. The
// identity of the event is preserved; only the window, status and update
// timestamp change.
func (e Event) Reschedule(w TimeRange, now time.Time) Event {
	e.Window = w
	e.Status = StatusRescheduled
	e.UpdatedAt = now
	return e
}

// Judge returns the id of the judge required by the event, or an empty
// string when no judge requirement exists.
func (e Event) Judge() string {
	for _, r := range e.Resources {
		if r.Kind == ResourceJudge {
			return r.ResourceID
		}
	}
	return ""
}

// HasParticipant reports whether the given participant is attached to the
// event.
func (e Event) HasParticipant(id string) bool {
	for _, p := range e.Participants {
		if p == id {
			return true
		}
	}
	return false
}

// SharedParticipants returns the participants present on both events.
func (e Event) SharedParticipants(other Event) []string {
	var shared []string
	for _, p := range e.Participants {
		if other.HasParticipant(p) {
			shared = append(shared, p)
		}
	}
	return shared
}
