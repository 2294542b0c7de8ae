package events

import (
	"time"

	"github.com/courtflow/courtsched/core/model"
)

// ConflictEvent is published after a detection pass with the deduplicated
// conflict list.
type ConflictEvent struct {
	Conflicts []model.Conflict
	Elapsed   time.Duration
}

// ResolutionEvent is published for each resolution attempt.
type ResolutionEvent struct {
	Signature string
	Strategy  string
	Status    model.ResolutionStatus
	Err       error
}

// OptimizeEvent summarizes one optimizer run.
type OptimizeEvent struct {
	Algorithm  string
	Events     int
	Assigned   int
	Unassigned int
	Score      float64
	Elapsed    time.Duration
}

// TravelFallbackEvent marks an estimate produced by the fallback provider.
type TravelFallbackEvent struct {
	OriginID      string
	DestinationID string
	Mode          model.TravelMode
}
