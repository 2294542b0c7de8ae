package resolve

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/courtflow/courtsched/core/model"
)

// Record is one audit entry: a single resolution attempt with its outcome.
type Record struct {
	ID           string                 `json:"id"`
	Signature    string                 `json:"signature"`
	ConflictType string                 `json:"conflict_type"`
	Strategy     string                 `json:"strategy"`
	Actor        string                 `json:"actor"`
	Timestamp    time.Time              `json:"timestamp"`
	Status       model.ResolutionStatus `json:"status"`
	Rationale    string                 `json:"rationale"`
	// Superseded marks an attempt whose triggering condition no longer
	// held when the strategy was about to run.
	Superseded bool `json:"superseded,omitempty"`
}

// Query defines filters for retrieving audit records.
type Query struct {
	Start     time.Time
	End       time.Time
	Signature string
	Strategy  string
}

func (q Query) matches(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Signature != "" && r.Signature != q.Signature {
		return false
	}
	if q.Strategy != "" && r.Strategy != q.Strategy {
		return false
	}
	return true
}

// AuditStore persists resolution records and supports querying.
type AuditStore interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// MemoryStore keeps records in memory. It is the default backend and the
// one used in tests.
type MemoryStore struct {
	mu   sync.Mutex
	recs []Record
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Append(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, rec)
	return nil
}

func (s *MemoryStore) Query(_ context.Context, q Query) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []Record
	for _, r := range s.recs {
		if q.matches(r) {
			res = append(res, r)
		}
	}
	return res, nil
}

func (s *MemoryStore) Close() error { return nil }

// NewAuditStore builds the store selected by cfg.
func NewAuditStore(cfg AuditConfig) (AuditStore, error) {
	switch cfg.Store {
	case "", "memory":
		return NewMemoryStore(), nil
	case "jsonl":
		return NewJSONLStore(cfg.Path)
	case "rotating":
		return NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown audit store %q", cfg.Store)
	}
}
