package audit

import (
	"context"
	"slices"
	"sync"
)

// MemorySink keeps entries in process for tests.
type MemorySink struct {
	mu      sync.Mutex
	entries []*Entry
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Append(_ context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *entry
	s.entries = append(s.entries, &cp)
	return nil
}

func (s *MemorySink) List(_ context.Context, filter Filter) ([]*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	out := make([]*Entry, 0, min(limit, len(s.entries)))
	for _, e := range slices.Backward(s.entries) {
		if len(out) == limit {
			break
		}
		if filter.matches(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f Filter) matches(e *Entry) bool {
	switch {
	case !f.ActorID.IsZero() && (e.ActorID == nil || *e.ActorID != f.ActorID):
		return false
	case f.Action != "" && e.Action != f.Action:
		return false
	case f.TargetType != "" && e.TargetType != f.TargetType:
		return false
	case f.Start != nil && e.CreatedAt.Before(*f.Start):
		return false
	case f.End != nil && !e.CreatedAt.Before(*f.End):
		return false
	}
	return true
}

// Entries returns a snapshot in append order.
func (s *MemorySink) Entries() []*Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.entries)
}
