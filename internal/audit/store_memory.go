package audit

import (
	"context"
	"sync"
)

type InMemoryStore struct {
	mu         sync.RWMutex
	byIdentity map[string][]Event
	ordered    []Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byIdentity: make(map[string][]Event)}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byIdentity = make(map[string][]Event)
	s.ordered = nil
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byIdentity[event.IdentityID] = append(s.byIdentity[event.IdentityID], event)
	s.ordered = append(s.ordered, event)
	return nil
}

func (s *InMemoryStore) ListByIdentity(_ context.Context, identityID string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.byIdentity[identityID]...), nil
}

// ListRecent returns up to limit events, newest first.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.ordered) {
		limit = len(s.ordered)
	}
	out := make([]Event, 0, limit)
	for i := len(s.ordered) - 1; i >= len(s.ordered)-limit; i-- {
		out = append(out, s.ordered[i])
	}
	return out, nil
}
