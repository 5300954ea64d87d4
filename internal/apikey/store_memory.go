package apikey

import (
	"context"
	"sync"

	id "trustlayer/pkg/domain"
)

// InMemoryStore keeps API keys in process memory, in creation order.
type InMemoryStore struct {
	mu    sync.RWMutex
	keys  map[id.APIKeyID]Key
	order []id.APIKeyID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{keys: make(map[id.APIKeyID]Key)}
}

func (s *InMemoryStore) Save(_ context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.keys[key.ID]; !exists {
		s.order = append(s.order, key.ID)
	}
	s.keys[key.ID] = cloneKey(key)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, keyID id.APIKeyID) (Key, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key, ok := s.keys[keyID]
	if !ok {
		return Key{}, ErrNotFound
	}
	return cloneKey(key), nil
}

func (s *InMemoryStore) List(_ context.Context) ([]Key, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Key, 0, len(s.order))
	for _, keyID := range s.order {
		out = append(out, cloneKey(s.keys[keyID]))
	}
	return out, nil
}

func (s *InMemoryStore) Update(_ context.Context, keyID id.APIKeyID, mutate func(*Key) error) (Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.keys[keyID]
	if !ok {
		return Key{}, ErrNotFound
	}
	updated := cloneKey(key)
	if err := mutate(&updated); err != nil {
		return Key{}, err
	}
	s.keys[keyID] = cloneKey(updated)
	return updated, nil
}

// cloneKey copies the pointer field so callers cannot mutate stored state
// through a returned value.
func cloneKey(key Key) Key {
	out := key
	if key.LastUsedAt != nil {
		at := *key.LastUsedAt
		out.LastUsedAt = &at
	}
	return out
}
