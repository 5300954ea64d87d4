package store

import (
	"context"
	"sync"

	"trustlayer/internal/identity"
	id "trustlayer/pkg/domain"
)

// InMemoryStore keeps identity records in process memory. Suitable for a
// single-user console; swap for a persistent store behind the same
// interface.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[id.IdentityID]identity.Record
	order   []id.IdentityID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[id.IdentityID]identity.Record),
	}
}

func (s *InMemoryStore) Save(_ context.Context, rec identity.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.ID]; !exists {
		s.order = append(s.order, rec.ID)
	}
	s.records[rec.ID] = cloneRecord(rec)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, identityID id.IdentityID) (identity.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[identityID]
	if !ok {
		return identity.Record{}, ErrNotFound
	}
	return cloneRecord(rec), nil
}

func (s *InMemoryStore) FindByDID(_ context.Context, did id.DID) (identity.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.records {
		if rec.DID == did {
			return cloneRecord(rec), nil
		}
	}
	return identity.Record{}, ErrNotFound
}

func (s *InMemoryStore) List(_ context.Context) ([]identity.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]identity.Record, 0, len(s.order))
	for _, identityID := range s.order {
		if rec, ok := s.records[identityID]; ok {
			out = append(out, cloneRecord(rec))
		}
	}
	return out, nil
}

func (s *InMemoryStore) Delete(_ context.Context, identityID id.IdentityID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[identityID]; !ok {
		return ErrNotFound
	}
	delete(s.records, identityID)
	for i, existing := range s.order {
		if existing == identityID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, identityID id.IdentityID, mutate func(*identity.Record) error) (identity.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[identityID]
	if !ok {
		return identity.Record{}, ErrNotFound
	}
	updated := cloneRecord(rec)
	if err := mutate(&updated); err != nil {
		return identity.Record{}, err
	}
	// The ID is the map key; a mutation must not move the record.
	updated.ID = identityID
	s.records[identityID] = cloneRecord(updated)
	return updated, nil
}

func (s *InMemoryStore) SetActive(_ context.Context, identityID id.IdentityID) (identity.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, ok := s.records[identityID]
	if !ok {
		return identity.Record{}, ErrNotFound
	}
	for otherID, rec := range s.records {
		if rec.Status == identity.StatusActive && otherID != identityID {
			rec.Status = identity.StatusInactive
			s.records[otherID] = rec
		}
	}
	target.Status = identity.StatusActive
	s.records[identityID] = target
	return cloneRecord(target), nil
}

// cloneRecord copies the record's slice fields so callers cannot mutate
// stored state through a returned value.
func cloneRecord(rec identity.Record) identity.Record {
	out := rec
	if rec.SeedPhrase != nil {
		out.SeedPhrase = append([]string(nil), rec.SeedPhrase...)
	}
	if rec.Guardians != nil {
		out.Guardians = append([]identity.Guardian(nil), rec.Guardians...)
	}
	if rec.Multisig != nil {
		cfg := *rec.Multisig
		if cfg.Signers != nil {
			cfg.Signers = append([]identity.MultisigSigner(nil), cfg.Signers...)
		}
		out.Multisig = &cfg
	}
	return out
}
