package store

import (
	"context"
	"sync"
	"time"

	"trustlayer/internal/credential"
	id "trustlayer/pkg/domain"
)

// InMemoryStore is an in-memory implementation of Store. It is safe for
// concurrent access but does not persist across process restarts, which is
// the session-scoped model the console runs under.
type InMemoryStore struct {
	mu          sync.RWMutex
	credentials map[string]credential.Record
	// byOwner preserves insertion order per identity.
	byOwner map[string][]id.CredentialID
}

// NewInMemoryStore constructs an empty in-memory credential store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		credentials: make(map[string]credential.Record),
		byOwner:     make(map[string][]id.CredentialID),
	}
}

// Save stores or overwrites a credential record by ID.
func (s *InMemoryStore) Save(_ context.Context, rec credential.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := rec.ID.String()
	if _, exists := s.credentials[key]; !exists && !rec.OwnerID.IsNil() {
		ownerKey := rec.OwnerID.String()
		s.byOwner[ownerKey] = append(s.byOwner[ownerKey], rec.ID)
	}
	s.credentials[key] = rec
	return nil
}

// FindByID retrieves a credential record by ID or returns ErrNotFound.
func (s *InMemoryStore) FindByID(_ context.Context, credID id.CredentialID) (credential.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.credentials[credID.String()]; ok {
		return rec, nil
	}
	return credential.Record{}, ErrNotFound
}

// ListByOwner returns the owner's credentials in insertion order.
func (s *InMemoryStore) ListByOwner(_ context.Context, owner id.IdentityID) ([]credential.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byOwner[owner.String()]
	out := make([]credential.Record, 0, len(ids))
	for _, credID := range ids {
		if rec, ok := s.credentials[credID.String()]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Delete removes one credential record.
func (s *InMemoryStore) Delete(_ context.Context, credID id.CredentialID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.credentials[credID.String()]
	if !ok {
		return ErrNotFound
	}
	delete(s.credentials, credID.String())
	if !rec.OwnerID.IsNil() {
		s.byOwner[rec.OwnerID.String()] = removeID(s.byOwner[rec.OwnerID.String()], credID)
	}
	return nil
}

// DeleteByOwner removes all credentials owned by an identity.
func (s *InMemoryStore) DeleteByOwner(_ context.Context, owner id.IdentityID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, credID := range s.byOwner[owner.String()] {
		delete(s.credentials, credID.String())
	}
	delete(s.byOwner, owner.String())
	return nil
}

// RecordVerification atomically increments the verification counter.
func (s *InMemoryStore) RecordVerification(_ context.Context, credID id.CredentialID, at time.Time) (credential.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.credentials[credID.String()]
	if !ok {
		return credential.Record{}, ErrNotFound
	}
	rec.RecordVerification(at)
	s.credentials[credID.String()] = rec
	return rec, nil
}

// Transition applies an issuer status change under the store lock.
func (s *InMemoryStore) Transition(_ context.Context, credID id.CredentialID, to credential.Status) (credential.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.credentials[credID.String()]
	if !ok {
		return credential.Record{}, ErrNotFound
	}
	if err := rec.Transition(to); err != nil {
		return credential.Record{}, err
	}
	s.credentials[credID.String()] = rec
	return rec, nil
}

func removeID(ids []id.CredentialID, target id.CredentialID) []id.CredentialID {
	out := ids[:0]
	for _, v := range ids {
		if v != target {
			out = append(out, v)
		}
	}
	return out
}
