package store

import (
	"context"
	"time"

	"trustlayer/internal/credential"
	"trustlayer/internal/sentinel"
	id "trustlayer/pkg/domain"
	dErrors "trustlayer/pkg/domain-errors"
)

// ErrNotFound keeps storage-specific 404s consistent across implementations.
var ErrNotFound = dErrors.Wrap(sentinel.ErrNotFound, dErrors.CodeNotFound, "credential not found")

// Store persists credential records. Implementations must make each
// method atomic so no observer sees a partially updated record.
type Store interface {
	// Save stores or overwrites a credential record by ID.
	Save(ctx context.Context, rec credential.Record) error

	// FindByID retrieves a credential record or returns ErrNotFound.
	FindByID(ctx context.Context, credID id.CredentialID) (credential.Record, error)

	// ListByOwner returns the owner's credentials in insertion order.
	ListByOwner(ctx context.Context, owner id.IdentityID) ([]credential.Record, error)

	// Delete removes one credential record.
	Delete(ctx context.Context, credID id.CredentialID) error

	// DeleteByOwner removes all credentials owned by an identity.
	// Used by identity deletion cascade.
	DeleteByOwner(ctx context.Context, owner id.IdentityID) error

	// RecordVerification atomically increments the verification counter and
	// stamps the completion time. Returns the updated record.
	RecordVerification(ctx context.Context, credID id.CredentialID, at time.Time) (credential.Record, error)

	// Transition applies an issuer status change under the store lock.
	Transition(ctx context.Context, credID id.CredentialID, to credential.Status) (credential.Record, error)
}
