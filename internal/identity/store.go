package identity

import (
	"context"

	"trustlayer/internal/sentinel"
	id "trustlayer/pkg/domain"
	dErrors "trustlayer/pkg/domain-errors"
)

// ErrNotFound keeps storage-specific 404s consistent across implementations.
var ErrNotFound = dErrors.Wrap(sentinel.ErrNotFound, dErrors.CodeNotFound, "identity not found")

// Store persists identity records. The interface lives with the domain
// types; implementations live in the store subpackage.
type Store interface {
	// Save stores or overwrites an identity record by ID.
	Save(ctx context.Context, rec Record) error

	// FindByID retrieves an identity record or returns ErrNotFound.
	FindByID(ctx context.Context, identityID id.IdentityID) (Record, error)

	// FindByDID retrieves the identity holding the given DID, or ErrNotFound.
	FindByDID(ctx context.Context, did id.DID) (Record, error)

	// List returns all identities in insertion order.
	List(ctx context.Context) ([]Record, error)

	// Delete removes one identity record.
	Delete(ctx context.Context, identityID id.IdentityID) error

	// Update applies mutate under the store lock and returns the updated
	// record. If mutate returns an error, nothing is written.
	Update(ctx context.Context, identityID id.IdentityID, mutate func(*Record) error) (Record, error)

	// SetActive marks one identity active and every other one inactive,
	// atomically.
	SetActive(ctx context.Context, identityID id.IdentityID) (Record, error)
}
