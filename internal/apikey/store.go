package apikey

import (
	"context"

	"trustlayer/internal/sentinel"
	id "trustlayer/pkg/domain"
	dErrors "trustlayer/pkg/domain-errors"
)

// ErrNotFound keeps storage-specific 404s consistent across implementations.
var ErrNotFound = dErrors.Wrap(sentinel.ErrNotFound, dErrors.CodeNotFound, "API key not found")

// Store persists developer API keys.
type Store interface {
	// Save stores or overwrites a key by ID.
	Save(ctx context.Context, key Key) error

	// FindByID retrieves a key or returns ErrNotFound.
	FindByID(ctx context.Context, keyID id.APIKeyID) (Key, error)

	// List returns all keys in creation order.
	List(ctx context.Context) ([]Key, error)

	// Update applies mutate under the store lock and returns the updated
	// key. If mutate returns an error, nothing is written.
	Update(ctx context.Context, keyID id.APIKeyID, mutate func(*Key) error) (Key, error)
}
