package audit

import (
	"context"

	"trustlayer/internal/sentinel"
	dErrors "trustlayer/pkg/domain-errors"
)

// ErrNotFound keeps storage-specific 404s consistent across implementations.
var ErrNotFound = dErrors.Wrap(sentinel.ErrNotFound, dErrors.CodeNotFound, "record not found")

type Store interface {
	Append(ctx context.Context, event Event) error
	ListByIdentity(ctx context.Context, identityID string) ([]Event, error)
	// ListRecent returns up to limit events, newest first.
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
