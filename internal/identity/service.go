package identity

import (
	"context"
	"log/slog"
	"time"

	"trustlayer/internal/audit"
	credstore "trustlayer/internal/credential/store"
	id "trustlayer/pkg/domain"
	platformsync "trustlayer/pkg/platform/sync"
)

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service manages the identity lifecycle: creation with fresh key
// material, activation focus, and deletion with credential cascade.
type Service struct {
	identities  Store
	credentials credstore.Store
	auditor     AuditPublisher
	logger      *slog.Logger
	locks       *platformsync.ShardedMutex
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the logger for the service.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithAuditor sets the activity event sink.
func WithAuditor(a AuditPublisher) Option {
	return func(s *Service) { s.auditor = a }
}

// NewService creates an identity service. The credential store is needed
// for the deletion cascade.
func NewService(identities Store, credentials credstore.Store, opts ...Option) *Service {
	if identities == nil {
		panic("identity.NewService: identity store is required")
	}
	if credentials == nil {
		panic("identity.NewService: credential store is required")
	}
	s := &Service{
		identities:  identities,
		credentials: credentials,
		locks:       platformsync.NewShardedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create mints a new identity persona. The first identity created becomes
// the active one automatically; later identities start inactive.
func (s *Service) Create(ctx context.Context, name string, idType Type, opts ...RecordOption) (Record, error) {
	rec, err := New(name, idType, opts...)
	if err != nil {
		return Record{}, err
	}

	existing, err := s.identities.List(ctx)
	if err != nil {
		return Record{}, err
	}
	if len(existing) == 0 {
		rec.Status = StatusActive
	}

	if err := s.identities.Save(ctx, rec); err != nil {
		return Record{}, err
	}

	s.emit(ctx, rec.ID, rec.DID.String(), audit.EventIdentityCreated, string(idType))
	if s.logger != nil {
		s.logger.InfoContext(ctx, "identity created",
			"identity_id", rec.ID.String(),
			"did", rec.DID.String(),
			"type", string(idType),
		)
	}
	return rec, nil
}

// Get retrieves one identity record.
func (s *Service) Get(ctx context.Context, identityID id.IdentityID) (Record, error) {
	return s.identities.FindByID(ctx, identityID)
}

// GetByDID retrieves the identity holding the given DID.
func (s *Service) GetByDID(ctx context.Context, did id.DID) (Record, error) {
	return s.identities.FindByDID(ctx, did)
}

// List returns all identities in creation order.
func (s *Service) List(ctx context.Context) ([]Record, error) {
	return s.identities.List(ctx)
}

// Active returns the currently active identity, or ErrNotFound when
// no identity is active.
func (s *Service) Active(ctx context.Context) (Record, error) {
	all, err := s.identities.List(ctx)
	if err != nil {
		return Record{}, err
	}
	for _, rec := range all {
		if rec.Status == StatusActive {
			return rec, nil
		}
	}
	return Record{}, ErrNotFound
}

// SetActive switches the console's focus to the given identity,
// deactivating every other one.
func (s *Service) SetActive(ctx context.Context, identityID id.IdentityID) (Record, error) {
	return s.identities.SetActive(ctx, identityID)
}

// Delete removes an identity and cascades to its credentials. The two
// deletions are serialized per identity so a concurrent ingest cannot
// slip a credential in between.
func (s *Service) Delete(ctx context.Context, identityID id.IdentityID) error {
	key := identityID.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	rec, err := s.identities.FindByID(ctx, identityID)
	if err != nil {
		return err
	}
	if err := s.credentials.DeleteByOwner(ctx, identityID); err != nil {
		return err
	}
	if err := s.identities.Delete(ctx, identityID); err != nil {
		return err
	}

	s.emit(ctx, identityID, rec.DID.String(), audit.EventIdentityDeleted, rec.Name)
	if s.logger != nil {
		s.logger.InfoContext(ctx, "identity deleted with credential cascade",
			"identity_id", key,
		)
	}
	return nil
}

// UpdateLocked applies mutate to the identity under its per-identity lock.
// Recovery flows use this for multi-step read-modify sequences.
func (s *Service) UpdateLocked(ctx context.Context, identityID id.IdentityID, mutate func(*Record) error) (Record, error) {
	key := identityID.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	return s.identities.Update(ctx, identityID, mutate)
}

func (s *Service) emit(ctx context.Context, identityID id.IdentityID, subject string, action audit.ActivityEvent, detail string) {
	if s.auditor == nil {
		return
	}
	event := audit.Event{
		Timestamp:  time.Now(),
		IdentityID: identityID.String(),
		Subject:    subject,
		Action:     string(action),
		Detail:     detail,
	}
	if err := s.auditor.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit identity activity event",
			"error", err,
			"action", string(action),
		)
	}
}
