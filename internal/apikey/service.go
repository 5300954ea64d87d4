package apikey

import (
	"context"
	"log/slog"
	"time"

	"trustlayer/internal/audit"
	"trustlayer/internal/sentinel"
	id "trustlayer/pkg/domain"
	dErrors "trustlayer/pkg/domain-errors"
)

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service drives the developer-tools key lifecycle.
type Service struct {
	keys    Store
	auditor AuditPublisher
	logger  *slog.Logger
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithAuditor(a AuditPublisher) Option {
	return func(s *Service) { s.auditor = a }
}

func NewService(keys Store, opts ...Option) *Service {
	if keys == nil {
		panic("apikey.NewService: key store is required")
	}
	s := &Service{keys: keys}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate mints and persists a new key. The response is the only place
// the full token is guaranteed fresh; the dashboard lists it afterwards.
func (s *Service) Generate(ctx context.Context, name string) (Key, error) {
	key, err := New(name)
	if err != nil {
		return Key{}, err
	}
	if err := s.keys.Save(ctx, key); err != nil {
		return Key{}, err
	}

	s.emit(ctx, key, audit.EventAPIKeyGenerated)
	if s.logger != nil {
		s.logger.InfoContext(ctx, "api key generated",
			"key_id", key.ID.String(),
			"name", key.Name,
		)
	}
	return key, nil
}

// List returns every key, active and revoked, in creation order.
func (s *Service) List(ctx context.Context) ([]Key, error) {
	return s.keys.List(ctx)
}

// Revoke soft-deletes a key: it stops authorizing requests but stays
// listed with its history. Revoking twice is an invalid transition.
func (s *Service) Revoke(ctx context.Context, keyID id.APIKeyID) (Key, error) {
	key, err := s.keys.Update(ctx, keyID, func(k *Key) error {
		if k.Status == StatusRevoked {
			return dErrors.Wrap(sentinel.ErrInvalidState, dErrors.CodeInvalidTransition,
				"API key is already revoked")
		}
		k.Status = StatusRevoked
		return nil
	})
	if err != nil {
		return Key{}, err
	}

	s.emit(ctx, key, audit.EventAPIKeyRevoked)
	if s.logger != nil {
		s.logger.InfoContext(ctx, "api key revoked", "key_id", key.ID.String())
	}
	return key, nil
}

// RecordUse counts one request against the key and stamps last use.
// Revoked keys no longer accept requests.
func (s *Service) RecordUse(ctx context.Context, keyID id.APIKeyID) (Key, error) {
	return s.keys.Update(ctx, keyID, func(k *Key) error {
		if k.Status == StatusRevoked {
			return dErrors.New(dErrors.CodeUnauthorized, "API key is revoked")
		}
		now := time.Now()
		k.RequestCount++
		k.LastUsedAt = &now
		return nil
	})
}

func (s *Service) emit(ctx context.Context, key Key, action audit.ActivityEvent) {
	if s.auditor == nil {
		return
	}
	event := audit.Event{
		Timestamp: time.Now(),
		Subject:   key.ID.String(),
		Action:    string(action),
		Detail:    key.Name,
	}
	if err := s.auditor.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit api key activity event",
			"error", err,
			"action", string(action),
		)
	}
}
