// Package recovery manages the three safety nets attached to an identity:
// the seed phrase, social-recovery guardians, and a multisig signer
// policy. All mutations run under the identity's per-record lock.
package recovery

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"trustlayer/internal/audit"
	"trustlayer/internal/identity"
	id "trustlayer/pkg/domain"
	dErrors "trustlayer/pkg/domain-errors"
)

// GuardianQuorum is the number of confirmed guardians needed before
// social recovery counts as configured.
const GuardianQuorum = 2

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// IdentityAccess is the slice of the identity service recovery needs.
type IdentityAccess interface {
	Get(ctx context.Context, identityID id.IdentityID) (identity.Record, error)
	UpdateLocked(ctx context.Context, identityID id.IdentityID, mutate func(*identity.Record) error) (identity.Record, error)
}

// Service drives seed, guardian, and multisig flows for one wallet.
type Service struct {
	identities IdentityAccess
	auditor    AuditPublisher
	logger     *slog.Logger
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithAuditor(a AuditPublisher) Option {
	return func(s *Service) { s.auditor = a }
}

func NewService(identities IdentityAccess, opts ...Option) *Service {
	if identities == nil {
		panic("recovery.NewService: identity access is required")
	}
	s := &Service{identities: identities}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RevealSeed unmasks the seed phrase for display and returns the words.
// The revealed state persists until HideSeed is called.
func (s *Service) RevealSeed(ctx context.Context, identityID id.IdentityID) ([]string, error) {
	rec, err := s.identities.UpdateLocked(ctx, identityID, func(r *identity.Record) error {
		r.SeedRevealed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec.SeedPhrase, nil
}

// HideSeed re-masks the seed phrase, disabling copy and masking it in
// downloaded kits.
func (s *Service) HideSeed(ctx context.Context, identityID id.IdentityID) error {
	_, err := s.identities.UpdateLocked(ctx, identityID, func(r *identity.Record) error {
		r.SeedRevealed = false
		return nil
	})
	return err
}

// CopySeed returns the seed phrase in clipboard form. Guarded: the phrase
// must currently be revealed, so a user cannot copy what they cannot see.
func (s *Service) CopySeed(ctx context.Context, identityID id.IdentityID) (string, error) {
	rec, err := s.identities.Get(ctx, identityID)
	if err != nil {
		return "", err
	}
	if !rec.SeedRevealed {
		return "", dErrors.New(dErrors.CodeSecretHidden, "seed phrase must be revealed before copying")
	}
	return strings.Join(rec.SeedPhrase, " "), nil
}

// AddGuardian registers a trusted party in pending state. Guardian
// addresses are unique per identity, compared case-insensitively.
func (s *Service) AddGuardian(ctx context.Context, identityID id.IdentityID, address, displayName string) (identity.Guardian, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return identity.Guardian{}, dErrors.New(dErrors.CodeInvalidInput, "guardian address cannot be empty")
	}

	guardian := identity.Guardian{
		Address:     address,
		DisplayName: strings.TrimSpace(displayName),
		Status:      identity.GuardianPending,
		AddedAt:     time.Now(),
	}

	_, err := s.identities.UpdateLocked(ctx, identityID, func(r *identity.Record) error {
		if _, exists := r.GuardianByAddress(address); exists {
			return dErrors.New(dErrors.CodeDuplicateGuardian, "guardian already registered: "+address)
		}
		r.Guardians = append(r.Guardians, guardian)
		return nil
	})
	if err != nil {
		return identity.Guardian{}, err
	}

	s.emit(ctx, identityID, address, audit.EventGuardianAdded, guardian.DisplayName)
	return guardian, nil
}

// ConfirmGuardian completes the handshake for a pending guardian.
func (s *Service) ConfirmGuardian(ctx context.Context, identityID id.IdentityID, address string) (identity.Guardian, error) {
	var confirmed identity.Guardian
	_, err := s.identities.UpdateLocked(ctx, identityID, func(r *identity.Record) error {
		for i, g := range r.Guardians {
			if strings.EqualFold(g.Address, address) {
				r.Guardians[i].Status = identity.GuardianConfirmed
				confirmed = r.Guardians[i]
				return nil
			}
		}
		return dErrors.New(dErrors.CodeNotFound, "guardian not registered: "+address)
	})
	if err != nil {
		return identity.Guardian{}, err
	}

	s.emit(ctx, identityID, address, audit.EventGuardianConfirmed, "")
	return confirmed, nil
}

// RemoveGuardian drops a guardian regardless of confirmation state.
func (s *Service) RemoveGuardian(ctx context.Context, identityID id.IdentityID, address string) error {
	_, err := s.identities.UpdateLocked(ctx, identityID, func(r *identity.Record) error {
		for i, g := range r.Guardians {
			if strings.EqualFold(g.Address, address) {
				r.Guardians = append(r.Guardians[:i], r.Guardians[i+1:]...)
				return nil
			}
		}
		return dErrors.New(dErrors.CodeNotFound, "guardian not registered: "+address)
	})
	return err
}

// ConfigureMultisig sets the M-of-N signer policy. The signer list
// defines N; signers without a status default to active.
func (s *Service) ConfigureMultisig(ctx context.Context, identityID id.IdentityID, required int, signers []identity.MultisigSigner) (identity.MultisigConfig, error) {
	for i := range signers {
		if signers[i].Status == "" {
			signers[i].Status = identity.SignerActive
		}
	}
	cfg := identity.MultisigConfig{Required: required, Total: len(signers), Signers: signers}
	if err := cfg.Validate(); err != nil {
		return identity.MultisigConfig{}, err
	}
	_, err := s.identities.UpdateLocked(ctx, identityID, func(r *identity.Record) error {
		r.Multisig = &cfg
		return nil
	})
	if err != nil {
		return identity.MultisigConfig{}, err
	}
	return cfg, nil
}

// Status summarizes which recovery methods the identity has configured.
func (s *Service) Status(ctx context.Context, identityID id.IdentityID) (MethodStatus, error) {
	rec, err := s.identities.Get(ctx, identityID)
	if err != nil {
		return MethodStatus{}, err
	}
	return MethodStatus{
		SeedPhraseSet:      len(rec.SeedPhrase) > 0,
		GuardiansTotal:     len(rec.Guardians),
		GuardiansConfirmed: rec.ConfirmedGuardians(),
		GuardianQuorumMet:  rec.ConfirmedGuardians() >= GuardianQuorum,
		MultisigConfigured: rec.Multisig != nil,
	}, nil
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
		s.logger.WarnContext(ctx, "failed to emit recovery activity event",
			"error", err,
			"action", string(action),
		)
	}
}
