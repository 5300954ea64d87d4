// Package seeder populates the in-memory stores with demo data so the
// console has something to show on first launch.
package seeder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"trustlayer/internal/credential"
	"trustlayer/internal/identity"
)

// IdentityService creates demo identities.
type IdentityService interface {
	Create(ctx context.Context, name string, idType identity.Type, opts ...identity.RecordOption) (identity.Record, error)
}

// CredentialStore persists demo credential records.
type CredentialStore interface {
	Save(ctx context.Context, rec credential.Record) error
}

// Seeder loads the demo wallet.
type Seeder struct {
	identities  IdentityService
	credentials CredentialStore
	logger      *slog.Logger
}

// New creates a seeder.
func New(identities IdentityService, credentials CredentialStore, logger *slog.Logger) *Seeder {
	return &Seeder{identities: identities, credentials: credentials, logger: logger}
}

// SeedAll creates the demo identity and its credential set.
func (s *Seeder) SeedAll(ctx context.Context) error {
	s.logger.Info("seeding demo data...")

	owner, err := s.identities.Create(ctx, "Alex Rivera", identity.TypeProfessional,
		identity.WithDescription("Primary professional identity"))
	if err != nil {
		return fmt.Errorf("failed to seed identity: %w", err)
	}

	count, err := s.seedCredentials(ctx, owner)
	if err != nil {
		return fmt.Errorf("failed to seed credentials: %w", err)
	}

	s.logger.Info("demo data seeded successfully",
		"identity", owner.Name,
		"credentials", count,
	)
	return nil
}

func (s *Seeder) seedCredentials(ctx context.Context, owner identity.Record) (int, error) {
	now := time.Now()
	seeds := []struct {
		title   string
		issuer  string
		issued  time.Time
		expires time.Time
		opts    []credential.RecordOption
	}{
		{
			title:   "Senior Engineer Attestation",
			issuer:  "TechCorp Inc.",
			issued:  now.AddDate(-1, -2, 0),
			expires: now.AddDate(1, 10, 0),
			opts: []credential.RecordOption{
				credential.WithStatus(credential.StatusVerified),
				credential.WithZKProof(),
				credential.WithStorageRef("ipfs://QmTechCorpAttest01"),
			},
		},
		{
			title:   "Blockchain Development Certificate",
			issuer:  "Web3 Academy",
			issued:  now.AddDate(0, -8, 0),
			expires: now.AddDate(2, 4, 0),
			opts: []credential.RecordOption{
				credential.WithStatus(credential.StatusVerified),
				credential.WithStorageRef("ipfs://QmWeb3AcademyCert02"),
			},
		},
		{
			title:   "Security Audit Clearance",
			issuer:  "Security Labs",
			issued:  now.AddDate(0, -1, 0),
			expires: now.AddDate(0, 11, 0),
			opts: []credential.RecordOption{
				credential.WithStorageRef("ipfs://QmSecLabsClear03"),
			},
		},
	}

	for _, seed := range seeds {
		opts := append(seed.opts, credential.WithOwner(owner.ID))
		rec, err := credential.New(seed.title, seed.issuer, owner.DID, seed.issued, seed.expires, opts...)
		if err != nil {
			return 0, err
		}
		if err := s.credentials.Save(ctx, rec); err != nil {
			return 0, err
		}
	}
	return len(seeds), nil
}
