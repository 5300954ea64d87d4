// Package ports declares the collaborator interfaces the verification
// engine depends on. Real implementations (ZK verifier backends, storage
// gateways, issuer registries) live outside this module; simulated ones
// live in internal/verification/adapters.
package ports

import (
	"context"

	contract "trustlayer/contracts/verification"
	"trustlayer/internal/credential"
)

// ZKProofVerifier checks the zero-knowledge proof attached to a credential.
// Only consulted when the credential carries a proof.
type ZKProofVerifier interface {
	CheckProof(ctx context.Context, rec credential.Record) (contract.CheckResult, error)
}

// StorageChecker confirms that a storage reference still resolves to
// unmodified content.
type StorageChecker interface {
	CheckIntegrity(ctx context.Context, storageRef string) (contract.CheckResult, error)
}

// IssuerRegistry confirms the issuer is on a trusted registry.
type IssuerRegistry interface {
	CheckIssuer(ctx context.Context, issuer string) (contract.CheckResult, error)
}
