package verification

import (
	"iter"
	"time"

	contract "trustlayer/contracts/verification"
	id "trustlayer/pkg/domain"
)

// Facet names the five independent checks the engine always reports.
type Facet string

const (
	FacetCredentialValid Facet = "credential_valid"
	FacetZKProofValid    Facet = "zk_proof_valid"
	FacetStorageVerified Facet = "storage_verified"
	FacetIssuerTrusted   Facet = "issuer_trusted"
	FacetNotRevoked      Facet = "not_revoked"
)

// Facets holds the tri-state outcome of every check. The engine never
// short-circuits: a caller can always show which specific facet failed.
type Facets struct {
	CredentialValid contract.Outcome
	ZKProofValid    contract.Outcome
	StorageVerified contract.Outcome
	IssuerTrusted   contract.Outcome
	NotRevoked      contract.Outcome
}

// All yields the facets in their fixed reporting order.
func (f Facets) All() iter.Seq2[Facet, contract.Outcome] {
	return func(yield func(Facet, contract.Outcome) bool) {
		ordered := []struct {
			facet   Facet
			outcome contract.Outcome
		}{
			{FacetCredentialValid, f.CredentialValid},
			{FacetZKProofValid, f.ZKProofValid},
			{FacetStorageVerified, f.StorageVerified},
			{FacetIssuerTrusted, f.IssuerTrusted},
			{FacetNotRevoked, f.NotRevoked},
		}
		for _, entry := range ordered {
			if !yield(entry.facet, entry.outcome) {
				return
			}
		}
	}
}

// AllPassed reports whether every facet affirmatively passed.
func (f Facets) AllPassed() bool {
	for _, outcome := range f.All() {
		if !outcome.Passed() {
			return false
		}
	}
	return true
}

// AnyUnknown reports whether some collaborator could not answer.
func (f Facets) AnyUnknown() bool {
	for _, outcome := range f.All() {
		if !outcome.Known() {
			return true
		}
	}
	return false
}

// Result is the structured outcome of verifying one credential.
type Result struct {
	CredentialID id.CredentialID
	Facets       Facets
	IsValid      bool
	TrustScore   int
	// Unavailable lists facets that degraded to unknown because their
	// collaborator was unreachable or timed out.
	Unavailable []Facet
	// VerificationCount is the credential's counter after this run.
	VerificationCount int
	VerifiedAt        time.Time
	Latencies         CheckLatencies
}

// CheckLatencies tracks per-collaborator fetch times for metrics.
type CheckLatencies struct {
	ZKProof time.Duration
	Storage time.Duration
	Issuer  time.Duration
}
