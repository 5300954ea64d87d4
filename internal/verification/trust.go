package verification

import contract "trustlayer/contracts/verification"

// Trust score weighting. Each passing facet contributes its fixed weight;
// failed and unknown facets contribute nothing, so strictly more passing
// facets never lowers the score. The two structural gatekeepers
// (credential validity and non-revocation) carry the highest weight.
const (
	weightCredentialValid = 30
	weightNotRevoked      = 30
	weightStorageVerified = 15
	weightIssuerTrusted   = 15
	weightZKProofValid    = 10
)

// TrustScore derives the display score in [0,100] from the facet outcomes.
// It is recomputed per verification, never stored independently.
func TrustScore(f Facets) int {
	score := 0
	add := func(outcome contract.Outcome, weight int) {
		if outcome.Passed() {
			score += weight
		}
	}
	add(f.CredentialValid, weightCredentialValid)
	add(f.NotRevoked, weightNotRevoked)
	add(f.StorageVerified, weightStorageVerified)
	add(f.IssuerTrusted, weightIssuerTrusted)
	add(f.ZKProofValid, weightZKProofValid)
	return score
}
