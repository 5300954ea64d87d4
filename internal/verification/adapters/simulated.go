// Package adapters provides collaborator implementations for the
// verification engine. The simulated clients stand in for on-chain and
// storage-gateway calls: deterministic data derived from the input plus a
// configurable latency to mimic real-world round trips.
package adapters

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	contract "trustlayer/contracts/verification"
	"trustlayer/internal/credential"
)

// SimulatedZKVerifier checks zero-knowledge proof evidence. Outcomes are
// derived from the credential ID so repeated runs agree.
type SimulatedZKVerifier struct {
	Latency time.Duration
	// FailEveryNth forces a deterministic failure slice for demos; zero
	// disables it and every proof passes.
	FailEveryNth uint32
}

func (v SimulatedZKVerifier) CheckProof(ctx context.Context, rec credential.Record) (contract.CheckResult, error) {
	if err := simulateLatency(ctx, v.Latency); err != nil {
		return contract.CheckResult{}, err
	}
	if v.FailEveryNth > 0 && bucket(rec.ID.String())%v.FailEveryNth == 0 {
		return contract.CheckResult{
			Outcome: contract.OutcomeFail,
			Detail:  "proof does not match the committed claim",
		}, nil
	}
	return contract.CheckResult{
		Outcome: contract.OutcomePass,
		Detail:  "proof verified against the stored commitment",
	}, nil
}

// SimulatedStorageChecker validates decentralized storage references.
// A reference is well-formed when it carries a scheme prefix (ipfs://,
// ar://); malformed or empty references fail the integrity check.
type SimulatedStorageChecker struct {
	Latency time.Duration
}

func (c SimulatedStorageChecker) CheckIntegrity(ctx context.Context, ref string) (contract.CheckResult, error) {
	if err := simulateLatency(ctx, c.Latency); err != nil {
		return contract.CheckResult{}, err
	}
	if ref == "" {
		return contract.CheckResult{
			Outcome: contract.OutcomeFail,
			Detail:  "no storage reference recorded",
		}, nil
	}
	if !strings.Contains(ref, "://") {
		return contract.CheckResult{
			Outcome: contract.OutcomeFail,
			Detail:  fmt.Sprintf("unrecognized storage reference %q", ref),
		}, nil
	}
	return contract.CheckResult{
		Outcome: contract.OutcomePass,
		Detail:  "stored content hash matches the credential",
	}, nil
}

// SimulatedIssuerRegistry resolves issuer trust against a fixed allowlist.
// Matching is case-insensitive on the issuer's display name.
type SimulatedIssuerRegistry struct {
	Latency time.Duration
	trusted map[string]struct{}
}

// NewSimulatedIssuerRegistry builds a registry trusting the given issuers.
func NewSimulatedIssuerRegistry(latency time.Duration, issuers ...string) *SimulatedIssuerRegistry {
	trusted := make(map[string]struct{}, len(issuers))
	for _, issuer := range issuers {
		trusted[strings.ToLower(issuer)] = struct{}{}
	}
	return &SimulatedIssuerRegistry{Latency: latency, trusted: trusted}
}

func (r *SimulatedIssuerRegistry) CheckIssuer(ctx context.Context, issuer string) (contract.CheckResult, error) {
	if err := simulateLatency(ctx, r.Latency); err != nil {
		return contract.CheckResult{}, err
	}
	if _, ok := r.trusted[strings.ToLower(issuer)]; ok {
		return contract.CheckResult{
			Outcome: contract.OutcomePass,
			Detail:  "issuer is on the trusted registry",
		}, nil
	}
	return contract.CheckResult{
		Outcome: contract.OutcomeFail,
		Detail:  fmt.Sprintf("issuer %q is not on the trusted registry", issuer),
	}, nil
}

func simulateLatency(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func bucket(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}
