// Package verification hosts the stable, minimal DTOs shared between the
// verification engine and external trust collaborators (ZK verifiers,
// storage gateways, issuer registries). Keep these small and versioned
// independently from any internal credential schemas.
package verification

// ContractVersion identifies the contract schema version for compatibility checks.
// Bump on breaking changes to the shapes below; consumers can pin or roll forward.
const ContractVersion = "v0.1.0"

// Outcome is the tri-state result of a collaborator check. Unknown means
// the collaborator could not answer (timeout, outage); it is distinct from
// Fail so callers can tell "failed" from "could not check".
type Outcome string

const (
	OutcomePass    Outcome = "pass"
	OutcomeFail    Outcome = "fail"
	OutcomeUnknown Outcome = "unknown"
)

// FromBool converts a collaborator's boolean answer into an Outcome.
func FromBool(ok bool) Outcome {
	if ok {
		return OutcomePass
	}
	return OutcomeFail
}

// Passed reports whether the check affirmatively succeeded.
func (o Outcome) Passed() bool { return o == OutcomePass }

// Known reports whether the collaborator actually answered.
func (o Outcome) Known() bool { return o == OutcomePass || o == OutcomeFail }

// CheckResult is the minimal contract for a single collaborator check.
type CheckResult struct {
	Outcome Outcome
	// Detail optionally names the reason for a Fail or Unknown outcome.
	Detail string
}
