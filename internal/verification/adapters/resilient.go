package adapters

import (
	"context"
	"log/slog"
	"sync"
	"time"

	contract "trustlayer/contracts/verification"
	"trustlayer/internal/credential"
	"trustlayer/internal/sentinel"
	"trustlayer/internal/verification/ports"
	dErrors "trustlayer/pkg/domain-errors"
	"trustlayer/pkg/platform/circuit"
)

// ErrCircuitOpen is returned when a collaborator's circuit has tripped and
// the probe window has not yet elapsed. The engine degrades the facet to
// unknown; nothing upstream fails.
var ErrCircuitOpen = dErrors.Wrap(sentinel.ErrUnavailable, dErrors.CodeVerificationUnavailable, "collaborator circuit is open")

// defaultProbeInterval spaces out probe calls while a circuit is open.
const defaultProbeInterval = 30 * time.Second

// guard pairs a breaker with probe bookkeeping. While open, at most one
// call per probe interval reaches the collaborator; the rest short-circuit.
type guard struct {
	breaker       *circuit.Breaker
	logger        *slog.Logger
	probeInterval time.Duration

	mu        sync.Mutex
	lastProbe time.Time
}

func newGuard(name string, logger *slog.Logger, probeInterval time.Duration) *guard {
	if probeInterval <= 0 {
		probeInterval = defaultProbeInterval
	}
	return &guard{
		breaker:       circuit.New(name),
		logger:        logger,
		probeInterval: probeInterval,
	}
}

// admit reports whether the call may proceed to the collaborator.
func (g *guard) admit() bool {
	if !g.breaker.IsOpen() {
		return true
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if time.Since(g.lastProbe) < g.probeInterval {
		return false
	}
	g.lastProbe = time.Now()
	return true
}

func (g *guard) observe(ctx context.Context, err error) {
	if err != nil {
		_, change := g.breaker.RecordFailure()
		if change.Opened {
			g.mu.Lock()
			g.lastProbe = time.Now()
			g.mu.Unlock()
		}
		if change.Opened && g.logger != nil {
			g.logger.WarnContext(ctx, "collaborator circuit opened",
				"collaborator", g.breaker.Name(),
				"error", err,
			)
		}
		return
	}
	_, change := g.breaker.RecordSuccess()
	if change.Closed && g.logger != nil {
		g.logger.InfoContext(ctx, "collaborator circuit closed",
			"collaborator", g.breaker.Name(),
		)
	}
}

// ResilientZKVerifier wraps a ZK proof verifier with a circuit breaker.
type ResilientZKVerifier struct {
	next  ports.ZKProofVerifier
	guard *guard
}

func NewResilientZKVerifier(next ports.ZKProofVerifier, logger *slog.Logger) *ResilientZKVerifier {
	return &ResilientZKVerifier{next: next, guard: newGuard("zk_verifier", logger, 0)}
}

func (v *ResilientZKVerifier) CheckProof(ctx context.Context, rec credential.Record) (contract.CheckResult, error) {
	if !v.guard.admit() {
		return contract.CheckResult{}, ErrCircuitOpen
	}
	result, err := v.next.CheckProof(ctx, rec)
	v.guard.observe(ctx, err)
	return result, err
}

// ResilientStorageChecker wraps a storage checker with a circuit breaker.
type ResilientStorageChecker struct {
	next  ports.StorageChecker
	guard *guard
}

func NewResilientStorageChecker(next ports.StorageChecker, logger *slog.Logger) *ResilientStorageChecker {
	return &ResilientStorageChecker{next: next, guard: newGuard("storage_checker", logger, 0)}
}

func (c *ResilientStorageChecker) CheckIntegrity(ctx context.Context, ref string) (contract.CheckResult, error) {
	if !c.guard.admit() {
		return contract.CheckResult{}, ErrCircuitOpen
	}
	result, err := c.next.CheckIntegrity(ctx, ref)
	c.guard.observe(ctx, err)
	return result, err
}

// ResilientIssuerRegistry wraps an issuer registry with a circuit breaker.
type ResilientIssuerRegistry struct {
	next  ports.IssuerRegistry
	guard *guard
}

func NewResilientIssuerRegistry(next ports.IssuerRegistry, logger *slog.Logger) *ResilientIssuerRegistry {
	return &ResilientIssuerRegistry{next: next, guard: newGuard("issuer_registry", logger, 0)}
}

func (r *ResilientIssuerRegistry) CheckIssuer(ctx context.Context, issuer string) (contract.CheckResult, error) {
	if !r.guard.admit() {
		return contract.CheckResult{}, ErrCircuitOpen
	}
	result, err := r.next.CheckIssuer(ctx, issuer)
	r.guard.observe(ctx, err)
	return result, err
}
