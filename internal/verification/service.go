// Package verification runs the fixed battery of checks against a
// credential record and produces a structured, per-facet result. The
// engine owns the only write path to a credential's verification counter;
// status stays issuer-controlled.
package verification

import (
	"context"
	"log/slog"
	"time"

	contract "trustlayer/contracts/verification"
	"trustlayer/internal/audit"
	"trustlayer/internal/credential"
	credstore "trustlayer/internal/credential/store"
	"trustlayer/internal/verification/metrics"
	"trustlayer/internal/verification/ports"
	"trustlayer/internal/verification/tracer"
	id "trustlayer/pkg/domain"
	dErrors "trustlayer/pkg/domain-errors"
)

// defaultCheckTimeout bounds the collaborator fan-out per verification.
const defaultCheckTimeout = 5 * time.Second

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service evaluates credential records against injected trust
// collaborators. The goal is to keep the facet rules centralized and
// testable without any rendering layer.
type Service struct {
	credentials  credstore.Store
	zk           ports.ZKProofVerifier
	storage      ports.StorageChecker
	issuers      ports.IssuerRegistry
	auditor      AuditPublisher
	metrics      *metrics.Metrics
	tracer       tracer.Tracer
	logger       *slog.Logger
	checkTimeout time.Duration
}

// Option configures the Service.
type Option func(*Service)

// WithMetrics sets the metrics collector for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger for the service.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithTracer sets the tracer; defaults to the no-op tracer.
func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithAuditor sets the activity event sink.
func WithAuditor(a AuditPublisher) Option {
	return func(s *Service) { s.auditor = a }
}

// WithCheckTimeout overrides the collaborator fan-out timeout.
func WithCheckTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.checkTimeout = d
		}
	}
}

// New creates a verification service with required dependencies.
// Panics if a required collaborator is nil - fail fast at startup.
func New(
	credentials credstore.Store,
	zk ports.ZKProofVerifier,
	storage ports.StorageChecker,
	issuers ports.IssuerRegistry,
	opts ...Option,
) *Service {
	if credentials == nil {
		panic("verification.New: credential store is required")
	}
	if zk == nil {
		panic("verification.New: zk proof verifier is required")
	}
	if storage == nil {
		panic("verification.New: storage checker is required")
	}
	if issuers == nil {
		panic("verification.New: issuer registry is required")
	}

	s := &Service{
		credentials:  credentials,
		zk:           zk,
		storage:      storage,
		issuers:      issuers,
		tracer:       tracer.NewNoop(),
		checkTimeout: defaultCheckTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Verify runs all five facet checks for the credential and commits the
// verification counter once every facet has resolved. The result always
// carries all facets individually; overall validity is their conjunction.
// A cancelled context commits nothing.
func (s *Service) Verify(ctx context.Context, credID id.CredentialID) (*Result, error) {
	// Single authoritative timestamp for the entire run, used for both the
	// lazy expiry derivation and the counter stamp.
	evalTime := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveVerifyLatency(time.Since(evalTime))
		}
	}()

	rec, err := s.credentials.FindByID(ctx, credID)
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, tracer.SpanVerify,
		tracer.String(tracer.AttrCredentialID, credID.String()),
		tracer.Bool(tracer.AttrHasZKProof, rec.HasZKProof),
	)

	facets := s.evaluateFacets(ctx, rec, evalTime)

	// All-or-nothing: a dismissed UI must not observe a half-applied run.
	if ctxErr := ctx.Err(); ctxErr != nil {
		span.End(ctxErr)
		return nil, dErrors.Wrap(ctxErr, dErrors.CodeVerificationUnavailable,
			"verification cancelled before completion; no state was committed")
	}

	committed, err := s.credentials.RecordVerification(ctx, rec.ID, evalTime)
	if err != nil {
		span.End(err)
		return nil, err
	}

	result := s.buildResult(committed, facets, evalTime)
	span.SetAttributes(
		tracer.Int64(tracer.AttrTrustScore, int64(result.TrustScore)),
		tracer.Bool("is_valid", result.IsValid),
	)
	span.End(nil)

	s.emitAudit(ctx, committed, result)
	if s.metrics != nil {
		s.metrics.IncrementOutcome(outcomeLabel(result))
	}
	return result, nil
}

// evaluateFacets computes the two structural facets locally and fans out
// the three collaborator checks.
func (s *Service) evaluateFacets(ctx context.Context, rec credential.Record, evalTime time.Time) facetEvaluation {
	// Structural facets need no collaborator: validity uses the lazily
	// derived status so an expired credential reads invalid, while
	// revocation reads the stored status directly.
	credentialValid := contract.FromBool(rec.EffectiveStatus(evalTime) == credential.StatusVerified)
	notRevoked := contract.FromBool(rec.Status != credential.StatusRevoked)

	checks := s.gatherChecks(ctx, rec)

	return facetEvaluation{
		facets: Facets{
			CredentialValid: credentialValid,
			ZKProofValid:    checks.zkProof,
			StorageVerified: checks.storage,
			IssuerTrusted:   checks.issuer,
			NotRevoked:      notRevoked,
		},
		latencies: CheckLatencies{
			ZKProof: checks.zkLatency,
			Storage: checks.storageLatency,
			Issuer:  checks.issuerLatency,
		},
	}
}

type facetEvaluation struct {
	facets    Facets
	latencies CheckLatencies
}

func (s *Service) buildResult(rec credential.Record, eval facetEvaluation, evalTime time.Time) *Result {
	var unavailable []Facet
	for facet, outcome := range eval.facets.All() {
		if !outcome.Known() {
			unavailable = append(unavailable, facet)
		}
	}

	return &Result{
		CredentialID:      rec.ID,
		Facets:            eval.facets,
		IsValid:           eval.facets.AllPassed(),
		TrustScore:        TrustScore(eval.facets),
		Unavailable:       unavailable,
		VerificationCount: rec.VerificationCount,
		VerifiedAt:        evalTime,
		Latencies:         eval.latencies,
	}
}

func outcomeLabel(r *Result) string {
	switch {
	case r.IsValid:
		return "valid"
	case len(r.Unavailable) > 0:
		return "degraded"
	default:
		return "invalid"
	}
}

// emitAudit records the run in the activity feed, best-effort.
func (s *Service) emitAudit(ctx context.Context, rec credential.Record, result *Result) {
	if s.auditor == nil {
		return
	}
	event := audit.Event{
		Timestamp:  result.VerifiedAt,
		IdentityID: rec.OwnerID.String(),
		Subject:    rec.ID.String(),
		Action:     string(audit.EventCredentialVerified),
		Detail:     outcomeLabel(result),
	}
	if err := s.auditor.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit verification activity event",
			"error", err,
			"credential_id", rec.ID.String(),
		)
	}
}
