package verification

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	contract "trustlayer/contracts/verification"
	"trustlayer/internal/credential"
	"trustlayer/internal/verification/tracer"
)

// checkFetchResult holds outcomes from the collaborator checks.
// Each goroutine writes to its own fields, avoiding data races.
type checkFetchResult struct {
	zkProof        contract.Outcome
	zkProofDetail  string
	zkLatency      time.Duration
	storage        contract.Outcome
	storageDetail  string
	storageLatency time.Duration
	issuer         contract.Outcome
	issuerDetail   string
	issuerLatency  time.Duration
}

// gatherChecks runs the collaborator checks in parallel under a shared
// timeout. A collaborator error or timeout produces an unknown outcome for
// that facet; it never aborts the other checks, so every facet is always
// reported.
func (s *Service) gatherChecks(ctx context.Context, rec credential.Record) checkFetchResult {
	ctx, cancel := context.WithTimeout(ctx, s.checkTimeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	result := checkFetchResult{
		// Absence of a proof is not a failure, only irrelevant.
		zkProof:       contract.OutcomePass,
		zkProofDetail: "no proof attached",
	}

	if rec.HasZKProof {
		s.launchZKCheck(ctx, g, &result, rec)
	}
	s.launchStorageCheck(ctx, g, &result, rec)
	s.launchIssuerCheck(ctx, g, &result, rec)

	// Check funcs only ever return nil; Wait is a join point.
	_ = g.Wait()

	return result
}

func (s *Service) launchZKCheck(ctx context.Context, g *errgroup.Group, result *checkFetchResult, rec credential.Record) {
	g.Go(func() error {
		ctx, span := s.tracer.Start(ctx, tracer.SpanZKCheck,
			tracer.String(tracer.AttrCredentialID, rec.ID.String()),
		)
		start := time.Now()
		check, err := s.zk.CheckProof(ctx, rec)
		latency := time.Since(start)

		result.zkLatency = latency
		if s.metrics != nil {
			s.metrics.ObserveCheckLatency(string(FacetZKProofValid), latency)
		}

		result.zkProof, result.zkProofDetail = degrade(check, err)
		span.SetAttributes(tracer.String(tracer.AttrOutcome, string(result.zkProof)))
		span.End(err)
		s.noteDegraded(ctx, FacetZKProofValid, result.zkProof, err)
		return nil
	})
}

func (s *Service) launchStorageCheck(ctx context.Context, g *errgroup.Group, result *checkFetchResult, rec credential.Record) {
	g.Go(func() error {
		ctx, span := s.tracer.Start(ctx, tracer.SpanStorageCheck,
			tracer.String(tracer.AttrCredentialID, rec.ID.String()),
		)
		start := time.Now()
		check, err := s.storage.CheckIntegrity(ctx, rec.StorageRef)
		latency := time.Since(start)

		result.storageLatency = latency
		if s.metrics != nil {
			s.metrics.ObserveCheckLatency(string(FacetStorageVerified), latency)
		}

		result.storage, result.storageDetail = degrade(check, err)
		span.SetAttributes(tracer.String(tracer.AttrOutcome, string(result.storage)))
		span.End(err)
		s.noteDegraded(ctx, FacetStorageVerified, result.storage, err)
		return nil
	})
}

func (s *Service) launchIssuerCheck(ctx context.Context, g *errgroup.Group, result *checkFetchResult, rec credential.Record) {
	g.Go(func() error {
		ctx, span := s.tracer.Start(ctx, tracer.SpanIssuerCheck,
			tracer.String(tracer.AttrCredentialID, rec.ID.String()),
		)
		start := time.Now()
		check, err := s.issuers.CheckIssuer(ctx, rec.Issuer)
		latency := time.Since(start)

		result.issuerLatency = latency
		if s.metrics != nil {
			s.metrics.ObserveCheckLatency(string(FacetIssuerTrusted), latency)
		}

		result.issuer, result.issuerDetail = degrade(check, err)
		span.SetAttributes(tracer.String(tracer.AttrOutcome, string(result.issuer)))
		span.End(err)
		s.noteDegraded(ctx, FacetIssuerTrusted, result.issuer, err)
		return nil
	})
}

// degrade maps a collaborator response onto a facet outcome: errors become
// unknown, never false, so "failed" stays distinguishable from "could not
// check".
func degrade(check contract.CheckResult, err error) (contract.Outcome, string) {
	if err != nil {
		return contract.OutcomeUnknown, err.Error()
	}
	if check.Outcome == "" {
		return contract.OutcomeUnknown, "collaborator returned no outcome"
	}
	return check.Outcome, check.Detail
}

func (s *Service) noteDegraded(ctx context.Context, facet Facet, outcome contract.Outcome, err error) {
	if outcome.Known() {
		return
	}
	if s.metrics != nil {
		s.metrics.IncrementDegraded(string(facet))
	}
	if s.logger != nil {
		s.logger.WarnContext(ctx, "collaborator check degraded to unknown",
			"facet", string(facet),
			"error", err,
		)
	}
}
