package verification

import (
	"context"
	"errors"
	"testing"
	"time"

	contract "trustlayer/contracts/verification"
	"trustlayer/internal/audit"
	"trustlayer/internal/credential"
	credstore "trustlayer/internal/credential/store"
	id "trustlayer/pkg/domain"
	dErrors "trustlayer/pkg/domain-errors"

	"github.com/stretchr/testify/suite"
)

// VerifySuite exercises the full facet battery against a live in-memory
// store with stubbed collaborators.
type VerifySuite struct {
	suite.Suite
	service *Service
	store   *credstore.InMemoryStore
	zk      *mockZKVerifier
	storage *mockStorageChecker
	issuers *mockIssuerRegistry
	auditor *mockAuditPublisher
}

func TestVerifySuite(t *testing.T) {
	suite.Run(t, new(VerifySuite))
}

func (s *VerifySuite) SetupTest() {
	s.store = credstore.NewInMemoryStore()
	s.zk = &mockZKVerifier{result: pass("proof accepted")}
	s.storage = &mockStorageChecker{result: pass("content hash matches")}
	s.issuers = &mockIssuerRegistry{result: pass("issuer on trusted list")}
	s.auditor = &mockAuditPublisher{}

	s.service = New(s.store, s.zk, s.storage, s.issuers,
		WithAuditor(s.auditor),
		WithCheckTimeout(time.Second),
	)
}

func (s *VerifySuite) seedRecord(opts ...credential.RecordOption) credential.Record {
	holder, err := id.ParseDID("did:web3:0x1234abcd")
	s.Require().NoError(err)

	rec, err := credential.New(
		"University Degree",
		"Web3 Academy",
		holder,
		time.Now().AddDate(-1, 0, 0),
		time.Now().AddDate(3, 0, 0),
		opts...,
	)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Save(context.Background(), rec))
	return rec
}

func (s *VerifySuite) TestVerifyHappyPath() {
	rec := s.seedRecord(credential.WithStatus(credential.StatusVerified), credential.WithZKProof())

	result, err := s.service.Verify(context.Background(), rec.ID)

	s.Require().NoError(err)
	s.True(result.IsValid)
	s.Equal(100, result.TrustScore)
	s.Empty(result.Unavailable)
	s.Equal(1, result.VerificationCount)
	for _, outcome := range result.Facets.All() {
		s.Equal(contract.OutcomePass, outcome)
	}
}

func (s *VerifySuite) TestRevokedNeverValid() {
	rec := s.seedRecord(credential.WithStatus(credential.StatusRevoked))

	result, err := s.service.Verify(context.Background(), rec.ID)

	s.Require().NoError(err)
	s.False(result.IsValid, "a revoked credential must never verify as valid")
	s.Equal(contract.OutcomeFail, result.Facets.NotRevoked)
	s.Equal(contract.OutcomeFail, result.Facets.CredentialValid)
}

func (s *VerifySuite) TestExpiryDerivedAtEvaluationTime() {
	holder, err := id.ParseDID("did:web3:0x1234abcd")
	s.Require().NoError(err)
	rec, err := credential.New(
		"Lapsed Membership",
		"Web3 Academy",
		holder,
		time.Now().AddDate(-2, 0, 0),
		time.Now().Add(-time.Hour),
		credential.WithStatus(credential.StatusVerified),
	)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Save(context.Background(), rec))

	result, err := s.service.Verify(context.Background(), rec.ID)

	s.Require().NoError(err)
	s.False(result.IsValid)
	s.Equal(contract.OutcomeFail, result.Facets.CredentialValid)
	// Expiry does not mean revocation.
	s.Equal(contract.OutcomePass, result.Facets.NotRevoked)
}

func (s *VerifySuite) TestNoProofAttachedPassesZKFacet() {
	s.zk.err = errors.New("must not be called")
	rec := s.seedRecord(credential.WithStatus(credential.StatusVerified))

	result, err := s.service.Verify(context.Background(), rec.ID)

	s.Require().NoError(err)
	s.Equal(contract.OutcomePass, result.Facets.ZKProofValid)
	s.Zero(s.zk.calls, "verifier must not run when no proof is attached")
	s.True(result.IsValid)
}

func (s *VerifySuite) TestCollaboratorErrorDegradesToUnknown() {
	s.storage.err = errors.New("storage gateway unreachable")
	rec := s.seedRecord(credential.WithStatus(credential.StatusVerified))

	result, err := s.service.Verify(context.Background(), rec.ID)

	s.Require().NoError(err, "a broken collaborator must not abort the run")
	s.Equal(contract.OutcomeUnknown, result.Facets.StorageVerified)
	s.Contains(result.Unavailable, FacetStorageVerified)
	s.False(result.IsValid, "unknown is never treated as pass")
	// The other facets still resolved.
	s.Equal(contract.OutcomePass, result.Facets.IssuerTrusted)
	s.Equal(contract.OutcomePass, result.Facets.NotRevoked)
}

func (s *VerifySuite) TestCountIncrementsEvenWhenInvalid() {
	s.issuers.result = fail("issuer not on trusted list")
	rec := s.seedRecord(credential.WithStatus(credential.StatusVerified))

	result, err := s.service.Verify(context.Background(), rec.ID)
	s.Require().NoError(err)
	s.False(result.IsValid)
	s.Equal(1, result.VerificationCount)

	stored, err := s.store.FindByID(context.Background(), rec.ID)
	s.Require().NoError(err)
	s.Equal(1, stored.VerificationCount)
	s.NotNil(stored.LastVerifiedAt)
}

func (s *VerifySuite) TestRepeatRunsAreConsistent() {
	rec := s.seedRecord(credential.WithStatus(credential.StatusVerified))

	first, err := s.service.Verify(context.Background(), rec.ID)
	s.Require().NoError(err)
	second, err := s.service.Verify(context.Background(), rec.ID)
	s.Require().NoError(err)

	s.Equal(first.Facets, second.Facets)
	s.Equal(first.TrustScore, second.TrustScore)
	s.Equal(first.VerificationCount+1, second.VerificationCount)
}

func (s *VerifySuite) TestCancelledContextCommitsNothing() {
	s.storage.delay = 200 * time.Millisecond
	rec := s.seedRecord(credential.WithStatus(credential.StatusVerified))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := s.service.Verify(ctx, rec.ID)

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeVerificationUnavailable))

	stored, findErr := s.store.FindByID(context.Background(), rec.ID)
	s.Require().NoError(findErr)
	s.Zero(stored.VerificationCount, "a cancelled run must not advance the counter")
	s.Nil(stored.LastVerifiedAt)
}

func (s *VerifySuite) TestUnknownCredentialReturnsNotFound() {
	_, err := s.service.Verify(context.Background(), id.NewCredentialID())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Empty(s.auditor.events)
}

func (s *VerifySuite) TestAuditEventEmittedWithOutcome() {
	rec := s.seedRecord(credential.WithStatus(credential.StatusVerified))

	_, err := s.service.Verify(context.Background(), rec.ID)
	s.Require().NoError(err)

	s.Require().Len(s.auditor.events, 1)
	event := s.auditor.events[0]
	s.Equal(string(audit.EventCredentialVerified), event.Action)
	s.Equal(rec.ID.String(), event.Subject)
	s.Equal("valid", event.Detail)
}

// --- mocks ---

func pass(detail string) contract.CheckResult {
	return contract.CheckResult{Outcome: contract.OutcomePass, Detail: detail}
}

func fail(detail string) contract.CheckResult {
	return contract.CheckResult{Outcome: contract.OutcomeFail, Detail: detail}
}

type mockZKVerifier struct {
	result contract.CheckResult
	err    error
	calls  int
}

func (m *mockZKVerifier) CheckProof(ctx context.Context, rec credential.Record) (contract.CheckResult, error) {
	m.calls++
	return m.result, m.err
}

type mockStorageChecker struct {
	result contract.CheckResult
	err    error
	delay  time.Duration
}

func (m *mockStorageChecker) CheckIntegrity(ctx context.Context, ref string) (contract.CheckResult, error) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return contract.CheckResult{}, ctx.Err()
		}
	}
	return m.result, m.err
}

type mockIssuerRegistry struct {
	result contract.CheckResult
	err    error
}

func (m *mockIssuerRegistry) CheckIssuer(ctx context.Context, issuer string) (contract.CheckResult, error) {
	return m.result, m.err
}

type mockAuditPublisher struct {
	events []audit.Event
}

func (m *mockAuditPublisher) Emit(ctx context.Context, event audit.Event) error {
	m.events = append(m.events, event)
	return nil
}
