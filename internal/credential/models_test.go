package credential

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "trustlayer/pkg/domain"
	dErrors "trustlayer/pkg/domain-errors"
)

type RecordSuite struct {
	suite.Suite
	holder id.DID
	issued time.Time
	expiry time.Time
}

func TestRecordSuite(t *testing.T) {
	suite.Run(t, new(RecordSuite))
}

func (s *RecordSuite) SetupTest() {
	var err error
	s.holder, err = id.ParseDID("did:web3:0x1234abcd")
	s.Require().NoError(err)
	s.issued = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	s.expiry = time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
}

func (s *RecordSuite) TestConstruction() {
	s.Run("valid record defaults to pending", func() {
		r, err := New("Senior Software Engineer", "TechCorp Inc.", s.holder, s.issued, s.expiry)
		s.Require().NoError(err)
		s.Equal(StatusPending, r.Status)
		s.False(r.ID.IsNil())
		s.Zero(r.VerificationCount)
		s.Nil(r.LastVerifiedAt)
	})

	s.Run("rejects missing holder DID", func() {
		_, err := New("Cert", "Issuer", "", s.issued, s.expiry)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidCredential))
	})

	s.Run("rejects expiry before issue date", func() {
		_, err := New("Cert", "Issuer", s.holder, s.expiry, s.issued)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidCredential))
	})

	s.Run("options apply", func() {
		owner := id.NewIdentityID()
		r, err := New("Cert", "Issuer", s.holder, s.issued, s.expiry,
			WithZKProof(), WithStorageRef("QmX7Y8Z"), WithOwner(owner), WithStatus(StatusVerified))
		s.Require().NoError(err)
		s.True(r.HasZKProof)
		s.Equal("QmX7Y8Z", r.StorageRef)
		s.Equal(owner, r.OwnerID)
		s.Equal(StatusVerified, r.Status)
	})
}

func (s *RecordSuite) TestStatusMachine() {
	s.Run("pending can be confirmed or revoked", func() {
		s.True(StatusPending.CanTransitionTo(StatusVerified))
		s.True(StatusPending.CanTransitionTo(StatusRevoked))
		s.False(StatusPending.CanTransitionTo(StatusExpired))
	})

	s.Run("verified can only be revoked", func() {
		s.True(StatusVerified.CanTransitionTo(StatusRevoked))
		s.False(StatusVerified.CanTransitionTo(StatusPending))
	})

	s.Run("revoked and expired are terminal", func() {
		for _, from := range []Status{StatusRevoked, StatusExpired} {
			s.True(from.Terminal())
			for _, to := range []Status{StatusPending, StatusVerified, StatusRevoked, StatusExpired} {
				s.False(from.CanTransitionTo(to), "%s -> %s must be rejected", from, to)
			}
		}
	})

	s.Run("invalid transition yields coded error", func() {
		r, err := New("Cert", "Issuer", s.holder, s.issued, s.expiry)
		s.Require().NoError(err)
		s.Require().NoError(r.Transition(StatusVerified))
		err = r.Transition(StatusVerified)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})
}

func (s *RecordSuite) TestEffectiveStatus() {
	r, err := New("Cert", "Issuer", s.holder, s.issued, s.expiry)
	s.Require().NoError(err)
	s.Require().NoError(r.Transition(StatusVerified))

	s.Run("before expiry reads verified", func() {
		s.Equal(StatusVerified, r.EffectiveStatus(s.expiry.Add(-time.Hour)))
	})

	s.Run("after expiry reads expired without rewriting stored status", func() {
		s.Equal(StatusExpired, r.EffectiveStatus(s.expiry.Add(time.Hour)))
		s.Equal(StatusVerified, r.Status)
	})

	s.Run("pending records never derive expiry", func() {
		p, err := New("Cert", "Issuer", s.holder, s.issued, s.expiry)
		s.Require().NoError(err)
		s.Equal(StatusPending, p.EffectiveStatus(s.expiry.Add(time.Hour)))
	})
}

func (s *RecordSuite) TestRecordVerification() {
	r, err := New("Cert", "Issuer", s.holder, s.issued, s.expiry)
	s.Require().NoError(err)

	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	r.RecordVerification(at)
	r.RecordVerification(at.Add(time.Minute))

	s.Equal(2, r.VerificationCount)
	s.Require().NotNil(r.LastVerifiedAt)
	s.Equal(at.Add(time.Minute), *r.LastVerifiedAt)
	s.Equal(StatusPending, r.Status, "verification must not touch status")
}
