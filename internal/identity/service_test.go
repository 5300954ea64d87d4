package identity_test

import (
	"context"
	"testing"
	"time"

	"trustlayer/internal/audit"
	"trustlayer/internal/credential"
	credstore "trustlayer/internal/credential/store"
	"trustlayer/internal/identity"
	idstore "trustlayer/internal/identity/store"
	id "trustlayer/pkg/domain"

	"github.com/stretchr/testify/suite"
)

type IdentityLifecycleSuite struct {
	suite.Suite
	service     *identity.Service
	identities  *idstore.InMemoryStore
	credentials *credstore.InMemoryStore
	auditor     *recordingAuditor
}

func TestIdentityLifecycleSuite(t *testing.T) {
	suite.Run(t, new(IdentityLifecycleSuite))
}

func (s *IdentityLifecycleSuite) SetupTest() {
	s.identities = idstore.NewInMemoryStore()
	s.credentials = credstore.NewInMemoryStore()
	s.auditor = &recordingAuditor{}
	s.service = identity.NewService(s.identities, s.credentials, identity.WithAuditor(s.auditor))
}

func (s *IdentityLifecycleSuite) TestFirstIdentityBecomesActive() {
	first, err := s.service.Create(context.Background(), "Primary", identity.TypeProfessional)
	s.Require().NoError(err)
	s.Equal(identity.StatusActive, first.Status)

	second, err := s.service.Create(context.Background(), "Side Project", identity.TypeDeveloper)
	s.Require().NoError(err)
	s.Equal(identity.StatusInactive, second.Status)
}

func (s *IdentityLifecycleSuite) TestSetActiveIsExclusive() {
	first, err := s.service.Create(context.Background(), "Primary", identity.TypeProfessional)
	s.Require().NoError(err)
	second, err := s.service.Create(context.Background(), "Side Project", identity.TypeDeveloper)
	s.Require().NoError(err)

	activated, err := s.service.SetActive(context.Background(), second.ID)
	s.Require().NoError(err)
	s.Equal(identity.StatusActive, activated.Status)

	reloaded, err := s.service.Get(context.Background(), first.ID)
	s.Require().NoError(err)
	s.Equal(identity.StatusInactive, reloaded.Status)

	active, err := s.service.Active(context.Background())
	s.Require().NoError(err)
	s.Equal(second.ID, active.ID)
}

func (s *IdentityLifecycleSuite) TestDeleteCascadesToCredentials() {
	rec, err := s.service.Create(context.Background(), "Primary", identity.TypeProfessional)
	s.Require().NoError(err)

	holder, err := id.ParseDID(rec.DID.String())
	s.Require().NoError(err)
	cred, err := credential.New(
		"University Degree", "Web3 Academy", holder,
		time.Now().AddDate(-1, 0, 0), time.Now().AddDate(3, 0, 0),
		credential.WithOwner(rec.ID),
	)
	s.Require().NoError(err)
	s.Require().NoError(s.credentials.Save(context.Background(), cred))

	s.Require().NoError(s.service.Delete(context.Background(), rec.ID))

	_, err = s.service.Get(context.Background(), rec.ID)
	s.Require().ErrorIs(err, idstore.ErrNotFound)
	owned, err := s.credentials.ListByOwner(context.Background(), rec.ID)
	s.Require().NoError(err)
	s.Empty(owned)
}

func (s *IdentityLifecycleSuite) TestDeleteUnknownIdentity() {
	err := s.service.Delete(context.Background(), id.NewIdentityID())
	s.Require().ErrorIs(err, idstore.ErrNotFound)
	s.Empty(s.auditor.byAction(audit.EventIdentityDeleted))
}

func (s *IdentityLifecycleSuite) TestLookupByDID() {
	rec, err := s.service.Create(context.Background(), "Primary", identity.TypeProfessional)
	s.Require().NoError(err)

	found, err := s.service.GetByDID(context.Background(), rec.DID)
	s.Require().NoError(err)
	s.Equal(rec.ID, found.ID)
}

func (s *IdentityLifecycleSuite) TestActivityEventsEmitted() {
	rec, err := s.service.Create(context.Background(), "Primary", identity.TypeProfessional)
	s.Require().NoError(err)
	s.Require().NoError(s.service.Delete(context.Background(), rec.ID))

	s.Len(s.auditor.byAction(audit.EventIdentityCreated), 1)
	deleted := s.auditor.byAction(audit.EventIdentityDeleted)
	s.Require().Len(deleted, 1)
	s.Equal(rec.ID.String(), deleted[0].IdentityID)
}

type recordingAuditor struct {
	events []audit.Event
}

func (r *recordingAuditor) Emit(_ context.Context, event audit.Event) error {
	r.events = append(r.events, event)
	return nil
}

func (r *recordingAuditor) byAction(action audit.ActivityEvent) []audit.Event {
	var out []audit.Event
	for _, e := range r.events {
		if e.Action == string(action) {
			out = append(out, e)
		}
	}
	return out
}
