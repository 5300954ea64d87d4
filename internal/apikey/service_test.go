package apikey

import (
	"context"
	"strings"
	"testing"

	"trustlayer/internal/audit"
	id "trustlayer/pkg/domain"
	dErrors "trustlayer/pkg/domain-errors"

	"github.com/stretchr/testify/suite"
)

type APIKeySuite struct {
	suite.Suite
	service *Service
	store   *InMemoryStore
	auditor *recordingAuditor
}

func TestAPIKeySuite(t *testing.T) {
	suite.Run(t, new(APIKeySuite))
}

func (s *APIKeySuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.auditor = &recordingAuditor{}
	s.service = NewService(s.store, WithAuditor(s.auditor))
}

func (s *APIKeySuite) TestGenerate() {
	s.Run("production names get a live token", func() {
		key, err := s.service.Generate(context.Background(), "Production Key")
		s.Require().NoError(err)
		s.True(strings.HasPrefix(key.Token, "sk_live_"), key.Token)
		s.Equal(StatusActive, key.Status)
		s.Zero(key.RequestCount)
		s.Nil(key.LastUsedAt)
	})

	s.Run("everything else gets a test token", func() {
		key, err := s.service.Generate(context.Background(), "Development Key")
		s.Require().NoError(err)
		s.True(strings.HasPrefix(key.Token, "sk_test_"), key.Token)
	})

	s.Run("tokens are unique", func() {
		first, err := s.service.Generate(context.Background(), "One")
		s.Require().NoError(err)
		second, err := s.service.Generate(context.Background(), "Two")
		s.Require().NoError(err)
		s.NotEqual(first.Token, second.Token)
	})

	s.Run("blank name is rejected", func() {
		_, err := s.service.Generate(context.Background(), "   ")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidName))
	})
}

func (s *APIKeySuite) TestListPreservesCreationOrder() {
	names := []string{"first", "second", "third"}
	for _, name := range names {
		_, err := s.service.Generate(context.Background(), name)
		s.Require().NoError(err)
	}

	keys, err := s.service.List(context.Background())
	s.Require().NoError(err)
	s.Require().Len(keys, 3)
	for i, name := range names {
		s.Equal(name, keys[i].Name)
	}
}

func (s *APIKeySuite) TestRevoke() {
	key, err := s.service.Generate(context.Background(), "Doomed")
	s.Require().NoError(err)

	revoked, err := s.service.Revoke(context.Background(), key.ID)
	s.Require().NoError(err)
	s.Equal(StatusRevoked, revoked.Status)

	s.Run("revoked keys stay listed", func() {
		keys, err := s.service.List(context.Background())
		s.Require().NoError(err)
		s.Require().Len(keys, 1)
		s.Equal(StatusRevoked, keys[0].Status)
	})

	s.Run("revoking twice is an invalid transition", func() {
		_, err := s.service.Revoke(context.Background(), key.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	s.Run("unknown key is not found", func() {
		_, err := s.service.Revoke(context.Background(), id.NewAPIKeyID())
		s.Require().ErrorIs(err, ErrNotFound)
	})
}

func (s *APIKeySuite) TestRecordUse() {
	key, err := s.service.Generate(context.Background(), "Counted")
	s.Require().NoError(err)

	for range 3 {
		_, err := s.service.RecordUse(context.Background(), key.ID)
		s.Require().NoError(err)
	}

	stored, err := s.store.FindByID(context.Background(), key.ID)
	s.Require().NoError(err)
	s.Equal(3, stored.RequestCount)
	s.NotNil(stored.LastUsedAt)

	s.Run("revoked keys reject use", func() {
		_, err := s.service.Revoke(context.Background(), key.ID)
		s.Require().NoError(err)
		_, err = s.service.RecordUse(context.Background(), key.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

		stored, err := s.store.FindByID(context.Background(), key.ID)
		s.Require().NoError(err)
		s.Equal(3, stored.RequestCount, "rejected use must not advance the counter")
	})
}

func (s *APIKeySuite) TestActivityEventsEmitted() {
	key, err := s.service.Generate(context.Background(), "Audited")
	s.Require().NoError(err)
	_, err = s.service.Revoke(context.Background(), key.ID)
	s.Require().NoError(err)

	s.Require().Len(s.auditor.events, 2)
	s.Equal(string(audit.EventAPIKeyGenerated), s.auditor.events[0].Action)
	s.Equal(string(audit.EventAPIKeyRevoked), s.auditor.events[1].Action)
	s.Equal(key.ID.String(), s.auditor.events[1].Subject)
}

type recordingAuditor struct {
	events []audit.Event
}

func (r *recordingAuditor) Emit(_ context.Context, event audit.Event) error {
	r.events = append(r.events, event)
	return nil
}
