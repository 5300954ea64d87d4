package ingest

import (
	"context"
	"testing"
	"time"

	"trustlayer/internal/credential"
	credstore "trustlayer/internal/credential/store"
	"trustlayer/internal/identity"
	idstore "trustlayer/internal/identity/store"
	id "trustlayer/pkg/domain"
	dErrors "trustlayer/pkg/domain-errors"

	"github.com/stretchr/testify/suite"
)

type IngestSuite struct {
	suite.Suite
	service     *Service
	credentials *credstore.InMemoryStore
	owner       identity.Record
}

func TestIngestSuite(t *testing.T) {
	suite.Run(t, new(IngestSuite))
}

func (s *IngestSuite) SetupTest() {
	identities := idstore.NewInMemoryStore()
	s.credentials = credstore.NewInMemoryStore()
	s.service = NewService(identities, s.credentials)

	var err error
	s.owner, err = identity.New("Alex Rivera", identity.TypeProfessional)
	s.Require().NoError(err)
	s.Require().NoError(identities.Save(context.Background(), s.owner))
}

func (s *IngestSuite) TestCredentialJSONPayload() {
	payload := []byte(`{
		"title": "Blockchain Certification",
		"issuer": "TechCorp Inc.",
		"issueDate": "2024-03-01T00:00:00Z",
		"expiryDate": "2027-03-01T00:00:00Z",
		"hasZkProof": true,
		"storageRef": "ipfs://QmCert123"
	}`)

	rec, err := s.service.Ingest(context.Background(), s.owner.ID, SourceUpload, Envelope{
		Type: PayloadCredentialJSON,
		Data: payload,
	})
	s.Require().NoError(err)

	s.Equal(credential.StatusPending, rec.Status, "ingested credentials start pending")
	s.Equal("Blockchain Certification", rec.Title)
	s.Equal(s.owner.DID, rec.HolderDID, "holder defaults to the owning identity")
	s.True(rec.HasZKProof)
	s.Equal(s.owner.ID, rec.OwnerID)

	owned, err := s.credentials.ListByOwner(context.Background(), s.owner.ID)
	s.Require().NoError(err)
	s.Len(owned, 1)
}

func (s *IngestSuite) TestPayloadMarkedVerified() {
	rec, err := s.service.Ingest(context.Background(), s.owner.ID, SourceUpload, Envelope{
		Type: PayloadCredentialJSON,
		Data: []byte(`{
			"title": "Employment Attestation",
			"issuer": "TechCorp Inc.",
			"issueDate": "2024-03-01T00:00:00Z",
			"expiryDate": "2027-03-01T00:00:00Z",
			"status": "verified"
		}`),
	})
	s.Require().NoError(err)
	s.Equal(credential.StatusVerified, rec.Status, "payload may carry a verified status")
}

func (s *IngestSuite) TestCredentialJSONValidation() {
	s.Run("malformed JSON", func() {
		_, err := s.service.Ingest(context.Background(), s.owner.ID, SourceCamera, Envelope{
			Type: PayloadCredentialJSON,
			Data: []byte("{{not json"),
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("missing issuer", func() {
		_, err := s.service.Ingest(context.Background(), s.owner.ID, SourceCamera, Envelope{
			Type: PayloadCredentialJSON,
			Data: []byte(`{"title":"Degree","issueDate":"2024-01-01T00:00:00Z","expiryDate":"2026-01-01T00:00:00Z"}`),
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidCredential))
	})

	s.Run("expiry before issue", func() {
		_, err := s.service.Ingest(context.Background(), s.owner.ID, SourceCamera, Envelope{
			Type: PayloadCredentialJSON,
			Data: []byte(`{"title":"Degree","issuer":"X","issueDate":"2026-01-01T00:00:00Z","expiryDate":"2024-01-01T00:00:00Z"}`),
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidCredential))
	})
}

func (s *IngestSuite) TestCredentialImagePayload() {
	data := []byte("fake-png-bytes")
	rec, err := s.service.Ingest(context.Background(), s.owner.ID, SourceCamera, Envelope{
		Type:       PayloadCredentialImage,
		Data:       data,
		FileName:   "employment_badge-2024.png",
		UploadedAt: time.Now(),
	})
	s.Require().NoError(err)

	s.Equal("employment badge 2024", rec.Title)
	s.Equal(credential.StatusPending, rec.Status)
	s.Contains(rec.StorageRef, "ipfs://")

	again, err := s.service.Ingest(context.Background(), s.owner.ID, SourceCamera, Envelope{
		Type: PayloadCredentialImage,
		Data: data,
	})
	s.Require().NoError(err)
	s.Equal(rec.StorageRef, again.StorageRef, "same bytes address the same content")
	s.Equal("Scanned Credential", again.Title)
}

func (s *IngestSuite) TestRejectedPayloads() {
	s.Run("text documents", func() {
		_, err := s.service.Ingest(context.Background(), s.owner.ID, SourceUpload, Envelope{
			Type: PayloadTextDocument,
			Data: []byte("dear diary"),
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidFormat))
	})

	s.Run("unknown payload type", func() {
		_, err := s.service.Ingest(context.Background(), s.owner.ID, SourceUpload, Envelope{
			Type: PayloadType("spreadsheet"),
			Data: []byte("a,b,c"),
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidFormat))
	})

	s.Run("unknown source", func() {
		_, err := s.service.Ingest(context.Background(), s.owner.ID, Source("from_fax"), Envelope{
			Type: PayloadCredentialJSON,
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("oversized payload", func() {
		_, err := s.service.Ingest(context.Background(), s.owner.ID, SourceUpload, Envelope{
			Type: PayloadCredentialImage,
			Size: maxPayloadBytes + 1,
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("unknown owner", func() {
		_, err := s.service.Ingest(context.Background(), id.NewIdentityID(), SourceUpload, Envelope{
			Type: PayloadCredentialJSON,
			Data: []byte(`{"title":"T","issuer":"I","issueDate":"2024-01-01T00:00:00Z","expiryDate":"2026-01-01T00:00:00Z"}`),
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
