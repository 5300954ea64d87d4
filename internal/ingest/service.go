// Package ingest turns captured payloads into pending credential records.
// Payloads arrive from the camera scanner or a file upload; either way
// the result enters the wallet as a pending credential awaiting its first
// verification.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"trustlayer/internal/audit"
	"trustlayer/internal/credential"
	credstore "trustlayer/internal/credential/store"
	idstore "trustlayer/internal/identity/store"
	"trustlayer/internal/sentinel"
	id "trustlayer/pkg/domain"
	dErrors "trustlayer/pkg/domain-errors"
)

// maxPayloadBytes bounds a single envelope. Credential documents are
// small; anything bigger is a mis-upload.
const maxPayloadBytes = 5 << 20

// Source says how the payload entered the wallet.
type Source string

const (
	SourceCamera Source = "from_camera"
	SourceUpload Source = "from_upload"
)

// ParseSource validates a payload source string.
func ParseSource(s string) (Source, error) {
	switch src := Source(s); src {
	case SourceCamera, SourceUpload:
		return src, nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown payload source: "+s)
	}
}

// PayloadType classifies the envelope contents.
type PayloadType string

const (
	PayloadCredentialJSON  PayloadType = "credential_json"
	PayloadCredentialImage PayloadType = "credential_image"
	PayloadTextDocument    PayloadType = "text_document"
)

// Envelope is one captured payload.
type Envelope struct {
	Type       PayloadType `json:"type"`
	Data       []byte      `json:"data"`
	FileName   string      `json:"fileName,omitempty"`
	Size       int64       `json:"size"`
	UploadedAt time.Time   `json:"uploadedAt"`
}

// credentialPayload is the JSON shape of a credential_json envelope.
type credentialPayload struct {
	Title      string    `json:"title"`
	Issuer     string    `json:"issuer"`
	HolderDID  string    `json:"holderDid,omitempty"`
	IssueDate  time.Time `json:"issueDate"`
	ExpiryDate time.Time `json:"expiryDate"`
	HasZKProof bool      `json:"hasZkProof,omitempty"`
	StorageRef string    `json:"storageRef,omitempty"`
	// Status lets a payload arrive already verified, e.g. re-imported from
	// another wallet. Everything else starts pending.
	Status string `json:"status,omitempty"`
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service validates envelopes and persists the resulting records.
type Service struct {
	identities  idstore.Store
	credentials credstore.Store
	auditor     AuditPublisher
	logger      *slog.Logger
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithAuditor(a AuditPublisher) Option {
	return func(s *Service) { s.auditor = a }
}

func NewService(identities idstore.Store, credentials credstore.Store, opts ...Option) *Service {
	if identities == nil {
		panic("ingest.NewService: identity store is required")
	}
	if credentials == nil {
		panic("ingest.NewService: credential store is required")
	}
	s := &Service{identities: identities, credentials: credentials}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest converts one envelope into a pending credential owned by the
// given identity.
func (s *Service) Ingest(ctx context.Context, ownerID id.IdentityID, source Source, env Envelope) (credential.Record, error) {
	if _, err := ParseSource(string(source)); err != nil {
		return credential.Record{}, err
	}
	if int64(len(env.Data)) > maxPayloadBytes || env.Size > maxPayloadBytes {
		return credential.Record{}, dErrors.Wrap(sentinel.ErrInvalidInput, dErrors.CodeInvalidInput, "payload exceeds the size limit")
	}

	owner, err := s.identities.FindByID(ctx, ownerID)
	if err != nil {
		return credential.Record{}, err
	}

	var rec credential.Record
	switch env.Type {
	case PayloadCredentialJSON:
		rec, err = s.fromJSON(owner.ID, owner.DID, env)
	case PayloadCredentialImage:
		rec, err = s.fromImage(owner.ID, owner.DID, env)
	case PayloadTextDocument:
		err = dErrors.New(dErrors.CodeInvalidFormat, "text documents cannot be ingested as credentials")
	default:
		err = dErrors.New(dErrors.CodeInvalidFormat, "unknown payload type: "+string(env.Type))
	}
	if err != nil {
		return credential.Record{}, err
	}

	if err := s.credentials.Save(ctx, rec); err != nil {
		return credential.Record{}, err
	}

	s.emit(ctx, ownerID, rec, source)
	if s.logger != nil {
		s.logger.InfoContext(ctx, "credential ingested",
			"credential_id", rec.ID.String(),
			"identity_id", ownerID.String(),
			"source", string(source),
			"payload_type", string(env.Type),
		)
	}
	return rec, nil
}

// fromJSON builds a pending credential from a structured payload.
func (s *Service) fromJSON(ownerID id.IdentityID, ownerDID id.DID, env Envelope) (credential.Record, error) {
	var payload credentialPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return credential.Record{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "payload is not valid credential JSON")
	}
	if strings.TrimSpace(payload.Title) == "" || strings.TrimSpace(payload.Issuer) == "" {
		return credential.Record{}, dErrors.New(dErrors.CodeInvalidCredential, "credential payload needs a title and an issuer")
	}

	holder := ownerDID
	if payload.HolderDID != "" {
		var err error
		holder, err = id.ParseDID(payload.HolderDID)
		if err != nil {
			return credential.Record{}, err
		}
	}

	opts := []credential.RecordOption{credential.WithOwner(ownerID)}
	if payload.HasZKProof {
		opts = append(opts, credential.WithZKProof())
	}
	if payload.StorageRef != "" {
		opts = append(opts, credential.WithStorageRef(payload.StorageRef))
	}
	if strings.EqualFold(payload.Status, string(credential.StatusVerified)) {
		opts = append(opts, credential.WithStatus(credential.StatusVerified))
	}
	return credential.New(payload.Title, payload.Issuer, holder, payload.IssueDate, payload.ExpiryDate, opts...)
}

// fromImage builds a pending credential around an uploaded document scan.
// The image itself goes to content storage; the record keeps the address.
func (s *Service) fromImage(ownerID id.IdentityID, ownerDID id.DID, env Envelope) (credential.Record, error) {
	if len(env.Data) == 0 {
		return credential.Record{}, dErrors.New(dErrors.CodeInvalidInput, "image payload is empty")
	}

	title := titleFromFileName(env.FileName)
	uploadedAt := env.UploadedAt
	if uploadedAt.IsZero() {
		uploadedAt = time.Now()
	}

	return credential.New(
		title,
		"Unverified Issuer",
		ownerDID,
		uploadedAt,
		// Image-sourced records get a provisional one-year validity until
		// an issuer confirms them.
		uploadedAt.AddDate(1, 0, 0),
		credential.WithOwner(ownerID),
		credential.WithStorageRef("ipfs://"+contentAddress(env.Data)),
	)
}

// contentAddress derives a stable address for the stored image, so
// re-uploading the same scan points at the same content.
func contentAddress(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:16])
}

func titleFromFileName(fileName string) string {
	base := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	base = strings.TrimSpace(base)
	if base == "" || base == "." {
		return "Scanned Credential"
	}
	return base
}

func (s *Service) emit(ctx context.Context, ownerID id.IdentityID, rec credential.Record, source Source) {
	if s.auditor == nil {
		return
	}
	event := audit.Event{
		Timestamp:  time.Now(),
		IdentityID: ownerID.String(),
		Subject:    rec.ID.String(),
		Action:     string(audit.EventCredentialIngested),
		Detail:     string(source),
	}
	if err := s.auditor.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit ingest activity event",
			"error", err,
			"credential_id", rec.ID.String(),
		)
	}
}
