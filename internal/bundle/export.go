package bundle

import (
	"context"
	"encoding/json"
	"encoding/pem"
	"log/slog"
	"time"

	"trustlayer/internal/audit"
	credstore "trustlayer/internal/credential/store"
	idstore "trustlayer/internal/identity/store"
	id "trustlayer/pkg/domain"
	dErrors "trustlayer/pkg/domain-errors"
	"trustlayer/pkg/secrets"
)

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// exportedBy names the producing platform in bundle metadata.
const exportedBy = "TrustLayer Platform"

// recoveryInstructions travels inside backup bundles so the file tells
// its holder what to do with it.
const recoveryInstructions = "This is a complete backup of your TrustLayer identity. " +
	"Store it securely and use it to restore your identity if needed. " +
	"To restore, open the import screen and choose this backup file; if it " +
	"carries an encrypted private key, the export password is required."

// Service builds and ingests identity bundles.
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
		panic("bundle.NewService: identity store is required")
	}
	if credentials == nil {
		panic("bundle.NewService: credential store is required")
	}
	s := &Service{identities: identities, credentials: credentials}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExportRequest describes one export.
type ExportRequest struct {
	IdentityID id.IdentityID
	Format     Format
	// IncludePrivateKey embeds the identity's private key, encrypted
	// under Password. Requesting it without a password is an error.
	IncludePrivateKey bool
	// Password encrypts the private key when IncludePrivateKey is set.
	// ConfirmPassword must match when a password is supplied.
	Password        string
	ConfirmPassword string
	// IncludeCredentials embeds the identity's credential records.
	IncludeCredentials bool
}

// Export is the produced artifact.
type Export struct {
	Filename string
	// ContentType is the suggested MIME type for the download.
	ContentType string
	Payload     []byte
}

// Export serializes an identity in the requested format. Private key
// material only ever leaves encrypted under the supplied password.
func (s *Service) Export(ctx context.Context, req ExportRequest) (Export, error) {
	if _, err := ParseFormat(string(req.Format)); err != nil {
		return Export{}, err
	}
	if err := validatePassword(req); err != nil {
		return Export{}, err
	}

	rec, err := s.identities.FindByID(ctx, req.IdentityID)
	if err != nil {
		return Export{}, err
	}

	b := Bundle{
		Type:    BundleType,
		Version: BundleVersion,
		Metadata: BundleMetadata{
			ExportedAt: time.Now(),
			ExportedBy: exportedBy,
		},
		Identity: bundleIdentity(rec),
	}

	if req.IncludeCredentials {
		owned, err := s.credentials.ListByOwner(ctx, rec.ID)
		if err != nil {
			return Export{}, err
		}
		for _, cred := range owned {
			b.Credentials = append(b.Credentials, bundleCredential(cred))
		}
	}

	if req.IncludePrivateKey && rec.PrivateKey != "" {
		sealed, err := secrets.EncryptWithPassword(rec.PrivateKey, req.Password)
		if err != nil {
			return Export{}, err
		}
		b.EncryptedPrivateKey = sealed
	}

	if req.Format == FormatBackup {
		b.RecoveryInstructions = recoveryInstructions
	}

	payload, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return Export{}, dErrors.Wrap(err, dErrors.CodeInternal, "could not serialize bundle")
	}

	export, err := shapePayload(rec.Name, req, payload)
	if err != nil {
		return Export{}, err
	}

	s.emit(ctx, rec.ID, rec.DID.String(), audit.EventIdentityExported, string(req.Format))
	if s.logger != nil {
		s.logger.InfoContext(ctx, "identity exported",
			"identity_id", rec.ID.String(),
			"format", string(req.Format),
			"credentials", len(b.Credentials),
		)
	}
	return export, nil
}

// validatePassword enforces the password rules: including the private key
// requires a password, and a supplied password always needs a matching
// confirmation.
func validatePassword(req ExportRequest) error {
	if req.IncludePrivateKey && req.Password == "" {
		return dErrors.New(dErrors.CodePasswordRequired, "including the private key requires a password")
	}
	if req.Password != "" && req.Password != req.ConfirmPassword {
		return dErrors.New(dErrors.CodePasswordMismatch, "password confirmation does not match")
	}
	return nil
}

func shapePayload(identityName string, req ExportRequest, payload []byte) (Export, error) {
	switch req.Format {
	case FormatJSON:
		return Export{
			Filename:    SuggestedFilename(identityName, "identity", "json"),
			ContentType: "application/json",
			Payload:     payload,
		}, nil

	case FormatPEM:
		armored := pem.EncodeToMemory(&pem.Block{
			Type:  PEMBlockType,
			Bytes: payload,
		})
		return Export{
			Filename:    SuggestedFilename(identityName, "identity", "pem"),
			ContentType: "application/x-pem-file",
			Payload:     armored,
		}, nil

	case FormatBackup:
		// Same JSON payload as the json format; the recoveryInstructions
		// field and filename mark it as a backup.
		return Export{
			Filename:    SuggestedFilename(identityName, "backup", "json"),
			ContentType: "application/json",
			Payload:     payload,
		}, nil

	default:
		return Export{}, dErrors.New(dErrors.CodeInvalidFormat, "unknown export format: "+string(req.Format))
	}
}

func (s *Service) emit(ctx context.Context, identityID id.IdentityID, subject string, action audit.ActivityEvent, detail string) {
	if s.auditor == nil {
		return
	}
	event := audit.Event{
		Timestamp:  time.Now(),
		IdentityID: identityID.String(),
		Subject:    subject,
		Action:     string(action),
		Detail:     detail,
	}
	if err := s.auditor.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit bundle activity event",
			"error", err,
			"action", string(action),
		)
	}
}
