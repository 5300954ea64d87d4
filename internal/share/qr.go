// Package share renders wallet artifacts for out-of-band exchange.
// The QR surface lets another device pick up a DID or a credential
// reference by pointing a camera at the screen.
package share

import (
	"context"

	"github.com/skip2/go-qrcode"

	"trustlayer/internal/credential"
	credstore "trustlayer/internal/credential/store"
	idstore "trustlayer/internal/identity/store"
	id "trustlayer/pkg/domain"
	dErrors "trustlayer/pkg/domain-errors"
)

// defaultQRSize is the rendered PNG edge length in pixels.
const defaultQRSize = 256

// Service renders QR codes for identities and credentials.
type Service struct {
	identities  idstore.Store
	credentials credstore.Store
	qrSize      int
}

type Option func(*Service)

// WithQRSize overrides the rendered image size.
func WithQRSize(px int) Option {
	return func(s *Service) {
		if px > 0 {
			s.qrSize = px
		}
	}
}

func NewService(identities idstore.Store, credentials credstore.Store, opts ...Option) *Service {
	if identities == nil {
		panic("share.NewService: identity store is required")
	}
	if credentials == nil {
		panic("share.NewService: credential store is required")
	}
	s := &Service{identities: identities, credentials: credentials, qrSize: defaultQRSize}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IdentityQR renders the identity's DID as a PNG QR code.
func (s *Service) IdentityQR(ctx context.Context, identityID id.IdentityID) ([]byte, error) {
	rec, err := s.identities.FindByID(ctx, identityID)
	if err != nil {
		return nil, err
	}
	return s.encode(rec.DID.String())
}

// CredentialQR renders a scannable reference to one credential: the
// holder DID plus the credential ID, enough for a verifier to request
// the full document.
func (s *Service) CredentialQR(ctx context.Context, credID id.CredentialID) ([]byte, error) {
	rec, err := s.credentials.FindByID(ctx, credID)
	if err != nil {
		return nil, err
	}
	return s.encode(credentialReference(rec))
}

func credentialReference(rec credential.Record) string {
	return rec.HolderDID.String() + "#" + rec.ID.String()
}

func (s *Service) encode(data string) ([]byte, error) {
	png, err := qrcode.Encode(data, qrcode.Medium, s.qrSize)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not render QR code")
	}
	return png, nil
}
