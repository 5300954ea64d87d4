// Package bundle implements identity portability: exporting an identity
// with its credentials into a self-describing bundle, and importing such
// bundles back into the wallet. Three wire shapes share one payload:
// plain JSON, PEM-armored JSON, and a password-encrypted backup.
package bundle

import (
	"time"

	"trustlayer/internal/credential"
	"trustlayer/internal/identity"
	dErrors "trustlayer/pkg/domain-errors"
)

const (
	// BundleType discriminates trustlayer bundles from arbitrary JSON.
	BundleType = "trustlayer_identity"
	// BundleVersion is bumped on breaking payload changes.
	BundleVersion = "1.0"
	// PEMBlockType is the armor label for the pem format.
	PEMBlockType = "TRUSTLAYER IDENTITY"
)

// Format selects the wire shape of an export.
type Format string

const (
	FormatJSON   Format = "json"
	FormatPEM    Format = "pem"
	FormatBackup Format = "backup"
)

// ParseFormat validates an export format string.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJSON, FormatPEM, FormatBackup:
		return f, nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidFormat, "unknown export format: "+s)
	}
}

// Bundle is the portable payload shared by every format.
type Bundle struct {
	Type        string             `json:"type"`
	Version     string             `json:"version"`
	Metadata    BundleMetadata     `json:"metadata"`
	Identity    BundleIdentity     `json:"identity"`
	Credentials []BundleCredential `json:"credentials,omitempty"`
	// EncryptedPrivateKey is present only when key inclusion was requested
	// with a password. The plaintext key never appears in any bundle.
	EncryptedPrivateKey string `json:"encryptedPrivateKey,omitempty"`
	// RecoveryInstructions is set on backup exports so the file explains
	// how to restore itself.
	RecoveryInstructions string `json:"recoveryInstructions,omitempty"`
}

// BundleMetadata records provenance for an exported bundle.
type BundleMetadata struct {
	ExportedAt time.Time `json:"exportedAt"`
	ExportedBy string    `json:"exportedBy"`
}

// BundleIdentity carries the identity's public half.
type BundleIdentity struct {
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	DID         string    `json:"did"`
	PublicKey   string    `json:"publicKey"`
	CreatedAt   time.Time `json:"createdAt"`
}

// BundleCredential is a credential record in portable form.
type BundleCredential struct {
	Title      string    `json:"title"`
	Issuer     string    `json:"issuer"`
	HolderDID  string    `json:"holderDid"`
	IssueDate  time.Time `json:"issueDate"`
	ExpiryDate time.Time `json:"expiryDate"`
	Status     string    `json:"status"`
	HasZKProof bool      `json:"hasZkProof"`
	StorageRef string    `json:"storageRef,omitempty"`
}

func bundleIdentity(rec identity.Record) BundleIdentity {
	return BundleIdentity{
		Name:        rec.Name,
		Type:        string(rec.Type),
		Description: rec.Description,
		DID:         rec.DID.String(),
		PublicKey:   rec.PublicKey,
		CreatedAt:   rec.CreatedAt,
	}
}

func bundleCredential(rec credential.Record) BundleCredential {
	return BundleCredential{
		Title:      rec.Title,
		Issuer:     rec.Issuer,
		HolderDID:  rec.HolderDID.String(),
		IssueDate:  rec.IssueDate,
		ExpiryDate: rec.ExpiryDate,
		Status:     string(rec.Status),
		HasZKProof: rec.HasZKProof,
		StorageRef: rec.StorageRef,
	}
}
