// Package identity holds the wallet's identity records: the DID, key
// material, lifecycle status, and recovery configuration for each persona
// the user operates under.
package identity

import (
	"strings"
	"time"

	id "trustlayer/pkg/domain"
	dErrors "trustlayer/pkg/domain-errors"
	"trustlayer/pkg/secrets"
)

// Type classifies the persona an identity represents.
type Type string

const (
	TypeProfessional Type = "professional"
	TypeDeveloper    Type = "developer"
	TypeAcademic     Type = "academic"
	TypePersonal     Type = "personal"
)

// ParseType validates an identity type string.
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(s)); t {
	case TypeProfessional, TypeDeveloper, TypeAcademic, TypePersonal:
		return t, nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown identity type: "+s)
	}
}

// Status is the identity lifecycle state. At most one identity is active
// at a time; activating one deactivates the rest.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// GuardianStatus tracks a guardian's confirmation handshake.
type GuardianStatus string

const (
	GuardianPending   GuardianStatus = "pending"
	GuardianConfirmed GuardianStatus = "confirmed"
)

// Guardian is a trusted party who can co-sign a social recovery.
// Guardians are keyed by wallet address; display names are informational.
type Guardian struct {
	Address     string         `json:"address"`
	DisplayName string         `json:"displayName"`
	Status      GuardianStatus `json:"status"`
	AddedAt     time.Time      `json:"addedAt"`
}

// SignerStatus tracks a multisig signer's standing.
type SignerStatus string

const (
	SignerActive  SignerStatus = "active"
	SignerPending SignerStatus = "pending"
)

// MultisigSigner is one wallet in the recovery signer set.
type MultisigSigner struct {
	Address string       `json:"address"`
	Role    string       `json:"role"`
	Status  SignerStatus `json:"status"`
}

// MultisigConfig is an M-of-N signer policy for recovery. Total always
// equals the length of Signers.
type MultisigConfig struct {
	Required int              `json:"required"`
	Total    int              `json:"total"`
	Signers  []MultisigSigner `json:"signers"`
}

// Validate enforces 1 <= required <= total and a signer entry per slot.
func (c MultisigConfig) Validate() error {
	if c.Required < 1 || c.Total < 1 || c.Required > c.Total {
		return dErrors.New(dErrors.CodeInvalidThreshold,
			"multisig threshold must satisfy 1 <= required <= total")
	}
	if len(c.Signers) != c.Total {
		return dErrors.New(dErrors.CodeInvalidThreshold,
			"multisig signer list must carry exactly total signers")
	}
	for _, signer := range c.Signers {
		if strings.TrimSpace(signer.Address) == "" {
			return dErrors.New(dErrors.CodeInvalidInput, "multisig signer address cannot be empty")
		}
	}
	return nil
}

// Record is a single identity persona. The private key and seed phrase
// never serialize by default; they leave the process only through the
// password-gated export flow.
type Record struct {
	ID          id.IdentityID `json:"id"`
	Name        string        `json:"name"`
	Type        Type          `json:"type"`
	Description string        `json:"description,omitempty"`
	DID         id.DID        `json:"did"`
	Status      Status        `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`

	PublicKey  string `json:"publicKey"`
	PrivateKey string `json:"-"`

	SeedPhrase   []string `json:"-"`
	SeedRevealed bool     `json:"-"`

	Guardians []Guardian      `json:"guardians,omitempty"`
	Multisig  *MultisigConfig `json:"multisig,omitempty"`
}

// RecordOption customizes a freshly created identity record.
type RecordOption func(*Record)

// WithDescription attaches a free-form note about the persona.
func WithDescription(description string) RecordOption {
	return func(r *Record) { r.Description = strings.TrimSpace(description) }
}

// New creates an identity with fresh key material, a derived did:web3
// identifier, and a recovery seed phrase. The seed starts hidden.
func New(name string, idType Type, opts ...RecordOption) (Record, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Record{}, dErrors.New(dErrors.CodeInvalidName, "identity name cannot be empty")
	}
	if _, err := ParseType(string(idType)); err != nil {
		return Record{}, err
	}

	keys, err := secrets.GenerateKeyPair()
	if err != nil {
		return Record{}, err
	}
	seed, err := secrets.NewMnemonic()
	if err != nil {
		return Record{}, err
	}

	rec := Record{
		ID:         id.NewIdentityID(),
		Name:       name,
		Type:       idType,
		DID:        id.NewWeb3DID(didFragment(keys.PublicKeyHex)),
		Status:     StatusInactive,
		CreatedAt:  time.Now(),
		PublicKey:  keys.PublicKeyHex,
		PrivateKey: keys.PrivateKeyHex,
		SeedPhrase: seed,
	}
	for _, opt := range opts {
		opt(&rec)
	}
	return rec, nil
}

// didFragment derives the DID identifier segment from the public key: the
// first 40 hex characters, matching an EVM address length.
func didFragment(publicKeyHex string) string {
	frag := strings.TrimPrefix(publicKeyHex, "0x")
	if len(frag) > 40 {
		frag = frag[:40]
	}
	return frag
}

// GuardianByAddress finds a guardian by wallet address.
func (r Record) GuardianByAddress(address string) (Guardian, bool) {
	for _, g := range r.Guardians {
		if strings.EqualFold(g.Address, address) {
			return g, true
		}
	}
	return Guardian{}, false
}

// ConfirmedGuardians counts guardians that completed the handshake.
func (r Record) ConfirmedGuardians() int {
	n := 0
	for _, g := range r.Guardians {
		if g.Status == GuardianConfirmed {
			n++
		}
	}
	return n
}
