// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"

	dErrors "trustlayer/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing an IdentityID where a CredentialID is expected.
type (
	IdentityID   uuid.UUID
	CredentialID uuid.UUID
	SessionID    uuid.UUID
)

// APIKeyID is a prefixed string identifier for developer API keys
// (e.g., "ak_1a2b3c4d"). Distinct from the secret token itself.
type APIKeyID string

// Parse functions - use at trust boundaries (handlers, file imports).

func ParseIdentityID(s string) (IdentityID, error) {
	id, err := parseUUID(s, "identity ID")
	return IdentityID(id), err
}

func ParseCredentialID(s string) (CredentialID, error) {
	id, err := parseUUID(s, "credential ID")
	return CredentialID(id), err
}

func ParseSessionID(s string) (SessionID, error) {
	id, err := parseUUID(s, "session ID")
	return SessionID(id), err
}

func ParseAPIKeyID(s string) (APIKeyID, error) {
	if !strings.HasPrefix(s, "ak_") || len(s) <= len("ak_") {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid API key ID format")
	}
	return APIKeyID(s), nil
}

// New functions - use when records are created.

func NewIdentityID() IdentityID     { return IdentityID(uuid.New()) }
func NewCredentialID() CredentialID { return CredentialID(uuid.New()) }
func NewSessionID() SessionID       { return SessionID(uuid.New()) }

func NewAPIKeyID() APIKeyID {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	return APIKeyID("ak_" + hex.EncodeToString(buf))
}

// String methods - for logging and serialization.

func (id IdentityID) String() string   { return uuid.UUID(id).String() }
func (id CredentialID) String() string { return uuid.UUID(id).String() }
func (id SessionID) String() string    { return uuid.UUID(id).String() }
func (id APIKeyID) String() string     { return string(id) }

// IsNil checks - used for service-layer validation.

func (id IdentityID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id CredentialID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id APIKeyID) IsNil() bool     { return id == "" }

// parseUUID is the shared validation logic. Nil UUIDs are allowed here;
// use IsNil() at the service layer so store lookups can still return a
// proper "not found" for the nil ID.
func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label+" format")
	}
	return id, nil
}
