// Package apikey manages developer API keys for the console's developer
// tools: generation with a sk_live_/sk_test_ token, per-key request
// counts, and soft revocation.
package apikey

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	id "trustlayer/pkg/domain"
	dErrors "trustlayer/pkg/domain-errors"
)

// Status is the key lifecycle state. Revocation is soft so the dashboard
// keeps showing the key's history.
type Status string

const (
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
)

// Key is one developer API key. The token is shown in the dashboard with
// a copy control, so it serializes in full.
type Key struct {
	ID           id.APIKeyID `json:"id"`
	Name         string      `json:"name"`
	Token        string      `json:"key"`
	Status       Status      `json:"status"`
	CreatedAt    time.Time   `json:"createdAt"`
	LastUsedAt   *time.Time  `json:"lastUsedAt,omitempty"`
	RequestCount int         `json:"requests"`
}

// tokenBytes sizes the random token body (40 hex characters).
const tokenBytes = 20

// New mints a key with a fresh token. Keys named for production get the
// sk_live_ prefix; everything else is sk_test_.
func New(name string) (Key, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Key{}, dErrors.New(dErrors.CodeInvalidName, "API key name cannot be empty")
	}

	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return Key{}, dErrors.Wrap(err, dErrors.CodeInternal, "could not generate API key token")
	}
	prefix := "sk_test_"
	if strings.Contains(strings.ToLower(name), "prod") {
		prefix = "sk_live_"
	}

	return Key{
		ID:        id.NewAPIKeyID(),
		Name:      name,
		Token:     prefix + hex.EncodeToString(buf),
		Status:    StatusActive,
		CreatedAt: time.Now(),
	}, nil
}
