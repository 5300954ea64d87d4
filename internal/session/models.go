// Package session manages wallet connections. Connecting a wallet opens
// a session bound to the wallet address and a device fingerprint; the
// session token gates every identity operation in the console.
package session

import (
	"regexp"
	"time"

	id "trustlayer/pkg/domain"
	dErrors "trustlayer/pkg/domain-errors"
)

// Session is one active wallet connection.
type Session struct {
	ID            id.SessionID `json:"id"`
	WalletAddress string       `json:"walletAddress"`
	Fingerprint   string       `json:"-"`
	ConnectedAt   time.Time    `json:"connectedAt"`
	ExpiresAt     time.Time    `json:"expiresAt"`
}

var walletAddressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// ParseWalletAddress validates the EVM address shape.
func ParseWalletAddress(s string) (string, error) {
	if !walletAddressPattern.MatchString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "wallet address must be a 0x-prefixed 40-hex-digit string")
	}
	return s, nil
}
