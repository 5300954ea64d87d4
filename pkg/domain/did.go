package domain

import (
	"strings"

	dErrors "trustlayer/pkg/domain-errors"
)

// DID is a decentralized identifier of the form did:<method>:<identifier>.
// The zero value is invalid; construct via ParseDID or NewWeb3DID.
type DID string

// Web3Method is the DID method used for identities created locally.
const Web3Method = "web3"

// ParseDID validates the basic did:<method>:<identifier> shape.
// Method resolution is out of scope; only structure is checked here.
func ParseDID(s string) (DID, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeMissingDID, "DID cannot be empty")
	}
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 || parts[0] != "did" || parts[1] == "" || parts[2] == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid DID format: want did:<method>:<identifier>")
	}
	return DID(s), nil
}

// NewWeb3DID builds a did:web3 identifier from a hex-encoded key fragment.
func NewWeb3DID(keyFragment string) DID {
	return DID("did:" + Web3Method + ":0x" + keyFragment)
}

func (d DID) String() string { return string(d) }

func (d DID) IsZero() bool { return d == "" }

// Method returns the DID method segment, or "" for a malformed value.
func (d DID) Method() string {
	parts := strings.SplitN(string(d), ":", 3)
	if len(parts) != 3 {
		return ""
	}
	return parts[1]
}
