package domainerrors

import "errors"

// Code represents a domain error category independent of transport layer.
// These codes describe what went wrong in business logic terms, not HTTP terms.
type Code string

const (
	CodeNotFound     Code = "not_found"
	CodeInvalidInput Code = "invalid_input"
	CodeConflict     Code = "conflict"
	CodeUnauthorized Code = "unauthorized"
	CodeInternal     Code = "internal_error"

	// Credential and identity lifecycle codes.
	CodeInvalidCredential Code = "invalid_credential" // malformed credential construction
	CodeInvalidName       Code = "invalid_name"       // empty/blank identity name
	CodeInvalidTransition Code = "invalid_transition" // disallowed credential status change

	// Recovery codes.
	CodeDuplicateGuardian Code = "duplicate_guardian" // guardian address already registered
	CodeInvalidThreshold  Code = "invalid_threshold"  // multisig required > total or < 1
	CodeSecretHidden      Code = "secret_hidden"      // copy/download attempted while seed phrase hidden

	// Import/export codes.
	CodePasswordRequired Code = "password_required" // private key export without password
	CodePasswordMismatch Code = "password_mismatch" // confirmation disagrees
	CodeInvalidFormat    Code = "invalid_format"    // unrecognized bundle discriminator or payload shape
	CodeMissingDID       Code = "missing_did"       // bundle identity lacks a DID
	CodeDecryptionFailed Code = "decryption_failed" // wrong or absent password for encrypted material

	// Verification codes.
	CodeVerificationUnavailable Code = "verification_unavailable" // collaborator unreachable or timed out
)

// Error wraps domain or infrastructure failures with a stable code.
// It is transport-agnostic and can be used across service, store, and other layers.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

// Unwrap implements error unwrapping for error chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is enables errors.Is() to match errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new domain error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap creates a new domain error wrapping an existing error.
// If the wrapped error is already a domain error, the original code is preserved.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{Code: existing.Code, Message: msg, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode checks if an error is a domain error with the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
