package domainerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

// DomainErrorsSuite tests the domain error primitives that carry every
// user-visible failure code.
type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorInterface() {
	s.Run("returns message when present", func() {
		err := &Error{Code: CodeDuplicateGuardian, Message: "guardian already registered"}
		s.Equal("guardian already registered", err.Error())
	})

	s.Run("returns code when message is empty", func() {
		err := &Error{Code: CodeInvalidThreshold}
		s.Equal("invalid_threshold", err.Error())
	})
}

func (s *DomainErrorsSuite) TestUnwrap() {
	s.Run("returns wrapped error", func() {
		inner := errors.New("cipher: message authentication failed")
		err := &Error{Code: CodeDecryptionFailed, Message: "bundle decryption failed", Err: inner}
		s.Equal(inner, err.Unwrap())
	})

	s.Run("returns nil when no wrapped error", func() {
		err := &Error{Code: CodeNotFound, Message: "identity not found"}
		s.Nil(err.Unwrap())
	})
}

func (s *DomainErrorsSuite) TestIsMatching() {
	s.Run("matches by code only", func() {
		err1 := &Error{Code: CodeMissingDID, Message: "bundle identity has no DID"}
		err2 := &Error{Code: CodeMissingDID, Message: "imported record has no DID"}
		s.True(err1.Is(err2))
	})

	s.Run("does not match different codes", func() {
		err1 := &Error{Code: CodeInvalidFormat}
		err2 := &Error{Code: CodeMissingDID}
		s.False(err1.Is(err2))
	})

	s.Run("does not match non-domain errors", func() {
		err1 := &Error{Code: CodeNotFound}
		err2 := errors.New("not found")
		s.False(err1.Is(err2))
	})

	s.Run("works with errors.Is through chain", func() {
		inner := &Error{Code: CodeVerificationUnavailable, Message: "storage check timed out"}
		wrapped := &Error{Code: CodeInternal, Message: "verify failed", Err: inner}
		target := &Error{Code: CodeVerificationUnavailable}
		s.True(errors.Is(wrapped, target))
	})
}

func (s *DomainErrorsSuite) TestWrapPreservesCode() {
	s.Run("wrapping a domain error keeps the original code", func() {
		inner := New(CodePasswordRequired, "password required when exporting the private key")
		wrapped := Wrap(inner, CodeInternal, "export failed")
		s.True(HasCode(wrapped, CodePasswordRequired))
	})

	s.Run("wrapping a plain error applies the new code", func() {
		wrapped := Wrap(errors.New("unexpected end of JSON input"), CodeInvalidFormat, "bundle is not valid JSON")
		s.True(HasCode(wrapped, CodeInvalidFormat))
	})
}

func (s *DomainErrorsSuite) TestHasCode() {
	s.False(HasCode(nil, CodeNotFound))
	s.False(HasCode(errors.New("plain"), CodeNotFound))
	s.True(HasCode(New(CodeInvalidName, "identity name cannot be empty"), CodeInvalidName))
}
