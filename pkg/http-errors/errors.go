package httpErrors

import (
	"net/http"

	dErrors "trustlayer/pkg/domain-errors"
)

// ToHTTPStatus maps stable domain error codes onto HTTP status codes so the
// transport layer can translate failures in exactly one place.
func ToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeInvalidInput, dErrors.CodeInvalidCredential, dErrors.CodeInvalidName,
		dErrors.CodeInvalidThreshold, dErrors.CodeInvalidFormat, dErrors.CodeMissingDID,
		dErrors.CodePasswordRequired, dErrors.CodePasswordMismatch:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized, dErrors.CodeDecryptionFailed:
		return http.StatusUnauthorized
	case dErrors.CodeSecretHidden:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict, dErrors.CodeDuplicateGuardian, dErrors.CodeInvalidTransition:
		return http.StatusConflict
	case dErrors.CodeVerificationUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
