package core

import "errors"

// Sentinel errors for token authentication.
var (
	// ErrJWTMissing is returned when the request carries no bearer token.
	ErrJWTMissing = errors.New("jwt missing")

	// ErrJWTInvalid is returned when the token cannot be accepted.
	// It is typically wrapped in a *ValidationError.
	ErrJWTInvalid = errors.New("jwt invalid")

	// ErrClaimsNotFound is returned when claims cannot be retrieved from context.
	ErrClaimsNotFound = errors.New("claims not found in context")
)

// ValidationError is the failure returned by CheckToken for tokens that
// were presented but not accepted. Code separates infrastructure failures
// from rejected tokens in logs and metrics. Callers should not show it to
// clients.
type ValidationError struct {
	// Code is a machine-readable error code (e.g., "jwks_fetch_failed").
	Code string

	// Message is a human-readable error message
	Message string

	// Details contains the underlying error
	Details error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Details != nil {
		return e.Message + ": " + e.Details.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ValidationError) Unwrap() error {
	return e.Details
}

// Is allows the error to be compared with ErrJWTInvalid.
func (e *ValidationError) Is(target error) bool {
	return target == ErrJWTInvalid
}

// Error codes
const (
	ErrorCodeJWKSFetchFailed = "jwks_fetch_failed"
	ErrorCodeTokenRejected   = "token_rejected"
	ErrorCodeSubjectMissing  = "subject_missing"
	ErrorCodeDiscoveryFailed = "discovery_failed"
	ErrorCodeConfigInvalid   = "config_invalid"
	ErrorCodeClaimsNotFound  = "claims_not_found"
)

// NewValidationError creates a new ValidationError with the given code and message.
func NewValidationError(code, message string, details error) *ValidationError {
	return &ValidationError{
		Code:    code,
		Message: message,
		Details: details,
	}
}
