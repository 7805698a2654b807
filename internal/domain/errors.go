package domain

import "errors"

// Errors surfaced by the token function
var (
	// Configuration errors
	ErrNotConfigured = errors.New("LiveKit credentials are not configured")

	// Request errors
	ErrMalformedPayload = errors.New("malformed request payload")
	ErrMissingFields    = errors.New("missing required request fields")

	// Token errors
	ErrSigningFailed = errors.New("failed to sign access token")
	ErrInvalidToken  = errors.New("invalid access token")
)

// Error codes carried by DomainError
const (
	CodeNotConfigured  = "not_configured"
	CodeInvalidPayload = "invalid_payload"
	CodeMissingFields  = "missing_fields"
	CodeSigningFailed  = "signing_failed"
	CodeInvalidToken   = "invalid_token"
)

// DomainError wraps a domain error with additional context
type DomainError struct {
	Err     error
	Message string
	Code    string
}

func (e *DomainError) Error() string {
	if e.Message != "" {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func NewDomainError(err error, message string) *DomainError {
	return &DomainError{
		Err:     err,
		Message: message,
	}
}

func NewDomainErrorWithCode(err error, message, code string) *DomainError {
	return &DomainError{
		Err:     err,
		Message: message,
		Code:    code,
	}
}

// CodeOf returns the code of the first DomainError in err's chain.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
