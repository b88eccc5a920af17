package mixin

import (
	"errors"
	"fmt"
)

// ErrStateMismatch is returned when the callback state does not match
// the value stored for the attempt, or when either side is missing.
// The CSRF check is fatal to the attempt; there is no retry.
var ErrStateMismatch = errors.New("authorization state mismatch")

// ErrMissingCode is returned when the callback request carries no
// authorization code.
var ErrMissingCode = errors.New("missing authorization code in callback")

// ErrorKind classifies token exchange and profile fetch failures.
type ErrorKind string

const (
	// KindTransport covers network-level failures: connection refused,
	// timeouts, TLS errors and cancelled requests. Not retried here;
	// the host may retry the whole flow.
	KindTransport ErrorKind = "transport_failure"

	// KindMalformed covers non-JSON bodies and unrecognized envelopes.
	// The raw body is preserved for diagnostics and must never be
	// surfaced to end users verbatim.
	KindMalformed ErrorKind = "malformed_response"

	// KindProviderRejected covers structured provider error envelopes.
	KindProviderRejected ErrorKind = "provider_rejected"

	// KindMissingAccessToken covers success envelopes without an
	// access_token field. A provider contract violation, always fatal:
	// a token is never guessed or substituted.
	KindMissingAccessToken ErrorKind = "missing_access_token"
)

// ExchangeError is the failure result of a provider call. It carries
// the provider's raw error fields so the host can log them and decide
// user-facing messaging; this package never formats end-user text.
type ExchangeError struct {
	Kind        ErrorKind
	Description string // provider error.description, when present
	Status      int    // provider error.status, when present
	Code        int    // provider error.code, when present
	RawBody     []byte // original body, kept for malformed responses
	err         error  // underlying transport error, when any
}

// Error implements the error interface.
func (e *ExchangeError) Error() string {
	switch e.Kind {
	case KindProviderRejected:
		return fmt.Sprintf("mixin api error: %s (status: %d, code: %d)", e.Description, e.Status, e.Code)
	case KindTransport:
		return fmt.Sprintf("mixin api transport failure: %v", e.err)
	case KindMissingAccessToken:
		return "invalid response from mixin api: missing access_token"
	default:
		return "invalid response format from mixin api"
	}
}

// Unwrap exposes the underlying transport error for errors.Is/As.
func (e *ExchangeError) Unwrap() error { return e.err }

// InvalidCredentials reports whether err is a provider-side rejection
// of the attempt. Hosts typically map these to an "invalid credentials"
// outcome; transport and malformed failures are operational instead.
func InvalidCredentials(err error) bool {
	var xe *ExchangeError
	if !errors.As(err, &xe) {
		return false
	}
	return xe.Kind == KindProviderRejected || xe.Kind == KindMissingAccessToken
}

// errorKind extracts the ErrorKind label for metrics, or "" for
// non-exchange errors.
func errorKind(err error) string {
	var xe *ExchangeError
	if errors.As(err, &xe) {
		return string(xe.Kind)
	}
	return ""
}
