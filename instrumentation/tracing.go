package instrumentation

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
//
// These name metadata only. Never set attributes to credential values:
// access tokens, refresh tokens, authorization codes, client secrets
// and raw state tokens must not appear in traces. Traces outlive
// requests and are replicated across monitoring infrastructure.
const (
	// OAuth flow attributes
	AttrClientID  = "oauth.client_id"  // Client identifier (non-secret)
	AttrScope     = "oauth.scope"      // Requested scopes
	AttrGrantType = "oauth.grant_type" // OAuth grant type
	AttrTokenType = "oauth.token_type" //nolint:gosec // Token type (Bearer), not the token
	AttrExpiresIn = "oauth.expires_in" // Token expiry duration in seconds
	AttrErrorKind = "oauth.error_kind" // Exchange error classification

	// Provider attributes
	AttrProviderName      = "provider.name"
	AttrProviderOperation = "provider.operation"

	// HTTP attributes
	AttrHTTPStatusCode = "http.status_code"
)

// RecordError records an error on a span with proper status codes (nil-safe).
func RecordError(span trace.Span, err error) {
	if span != nil && err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess marks a span as successful (nil-safe).
func SetSpanSuccess(span trace.Span) {
	if span != nil {
		span.SetStatus(codes.Ok, "")
	}
}

// SetSpanAttributes sets attributes on a span (nil-safe).
func SetSpanAttributes(span trace.Span, attrs ...attribute.KeyValue) {
	if span != nil {
		span.SetAttributes(attrs...)
	}
}

// AddProviderAttributes adds provider call attributes to a span (nil-safe).
func AddProviderAttributes(span trace.Span, operation string, statusCode int) {
	SetSpanAttributes(span,
		attribute.String(AttrProviderName, "mixin"),
		attribute.String(AttrProviderOperation, operation),
		attribute.Int(AttrHTTPStatusCode, statusCode),
	)
}
