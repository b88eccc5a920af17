// Package envelope decodes the wrapped JSON responses returned by the
// Mixin API.
//
// Mixin does not use the standard OAuth 2.0 response shapes. Every
// response, success or failure, arrives wrapped at the top level as
// either:
//
//	{"data": {...}}
//	{"error": {"description": ..., "status": ..., "code": ...}}
//
// Parse classifies any byte sequence into one of three results: a
// success payload, a structured provider error, or a malformed body.
// It never returns an error and never panics, so callers can route
// arbitrary (including hostile) response bodies through it and branch
// on the result kind.
package envelope
