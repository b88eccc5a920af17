// Package instrumentation provides OpenTelemetry metrics and tracing
// for the Mixin OAuth client.
//
// The package is optional end to end: a disabled configuration wires
// no-op providers so the strategy can record unconditionally with zero
// overhead and no nil checks at call sites.
//
// # Metrics
//
// The Metrics holder exposes pre-created instruments covering the
// authorization-code flow: authorizations started, state validation
// failures, code exchanges with their duration and outcome, and profile
// fetches including soft degradations.
//
// # Tracing
//
// Tracer returns a named tracer for spans around the two outbound
// provider calls (token exchange and profile fetch). The helper
// functions (RecordError, SetSpanSuccess, AddProviderAttributes) are
// nil-safe so instrumentation never introduces its own failure mode.
//
// Never record credential values (access tokens, refresh tokens,
// authorization codes, client secrets, raw state tokens) as span
// attributes or metric labels. Only record metadata: outcomes, error
// kinds, durations and status codes.
package instrumentation
