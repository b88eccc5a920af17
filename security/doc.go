// Package security provides the security primitives of the Mixin OAuth
// client: anti-forgery state token generation, optional sealing of
// state values for cookie-backed sessions, and outbound rate limiting
// toward the provider API.
//
// # State Tokens
//
// GenerateState produces the value round-tripped through the
// authorization redirect to detect cross-site request forgery. Blank
// caller input yields 32 hex characters of fresh randomness; non-blank
// input is preserved as a prefix and suffixed with 16 fresh hex
// characters so correlation data supplied by the caller never weakens
// the token.
//
//	state := security.GenerateState("")        // "3f9c...", 32 hex chars
//	state := security.GenerateState("tenant7") // "tenant7_ab12..."
//
// Compare the callback value against the stored one with StateEqual,
// which runs in constant time.
//
// # State Sealing
//
// Hosts that keep session data in client-visible cookies can wrap the
// stored state with a StateSealer so the raw anti-forgery token never
// leaves the server unencrypted. Sealing uses XChaCha20-Poly1305 with a
// random nonce prepended to the ciphertext.
//
// # Outbound Rate Limiting
//
// APILimiter is a token bucket shared by the token exchange and the
// profile fetch. It keeps a burst of concurrent callbacks from
// exceeding the provider's API quota.
package security
