package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
)

// State token sizes, in random bytes before hex encoding.
const (
	stateBytes  = 16 // standalone token: 32 hex chars
	suffixBytes = 8  // suffix appended to caller-supplied state: 16 hex chars
)

// GenerateState produces the anti-forgery state value for one
// authorization attempt.
//
// A nil-equivalent callerState (empty or whitespace-only) yields a
// fresh 32-character lowercase hex token. Otherwise the caller's value
// is preserved as a prefix, separated by an underscore and suffixed
// with 16 hex characters of fresh randomness, so downstream correlation
// on the prefix remains possible without making the value guessable.
//
// The function panics if the system RNG fails, which indicates a
// critical system-level security failure rather than a recoverable
// condition.
func GenerateState(callerState string) string {
	if strings.TrimSpace(callerState) == "" {
		return randomHex(stateBytes)
	}
	return callerState + "_" + randomHex(suffixBytes)
}

// StateEqual compares two state values in constant time. Either value
// being empty is a mismatch: absence of a state never passes.
func StateEqual(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// randomHex returns n bytes from crypto/rand, lowercase hex-encoded.
func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand.Read failed: %v", err))
	}
	return hex.EncodeToString(b)
}
