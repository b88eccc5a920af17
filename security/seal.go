package security

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// StateSealer protects session state values for hosts that round-trip
// session data through client-visible storage such as cookie sessions.
// Values are sealed with XChaCha20-Poly1305; the nonce is prepended to
// the ciphertext and the whole blob is base64url-encoded.
type StateSealer struct {
	aead    cipher.AEAD
	enabled bool
}

// NewStateSealer creates a sealer from a key. A nil or empty key
// disables sealing and Seal/Open become passthroughs. The key must be
// exactly 32 bytes otherwise.
func NewStateSealer(key []byte) (*StateSealer, error) {
	if len(key) == 0 {
		return &StateSealer{enabled: false}, nil
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("seal key must be exactly %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AEAD: %w", err)
	}
	return &StateSealer{aead: aead, enabled: true}, nil
}

// Seal encrypts a state value. Returns the input unchanged when
// sealing is disabled.
func (s *StateSealer) Seal(state string) (string, error) {
	if !s.enabled {
		return state, nil
	}

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	// Using the nonce slice as destination prepends it to the
	// ciphertext, producing the storage format: [nonce][ciphertext]
	sealed := s.aead.Seal(nonce, nonce, []byte(state), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open decrypts a sealed state value. Returns the input unchanged when
// sealing is disabled. Any tampering fails authentication.
func (s *StateSealer) Open(sealed string) (string, error) {
	if !s.enabled {
		return sealed, nil
	}

	blob, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("failed to decode base64: %w", err)
	}

	nonceSize := s.aead.NonceSize()
	if len(blob) < nonceSize {
		return "", fmt.Errorf("sealed state too short")
	}

	nonce, ciphertext := blob[:nonceSize], blob[nonceSize:]
	state, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to open sealed state: %w", err)
	}
	return string(state), nil
}

// IsEnabled returns true if sealing is enabled.
func (s *StateSealer) IsEnabled() bool {
	return s.enabled
}

// GenerateSealKey generates a new 32-byte key for a StateSealer.
func GenerateSealKey() ([]byte, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return key, nil
}

// SealKeyFromBase64 decodes a base64-encoded seal key.
func SealKeyFromBase64(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 key: %w", err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	return key, nil
}

// SealKeyToBase64 encodes a seal key to base64.
func SealKeyToBase64(key []byte) string {
	return base64.StdEncoding.EncodeToString(key)
}
