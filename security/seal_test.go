package security

import (
	"strings"
	"testing"
)

func TestStateSealerRoundTrip(t *testing.T) {
	key, err := GenerateSealKey()
	if err != nil {
		t.Fatalf("GenerateSealKey() error = %v", err)
	}
	sealer, err := NewStateSealer(key)
	if err != nil {
		t.Fatalf("NewStateSealer() error = %v", err)
	}
	if !sealer.IsEnabled() {
		t.Fatal("sealer should be enabled with a valid key")
	}

	tests := []string{
		"3f9c2a1b4d5e6f708192a3b4c5d6e7f8",
		"caller_aabbccdd00112233",
		"",
	}

	for _, state := range tests {
		sealed, err := sealer.Seal(state)
		if err != nil {
			t.Fatalf("Seal(%q) error = %v", state, err)
		}
		if sealed == state && state != "" {
			t.Errorf("Seal(%q) returned plaintext", state)
		}

		opened, err := sealer.Open(sealed)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if opened != state {
			t.Errorf("Open(Seal(%q)) = %q", state, opened)
		}
	}
}

func TestStateSealerNonDeterministic(t *testing.T) {
	key, _ := GenerateSealKey()
	sealer, _ := NewStateSealer(key)

	a, _ := sealer.Seal("same state")
	b, _ := sealer.Seal("same state")
	if a == b {
		t.Error("two seals of the same value should differ (random nonce)")
	}
}

func TestStateSealerRejectsTampering(t *testing.T) {
	key, _ := GenerateSealKey()
	sealer, _ := NewStateSealer(key)

	sealed, err := sealer.Seal("state value")
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	// Flip a character in the ciphertext portion.
	tampered := []byte(sealed)
	last := len(tampered) - 1
	if tampered[last] == 'A' {
		tampered[last] = 'B'
	} else {
		tampered[last] = 'A'
	}

	if _, err := sealer.Open(string(tampered)); err == nil {
		t.Error("Open() accepted tampered ciphertext")
	}
}

func TestStateSealerOpenErrors(t *testing.T) {
	key, _ := GenerateSealKey()
	sealer, _ := NewStateSealer(key)

	tests := []struct {
		name   string
		sealed string
		errMsg string
	}{
		{"not base64", "!!!not base64!!!", "failed to decode base64"},
		{"too short", "YWJj", "too short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sealer.Open(tt.sealed)
			if err == nil {
				t.Fatal("Open() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Open() error = %v, want containing %q", err, tt.errMsg)
			}
		})
	}
}

func TestStateSealerDisabled(t *testing.T) {
	sealer, err := NewStateSealer(nil)
	if err != nil {
		t.Fatalf("NewStateSealer(nil) error = %v", err)
	}
	if sealer.IsEnabled() {
		t.Fatal("sealer should be disabled without a key")
	}

	sealed, err := sealer.Seal("plain")
	if err != nil || sealed != "plain" {
		t.Errorf("Seal() = (%q, %v), want passthrough", sealed, err)
	}
	opened, err := sealer.Open("plain")
	if err != nil || opened != "plain" {
		t.Errorf("Open() = (%q, %v), want passthrough", opened, err)
	}
}

func TestNewStateSealerBadKeySize(t *testing.T) {
	if _, err := NewStateSealer(make([]byte, 16)); err == nil {
		t.Error("NewStateSealer() accepted a 16-byte key")
	}
	if _, err := NewStateSealer(make([]byte, 33)); err == nil {
		t.Error("NewStateSealer() accepted a 33-byte key")
	}
}

func TestSealKeyBase64RoundTrip(t *testing.T) {
	key, err := GenerateSealKey()
	if err != nil {
		t.Fatalf("GenerateSealKey() error = %v", err)
	}

	encoded := SealKeyToBase64(key)
	decoded, err := SealKeyFromBase64(encoded)
	if err != nil {
		t.Fatalf("SealKeyFromBase64() error = %v", err)
	}
	if string(decoded) != string(key) {
		t.Error("round-tripped key differs")
	}

	if _, err := SealKeyFromBase64("not base64 at all!"); err == nil {
		t.Error("SealKeyFromBase64() accepted invalid base64")
	}
	if _, err := SealKeyFromBase64(SealKeyToBase64(make([]byte, 8))); err == nil {
		t.Error("SealKeyFromBase64() accepted a short key")
	}
}
