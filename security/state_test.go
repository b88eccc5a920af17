package security

import (
	"regexp"
	"strings"
	"testing"
)

var (
	standaloneStatePattern = regexp.MustCompile(`^[a-f0-9]{32}$`)
	suffixPattern          = regexp.MustCompile(`^[a-f0-9]{16}$`)
)

func TestGenerateStateBlankInput(t *testing.T) {
	tests := []struct {
		name        string
		callerState string
	}{
		{"empty", ""},
		{"spaces", "   "},
		{"tab and newline", "\t\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := GenerateState(tt.callerState)
			if !standaloneStatePattern.MatchString(state) {
				t.Errorf("GenerateState(%q) = %q, want 32 lowercase hex chars", tt.callerState, state)
			}
		})
	}
}

func TestGenerateStatePreservesCallerPrefix(t *testing.T) {
	tests := []string{
		"foo",
		"tenant-7",
		"already_has_underscores",
		"UPPER",
	}

	for _, callerState := range tests {
		t.Run(callerState, func(t *testing.T) {
			state := GenerateState(callerState)

			prefix := callerState + "_"
			if !strings.HasPrefix(state, prefix) {
				t.Fatalf("GenerateState(%q) = %q, want prefix %q", callerState, state, prefix)
			}
			suffix := strings.TrimPrefix(state, prefix)
			if !suffixPattern.MatchString(suffix) {
				t.Errorf("GenerateState(%q) suffix = %q, want 16 lowercase hex chars", callerState, suffix)
			}
		})
	}
}

func TestGenerateStateUniqueness(t *testing.T) {
	const trials = 10000

	seen := make(map[string]struct{}, trials)
	for range trials {
		state := GenerateState("")
		if _, dup := seen[state]; dup {
			t.Fatalf("GenerateState produced duplicate value %q", state)
		}
		seen[state] = struct{}{}
	}
}

func TestGenerateStateSuffixUniqueness(t *testing.T) {
	a := GenerateState("corr")
	b := GenerateState("corr")
	if a == b {
		t.Errorf("GenerateState(%q) produced identical values %q", "corr", a)
	}
}

func TestStateEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"equal", "foo_aabbccdd00112233", "foo_aabbccdd00112233", true},
		{"mismatch", "x", "y", false},
		{"prefix only", "foo_aa", "foo_ab", false},
		{"left empty", "", "y", false},
		{"right empty", "x", "", false},
		{"both empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StateEqual(tt.a, tt.b); got != tt.want {
				t.Errorf("StateEqual(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
