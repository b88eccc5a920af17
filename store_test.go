package mixin

import (
	"context"
	"testing"

	"github.com/quoralabs/mixin-oauth/security"
)

func newTestSealer(t *testing.T) *security.StateSealer {
	t.Helper()
	key, err := security.GenerateSealKey()
	if err != nil {
		t.Fatalf("GenerateSealKey() error = %v", err)
	}
	sealer, err := security.NewStateSealer(key)
	if err != nil {
		t.Fatalf("NewStateSealer() error = %v", err)
	}
	return sealer
}

func TestSealedStoreRoundTrip(t *testing.T) {
	backing := newMemStore()
	store := NewSealedStore(backing, newTestSealer(t))

	store.Set("k", "state-value")

	sealed, ok := backing.Get("k")
	if !ok {
		t.Fatal("backing store has no value")
	}
	if sealed == "state-value" {
		t.Error("backing store holds plaintext, want sealed value")
	}

	got, ok := store.Get("k")
	if !ok || got != "state-value" {
		t.Errorf("Get() = (%q, %v), want original value", got, ok)
	}

	store.Delete("k")
	if _, ok := backing.Get("k"); ok {
		t.Error("Delete() did not reach the backing store")
	}
}

func TestSealedStoreTamperedValueReadsAsAbsent(t *testing.T) {
	backing := newMemStore()
	store := NewSealedStore(backing, newTestSealer(t))

	store.Set("k", "state-value")
	backing.Set("k", "not-a-sealed-blob")

	if _, ok := store.Get("k"); ok {
		t.Error("Get() returned a tampered value")
	}
}

func TestSealedStoreDisabledSealerPassthrough(t *testing.T) {
	sealer, err := security.NewStateSealer(nil)
	if err != nil {
		t.Fatalf("NewStateSealer(nil) error = %v", err)
	}

	backing := newMemStore()
	store := NewSealedStore(backing, sealer)
	store.Set("k", "plain")

	if v, _ := backing.Get("k"); v != "plain" {
		t.Errorf("backing value = %q, want passthrough", v)
	}
}

func TestSealedStoreWithStrategy(t *testing.T) {
	strategy := newTestStrategy(t, testConfig())
	backing := newMemStore()
	store := NewSealedStore(backing, newTestSealer(t))

	strategy.NewAttempt(store).AuthorizeURL(context.Background(), "foo")

	state, ok := store.Get(SessionStateKey)
	if !ok {
		t.Fatal("state not stored")
	}
	sealed, _ := backing.Get(SessionStateKey)
	if sealed == state {
		t.Error("session state stored in plaintext")
	}

	if err := strategy.NewAttempt(store).ValidateCallback(callbackRequest(state, "c")); err != nil {
		t.Errorf("ValidateCallback() error = %v", err)
	}
}
