package mixin

import (
	"github.com/quoralabs/mixin-oauth/security"
)

// SealedStore wraps a StateStore with authenticated encryption, for
// hosts whose session store round-trips values through client-visible
// storage such as cookie sessions. Values are sealed on Set and opened
// on Get; a value that fails to open reads as absent, so a tampered
// cookie surfaces as ErrStateMismatch instead of leaking through.
type SealedStore struct {
	store  StateStore
	sealer *security.StateSealer
}

// NewSealedStore wraps store with sealer. A disabled sealer makes the
// wrapper a passthrough.
func NewSealedStore(store StateStore, sealer *security.StateSealer) *SealedStore {
	return &SealedStore{store: store, sealer: sealer}
}

// Set seals the value and stores it. A sealing failure stores nothing,
// which fails the attempt at validation time rather than storing
// plaintext.
func (s *SealedStore) Set(key, value string) {
	sealed, err := s.sealer.Seal(value)
	if err != nil {
		return
	}
	s.store.Set(key, sealed)
}

// Get retrieves and opens the stored value. Unopenable values read as
// absent.
func (s *SealedStore) Get(key string) (string, bool) {
	sealed, ok := s.store.Get(key)
	if !ok {
		return "", false
	}
	value, err := s.sealer.Open(sealed)
	if err != nil {
		return "", false
	}
	return value, true
}

// Delete removes the stored value.
func (s *SealedStore) Delete(key string) {
	s.store.Delete(key)
}
