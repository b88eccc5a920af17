// Package mixin implements the OAuth 2.0 authorization-code flow for
// Mixin Network, including the provider's deviations from RFC 6749:
// the token exchange takes a JSON body, and every response is wrapped
// in a data/error envelope.
//
// The package is host-framework agnostic. The host owns routing,
// sessions and cookies; it injects a StateStore for the anti-forgery
// state of each attempt and receives a normalized AuthResult back.
//
// # Usage
//
//	cfg := &mixin.Config{
//	    ClientID:     os.Getenv("MIXIN_CLIENT_ID"),
//	    ClientSecret: os.Getenv("MIXIN_CLIENT_SECRET"),
//	}
//	strategy, err := mixin.NewStrategy(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Request phase: redirect the user to the provider.
//	attempt := strategy.NewAttempt(sessionStore)
//	http.Redirect(w, r, attempt.AuthorizeURLFromRequest(r), http.StatusFound)
//
//	// Callback phase: validate, exchange and normalize.
//	attempt = strategy.NewAttempt(sessionStore)
//	result, err := attempt.Authenticate(r)
//
// An Attempt is confined to a single request/response cycle. One
// attempt instance handles exactly one user's round trip and must not
// be shared across concurrent requests.
//
// Identity mapping follows the provider contract: the Email field
// carries Mixin's identity_number (not a validated email address) and
// Nickname duplicates Name. A failed profile fetch degrades to a zero
// identity instead of failing the attempt; the completed token exchange
// is the security-relevant event, and the host decides whether a
// missing profile invalidates the login.
package mixin
