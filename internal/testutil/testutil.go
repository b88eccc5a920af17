package testutil

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// TokenExchangePath is the provider route receiving the code-for-token
// exchange. Mixin uses the authorize path for the exchange as well.
const TokenExchangePath = "/oauth/authorize"

// ProfilePath is the provider userinfo route.
const ProfilePath = "/me"

// MixinAPI fakes the two provider endpoints the authorization-code
// flow touches: the token exchange POST and the authenticated /me
// fetch. Responses use the provider's data/error envelope.
type MixinAPI struct {
	Server *httptest.Server

	// AccessToken is issued by the fake exchange and required as the
	// bearer credential by the profile endpoint.
	AccessToken string

	// RefreshToken, ExpiresIn and TokenType shape the token envelope.
	// Zero values are omitted from the response.
	RefreshToken string
	ExpiresIn    int
	TokenType    string

	// Scope, when set, is echoed in the token envelope.
	Scope string

	// Profile is the data object returned by /me.
	Profile map[string]any

	// TokenHandler and ProfileHandler override the default endpoint
	// behavior when set.
	TokenHandler   http.HandlerFunc
	ProfileHandler http.HandlerFunc

	mu            sync.Mutex
	tokenCalls    int
	profileCalls  int
	lastTokenBody map[string]any
}

// NewMixinAPI starts a fake provider API with a default user profile.
// The server is closed automatically when the test finishes.
func NewMixinAPI(t *testing.T) *MixinAPI {
	t.Helper()

	api := &MixinAPI{
		AccessToken: RandomHex(16),
		ExpiresIn:   3600,
		Profile: map[string]any{
			"user_id":         "12345",
			"full_name":       "Test User",
			"identity_number": "7000101",
			"avatar_url":      "https://mixin.one/avatar.jpg",
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+TokenExchangePath, api.handleToken)
	mux.HandleFunc("GET "+ProfilePath, api.handleProfile)

	api.Server = httptest.NewServer(mux)
	t.Cleanup(api.Server.Close)
	return api
}

// URL returns the fake provider base URL.
func (m *MixinAPI) URL() string {
	return m.Server.URL
}

// TokenURL returns the fake token exchange endpoint.
func (m *MixinAPI) TokenURL() string {
	return m.Server.URL + TokenExchangePath
}

// TokenCalls reports how many exchange requests the fake has served.
func (m *MixinAPI) TokenCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokenCalls
}

// ProfileCalls reports how many /me requests the fake has served.
func (m *MixinAPI) ProfileCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profileCalls
}

// LastExchangeBody returns the decoded JSON body of the most recent
// exchange request, or nil when none was made.
func (m *MixinAPI) LastExchangeBody() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastTokenBody
}

func (m *MixinAPI) handleToken(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.tokenCalls++
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)
	m.lastTokenBody = body
	m.mu.Unlock()

	if m.TokenHandler != nil {
		m.TokenHandler(w, r)
		return
	}

	if r.Header.Get("Content-Type") != "application/json" {
		WriteError(w, http.StatusBadRequest, 400, 20110, "unsupported content type")
		return
	}
	if code, _ := body["code"].(string); code == "" {
		WriteError(w, http.StatusUnauthorized, 401, 10, "invalid authorization code")
		return
	}

	data := map[string]any{"access_token": m.AccessToken}
	if m.RefreshToken != "" {
		data["refresh_token"] = m.RefreshToken
	}
	if m.ExpiresIn > 0 {
		data["expires_in"] = m.ExpiresIn
	}
	if m.TokenType != "" {
		data["token_type"] = m.TokenType
	}
	if m.Scope != "" {
		data["scope"] = m.Scope
	}
	WriteData(w, data)
}

func (m *MixinAPI) handleProfile(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.profileCalls++
	m.mu.Unlock()

	if m.ProfileHandler != nil {
		m.ProfileHandler(w, r)
		return
	}

	if r.Header.Get("Authorization") != "Bearer "+m.AccessToken {
		WriteError(w, http.StatusUnauthorized, 401, 401, "unauthorized")
		return
	}
	WriteData(w, m.Profile)
}

// WriteData writes a success envelope: {"data": v}.
func WriteData(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"data": v})
}

// WriteError writes an error envelope with the given HTTP status and
// provider status/code/description fields.
func WriteError(w http.ResponseWriter, httpStatus, status, code int, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"description": description,
			"status":      status,
			"code":        code,
		},
	})
}

// RandomHex returns n random bytes, hex-encoded, for test fixtures.
func RandomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
