package mixin

import "time"

// Identity is the normalized user record produced from the provider's
// /me payload. Every field is optional: a missing raw field leaves the
// zero value, never an error.
type Identity struct {
	// UID is Mixin's stable user identifier (user_id).
	UID string `json:"uid,omitempty"`

	// Name is the profile full_name.
	Name string `json:"name,omitempty"`

	// Email carries the profile identity_number. It is not a validated
	// email address; the field name follows the upstream contract.
	Email string `json:"email,omitempty"`

	// Nickname duplicates Name. Mixin has no separate nickname field.
	Nickname string `json:"nickname,omitempty"`

	// AvatarURL is the profile avatar_url.
	AvatarURL string `json:"avatar_url,omitempty"`
}

// NormalizeIdentity maps a raw /me data object to an Identity. A nil
// profile yields a zero Identity; callers decide whether an empty UID
// fails their authentication.
func NormalizeIdentity(profile map[string]any) Identity {
	if profile == nil {
		return Identity{}
	}
	name := stringField(profile, "full_name")
	return Identity{
		UID:       stringField(profile, "user_id"),
		Name:      name,
		Email:     stringField(profile, "identity_number"),
		Nickname:  name,
		AvatarURL: stringField(profile, "avatar_url"),
	}
}

// stringField reads a string-typed key, tolerating absence and
// mistyped values.
func stringField(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

// Credentials is the token material exposed to the host after a
// completed attempt. Persistence is a host concern; this package never
// caches credentials beyond the attempt that produced them.
type Credentials struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitzero"`

	// Expires reports whether the provider communicated an expiry.
	Expires bool `json:"expires"`

	// Scope is taken from the token response when the provider echoed
	// one, else from the configured scope.
	Scope string `json:"scope"`
}

// AuthResult is the outcome of one completed authentication attempt.
type AuthResult struct {
	// UID is Identity.UID, lifted for convenience. Empty when the
	// profile fetch degraded.
	UID string

	// Info is the normalized identity record.
	Info Identity

	// RawInfo is the unnormalized /me data object, nil when the
	// profile fetch degraded.
	RawInfo map[string]any

	// Credentials is the obtained token material.
	Credentials Credentials
}
