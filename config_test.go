package mixin

import "testing"

func TestFromEnv(t *testing.T) {
	t.Setenv("MIXIN_CLIENT_ID", "env-client-id")
	t.Setenv("MIXIN_CLIENT_SECRET", "env-client-secret")
	t.Setenv("MIXIN_REDIRECT_URL", "https://example.com/cb")
	t.Setenv("MIXIN_SCOPE", "PROFILE:READ ASSETS:READ")
	t.Setenv("MIXIN_PROMPT", "consent")
	t.Setenv("MIXIN_SITE", "https://api.example.test")
	t.Setenv("MIXIN_TOKEN_URL", "https://api.example.test/oauth/token")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}

	if cfg.ClientID != "env-client-id" {
		t.Errorf("ClientID = %q", cfg.ClientID)
	}
	if cfg.ClientSecret != "env-client-secret" {
		t.Errorf("ClientSecret = %q", cfg.ClientSecret)
	}
	if cfg.RedirectURL != "https://example.com/cb" {
		t.Errorf("RedirectURL = %q", cfg.RedirectURL)
	}
	if cfg.Scope != "PROFILE:READ ASSETS:READ" {
		t.Errorf("Scope = %q", cfg.Scope)
	}
	if cfg.Prompt != "consent" {
		t.Errorf("Prompt = %q", cfg.Prompt)
	}
	if cfg.ClientOptions.Site != "https://api.example.test" {
		t.Errorf("ClientOptions.Site = %q", cfg.ClientOptions.Site)
	}
	if cfg.ClientOptions.TokenURL != "https://api.example.test/oauth/token" {
		t.Errorf("ClientOptions.TokenURL = %q", cfg.ClientOptions.TokenURL)
	}
	if cfg.ClientOptions.AuthorizeURL != "" {
		t.Errorf("ClientOptions.AuthorizeURL = %q, want empty", cfg.ClientOptions.AuthorizeURL)
	}
}

func TestFromEnvEmptyEnvironment(t *testing.T) {
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}
	if cfg.ClientID != "" || cfg.Scope != "" {
		t.Errorf("expected zero config, got %+v", cfg)
	}
}

func TestDefaultHTTPClientTimeouts(t *testing.T) {
	client := defaultHTTPClient()
	if client.Timeout != defaultRequestTimeout {
		t.Errorf("Timeout = %v, want %v", client.Timeout, defaultRequestTimeout)
	}
	if client.Transport == nil {
		t.Error("Transport is nil, want dial-timeout transport")
	}
}
