package mixin

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/quoralabs/mixin-oauth/instrumentation"
	"github.com/quoralabs/mixin-oauth/security"
)

// Default provider endpoints. The token endpoint matches the exchange
// URL the provider currently documents for the authorization-code
// grant; all three are overridable through ClientOptions so a
// provider-side endpoint move is a configuration change.
const (
	DefaultSite         = "https://api.mixin.one"
	DefaultAuthorizeURL = "https://mixin.one/oauth/authorize"
	DefaultTokenURL     = "https://api.mixin.one/oauth/authorize"
)

// Flow defaults.
const (
	// DefaultScope is requested when the host configures none.
	DefaultScope = "PROFILE:READ"

	// DefaultCallbackPath is the host route the provider redirects
	// back to when no explicit RedirectURL is configured.
	DefaultCallbackPath = "/auth/mixin/callback"

	// profilePath is the userinfo endpoint, relative to Site.
	profilePath = "/me"
)

// Transport timeouts. A slow or unresponsive provider must not stall
// the surrounding host request: connections open within the dial
// timeout and the whole call finishes within the request timeout
// unless the host injects its own client.
const (
	defaultDialTimeout    = 2 * time.Second
	defaultRequestTimeout = 5 * time.Second
)

// ClientOptions overrides the provider endpoints.
type ClientOptions struct {
	// Site is the API base URL; the profile endpoint is resolved
	// against it.
	Site string `env:"MIXIN_SITE"`

	// AuthorizeURL is where the user is sent to approve access.
	AuthorizeURL string `env:"MIXIN_AUTHORIZE_URL"`

	// TokenURL receives the code-for-token exchange.
	TokenURL string `env:"MIXIN_TOKEN_URL"`
}

// Config holds the strategy configuration. It is read once by
// NewStrategy and treated as immutable from the moment an attempt
// begins.
type Config struct {
	// ClientID is the Mixin OAuth client ID (required).
	ClientID string `env:"MIXIN_CLIENT_ID"`

	// ClientSecret is the Mixin OAuth client secret (required).
	ClientSecret string `env:"MIXIN_CLIENT_SECRET"`

	// RedirectURL is the absolute callback URL registered with the
	// provider. When empty, the strategy reconstructs it per request
	// from the request's scheme and host plus CallbackPath.
	RedirectURL string `env:"MIXIN_REDIRECT_URL"`

	// CallbackPath is the fixed callback route used when RedirectURL
	// is derived from the request. Default: DefaultCallbackPath.
	CallbackPath string `env:"MIXIN_CALLBACK_PATH"`

	// ClientOptions overrides the provider endpoints.
	ClientOptions ClientOptions

	// Scope is the requested authorization scope. Default: DefaultScope.
	Scope string `env:"MIXIN_SCOPE"`

	// Prompt is forwarded to the authorize endpoint when set.
	Prompt string `env:"MIXIN_PROMPT"`

	// StateHandler derives the default caller state consulted when the
	// incoming request supplies none. The returned value becomes the
	// correlation prefix of the generated state token; returning ""
	// (the default) yields a purely random token.
	StateHandler func() string

	// HTTPClient overrides the transport for provider calls. The
	// default enforces the package's dial and request timeouts. A
	// context cancellation surfaces as a transport failure.
	HTTPClient *http.Client

	// Limiter optionally caps outbound provider calls.
	Limiter *security.APILimiter

	// Logger for structured logging. Defaults to slog.Default().
	Logger *slog.Logger

	// Instrumentation provides metrics and tracing. Defaults to a
	// no-op instance.
	Instrumentation *instrumentation.Instrumentation
}

// FromEnv builds a Config from MIXIN_* environment variables. Values
// absent from the environment keep their zero value and pick up the
// package defaults in NewStrategy.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return &cfg, nil
}

// defaultHTTPClient builds the transport used when the host injects
// none.
func defaultHTTPClient() *http.Client {
	return &http.Client{
		Timeout: defaultRequestTimeout,
		Transport: &http.Transport{
			DialContext:         (&net.Dialer{Timeout: defaultDialTimeout}).DialContext,
			TLSHandshakeTimeout: defaultDialTimeout,
		},
	}
}
