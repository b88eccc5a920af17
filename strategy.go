package mixin

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/quoralabs/mixin-oauth/envelope"
	"github.com/quoralabs/mixin-oauth/instrumentation"
	"github.com/quoralabs/mixin-oauth/security"
)

// strategyName identifies this provider integration.
const strategyName = "mixin"

// SessionStateKey is the fixed key under which the anti-forgery state
// is stored in the host's session-equivalent store.
const SessionStateKey = "mixin.oauth.state"

// StateStore is the host's session-equivalent storage for one
// attempt's anti-forgery state. Implementations are typically backed
// by the host framework's session; the store is owned by the host and
// only touched through this narrow surface.
type StateStore interface {
	Set(key, value string)
	Get(key string) (string, bool)
	Delete(key string)
}

// Strategy implements the Mixin authorization-code flow. A Strategy is
// immutable after construction and safe for concurrent use; all
// per-request mutable state lives on the Attempt.
type Strategy struct {
	clientID     string
	clientSecret string
	redirectURL  string
	callbackPath string
	site         string
	scope        string
	prompt       string
	stateHandler func() string

	oauth      *oauth2.Config
	tokens     *TokenClient
	httpClient *http.Client
	limiter    *security.APILimiter
	logger     *slog.Logger
	inst       *instrumentation.Instrumentation
}

// NewStrategy validates cfg, applies defaults and builds the strategy.
func NewStrategy(cfg *Config) (*Strategy, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("client ID is required")
	}
	if cfg.ClientSecret == "" {
		return nil, fmt.Errorf("client secret is required")
	}

	site := cfg.ClientOptions.Site
	if site == "" {
		site = DefaultSite
	}
	authorizeURL := cfg.ClientOptions.AuthorizeURL
	if authorizeURL == "" {
		authorizeURL = DefaultAuthorizeURL
	}
	tokenURL := cfg.ClientOptions.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	for name, endpoint := range map[string]string{
		"site":      site,
		"authorize": authorizeURL,
		"token":     tokenURL,
	} {
		if _, err := url.ParseRequestURI(endpoint); err != nil {
			return nil, fmt.Errorf("invalid %s URL: %w", name, err)
		}
	}
	site = strings.TrimSuffix(site, "/")

	scope := cfg.Scope
	if scope == "" {
		scope = DefaultScope
	}
	callbackPath := cfg.CallbackPath
	if callbackPath == "" {
		callbackPath = DefaultCallbackPath
	}
	if !strings.HasPrefix(callbackPath, "/") {
		callbackPath = "/" + callbackPath
	}

	stateHandler := cfg.StateHandler
	if stateHandler == nil {
		stateHandler = func() string { return "" }
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = defaultHTTPClient()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	inst := cfg.Instrumentation
	if inst == nil {
		inst = instrumentation.Disabled()
	}

	tokens, err := NewTokenClient(TokenClientConfig{
		TokenURL:        tokenURL,
		HTTPClient:      httpClient,
		Limiter:         cfg.Limiter,
		Logger:          logger,
		Instrumentation: inst,
	})
	if err != nil {
		return nil, err
	}

	return &Strategy{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		redirectURL:  cfg.RedirectURL,
		callbackPath: callbackPath,
		site:         site,
		scope:        scope,
		prompt:       cfg.Prompt,
		stateHandler: stateHandler,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{scope},
			Endpoint: oauth2.Endpoint{
				AuthURL:  authorizeURL,
				TokenURL: tokenURL,
			},
		},
		tokens:     tokens,
		httpClient: httpClient,
		limiter:    cfg.Limiter,
		logger:     logger,
		inst:       inst,
	}, nil
}

// Name returns the strategy name.
func (s *Strategy) Name() string {
	return strategyName
}

// NewAttempt begins one authorization round trip bound to the host's
// per-request state store.
func (s *Strategy) NewAttempt(store StateStore) *Attempt {
	return &Attempt{strategy: s, store: store}
}

// callbackURL rebuilds the callback URL from the request origin: the
// request's scheme and host, stripped of path, query and fragment,
// joined with the configured callback path.
func (s *Strategy) callbackURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + s.callbackPath
}

// Attempt tracks one user's authorization round trip. It is confined
// to a single request/response cycle and must not be shared across
// concurrent requests; the memoized profile belongs to this attempt
// alone.
type Attempt struct {
	strategy *Strategy
	store    StateStore

	token       *oauth2.Token
	rawInfo     map[string]any
	infoFetched bool
}

// AuthorizeURL builds the provider authorization URL for this attempt
// and stores the generated anti-forgery state under SessionStateKey.
// callerState is optional caller-supplied correlation data; when blank
// the configured StateHandler is consulted.
func (a *Attempt) AuthorizeURL(ctx context.Context, callerState string) string {
	return a.authorizeURL(ctx, callerState, "")
}

// AuthorizeURLFromRequest is AuthorizeURL driven by the incoming host
// request: the caller state is taken from the request's "state" query
// parameter, and when no RedirectURL is configured the redirect URI is
// derived from the request origin.
func (a *Attempt) AuthorizeURLFromRequest(r *http.Request) string {
	var redirectURL string
	if a.strategy.redirectURL == "" {
		redirectURL = a.strategy.callbackURL(r)
	}
	return a.authorizeURL(r.Context(), r.URL.Query().Get("state"), redirectURL)
}

func (a *Attempt) authorizeURL(ctx context.Context, callerState, redirectURL string) string {
	s := a.strategy

	if strings.TrimSpace(callerState) == "" {
		callerState = s.stateHandler()
	}
	state := security.GenerateState(callerState)
	a.store.Set(SessionStateKey, state)

	var opts []oauth2.AuthCodeOption
	if s.prompt != "" {
		opts = append(opts, oauth2.SetAuthURLParam("prompt", s.prompt))
	}

	conf := *s.oauth
	if redirectURL != "" {
		conf.RedirectURL = redirectURL
	}

	s.inst.Metrics().RecordAuthorizationStarted(ctx)
	s.logger.Debug("authorization flow started", "strategy", s.Name())

	return conf.AuthCodeURL(state, opts...)
}

// ValidateCallback enforces the CSRF check on the callback request.
// The stored state is consumed regardless of outcome: state tokens are
// single-use. Returns ErrStateMismatch unless the query state and the
// stored state are both present and equal.
func (a *Attempt) ValidateCallback(r *http.Request) error {
	s := a.strategy

	stored, ok := a.store.Get(SessionStateKey)
	a.store.Delete(SessionStateKey)

	received := r.URL.Query().Get("state")
	if !ok || !security.StateEqual(received, stored) {
		s.inst.Metrics().RecordStateValidationFailed(r.Context())
		s.logger.Warn("callback state validation failed",
			"state_present", received != "",
			"session_state_present", ok)
		return ErrStateMismatch
	}
	return nil
}

// Exchange trades the callback's authorization code for a token. The
// redirect URI sent to the provider is the configured RedirectURL or,
// when unset, the callback URL reconstructed from the request origin.
func (a *Attempt) Exchange(r *http.Request) (*oauth2.Token, error) {
	s := a.strategy

	code := r.URL.Query().Get("code")
	if code == "" {
		return nil, ErrMissingCode
	}

	redirectURI := s.redirectURL
	if redirectURI == "" {
		redirectURI = s.callbackURL(r)
	}

	token, err := s.tokens.Exchange(r.Context(), ExchangeParams{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		Code:         code,
		GrantType:    GrantTypeAuthorizationCode,
		RedirectURI:  redirectURI,
	})
	if err != nil {
		return nil, err
	}
	a.token = token
	return token, nil
}

// RawInfo returns the unnormalized /me payload for this attempt,
// fetching it on first use and memoizing the outcome for the rest of
// the attempt. Fetch failures degrade to nil rather than failing the
// attempt: the completed exchange is the security-relevant event, and
// the host decides whether a missing profile invalidates the login.
func (a *Attempt) RawInfo(ctx context.Context) map[string]any {
	if a.infoFetched {
		return a.rawInfo
	}
	a.infoFetched = true

	if a.token == nil {
		return nil
	}
	a.rawInfo = a.strategy.fetchProfile(ctx, a.token.AccessToken)
	return a.rawInfo
}

// Authenticate drives the callback half of the flow: state validation,
// token exchange, profile fetch and normalization. A degraded profile
// fetch still completes the attempt, with a zero identity; only a state
// mismatch, a missing code or an exchange failure fail it.
func (a *Attempt) Authenticate(r *http.Request) (*AuthResult, error) {
	if err := a.ValidateCallback(r); err != nil {
		return nil, err
	}
	token, err := a.Exchange(r)
	if err != nil {
		return nil, err
	}

	raw := a.RawInfo(r.Context())
	identity := NormalizeIdentity(raw)

	return &AuthResult{
		UID:         identity.UID,
		Info:        identity,
		RawInfo:     raw,
		Credentials: a.strategy.credentials(token),
	}, nil
}

// credentials assembles the host-facing credential view. Scope comes
// from the token response when the provider echoed one, falling back
// to the configured scope.
func (s *Strategy) credentials(token *oauth2.Token) Credentials {
	scope := s.scope
	if v, ok := token.Extra("scope").(string); ok && v != "" {
		scope = v
	}

	c := Credentials{
		Token:        token.AccessToken,
		RefreshToken: token.RefreshToken,
		Scope:        scope,
	}
	if !token.Expiry.IsZero() {
		c.ExpiresAt = token.Expiry
		c.Expires = true
	}
	return c
}

// fetchProfile performs the authenticated /me call. Failures are
// reported through logs and metrics, never returned.
func (s *Strategy) fetchProfile(ctx context.Context, accessToken string) map[string]any {
	ctx, span := s.inst.Tracer("strategy").Start(ctx, "mixin.profile_fetch")
	defer span.End()
	start := time.Now()

	profile, status, err := s.profileRequest(ctx, accessToken)

	durationMs := float64(time.Since(start).Microseconds()) / 1000.0
	instrumentation.AddProviderAttributes(span, "profile", status)
	if err != nil {
		instrumentation.RecordError(span, err)
		s.inst.Metrics().RecordProfileFetch(ctx, durationMs, true, errorKind(err))
		s.logger.Warn("profile fetch degraded to null identity",
			"error", err,
			"http_status", status)
		return nil
	}

	instrumentation.SetSpanSuccess(span)
	s.inst.Metrics().RecordProfileFetch(ctx, durationMs, false, "")
	return profile
}

func (s *Strategy) profileRequest(ctx context.Context, accessToken string) (map[string]any, int, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, 0, &ExchangeError{Kind: KindTransport, err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.site+profilePath, nil)
	if err != nil {
		return nil, 0, &ExchangeError{Kind: KindTransport, err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, 0, &ExchangeError{Kind: KindTransport, err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, &ExchangeError{Kind: KindTransport, err: err}
	}

	res := envelope.Parse(raw)
	switch res.Kind {
	case envelope.KindError:
		return nil, resp.StatusCode, &ExchangeError{
			Kind:        KindProviderRejected,
			Description: res.Err.Description,
			Status:      res.Err.Status,
			Code:        res.Err.Code,
		}
	case envelope.KindMalformed:
		return nil, resp.StatusCode, &ExchangeError{Kind: KindMalformed, RawBody: res.Raw}
	}
	return res.Data, resp.StatusCode, nil
}
