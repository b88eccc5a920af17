package mixin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/quoralabs/mixin-oauth/envelope"
	"github.com/quoralabs/mixin-oauth/instrumentation"
	"github.com/quoralabs/mixin-oauth/security"
)

// GrantTypeAuthorizationCode is the grant used by the strategy.
const GrantTypeAuthorizationCode = "authorization_code"

// maxResponseBytes caps how much of a provider response is read. The
// real API returns small JSON bodies; anything larger is hostile or
// misrouted.
const maxResponseBytes = 1 << 20

// ExchangeParams is the JSON body POSTed to the token endpoint. Mixin
// expects a JSON object instead of the form encoding of RFC 6749.
type ExchangeParams struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Code         string `json:"code"`
	GrantType    string `json:"grant_type"`
	RedirectURI  string `json:"redirect_uri,omitempty"`
}

// TokenClient performs the code-for-token exchange against the Mixin
// token endpoint, unwrapping the provider's data/error envelope into
// either an oauth2.Token or an ExchangeError.
type TokenClient struct {
	tokenURL   string
	httpClient *http.Client
	limiter    *security.APILimiter
	logger     *slog.Logger
	inst       *instrumentation.Instrumentation
}

// TokenClientConfig configures a TokenClient. Only TokenURL is
// required; everything else has working defaults.
type TokenClientConfig struct {
	TokenURL        string
	HTTPClient      *http.Client
	Limiter         *security.APILimiter
	Logger          *slog.Logger
	Instrumentation *instrumentation.Instrumentation
}

// NewTokenClient creates a token exchange client.
func NewTokenClient(cfg TokenClientConfig) (*TokenClient, error) {
	if cfg.TokenURL == "" {
		return nil, fmt.Errorf("token URL is required")
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

	return &TokenClient{
		tokenURL:   cfg.TokenURL,
		httpClient: httpClient,
		limiter:    cfg.Limiter,
		logger:     logger,
		inst:       inst,
	}, nil
}

// Exchange performs exactly one code-for-token attempt. It never
// retries: authorization codes are single-use at the provider, so
// retry policy belongs to the host. All failures are *ExchangeError.
func (c *TokenClient) Exchange(ctx context.Context, params ExchangeParams) (*oauth2.Token, error) {
	ctx, span := c.inst.Tracer("client").Start(ctx, "mixin.exchange")
	defer span.End()
	start := time.Now()

	token, status, err := c.exchange(ctx, params)

	durationMs := float64(time.Since(start).Microseconds()) / 1000.0
	instrumentation.AddProviderAttributes(span, "exchange", status)
	if err != nil {
		instrumentation.RecordError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	c.inst.Metrics().RecordCodeExchange(ctx, durationMs, errorKind(err))

	return token, err
}

func (c *TokenClient) exchange(ctx context.Context, params ExchangeParams) (*oauth2.Token, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, &ExchangeError{Kind: KindTransport, err: err}
	}

	body, err := json.Marshal(params)
	if err != nil {
		return nil, 0, &ExchangeError{Kind: KindTransport, err: fmt.Errorf("failed to encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, bytes.NewReader(body))
	if err != nil {
		return nil, 0, &ExchangeError{Kind: KindTransport, err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, &ExchangeError{Kind: KindTransport, err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, &ExchangeError{Kind: KindTransport, err: err}
	}

	token, err := c.parseToken(raw, resp.StatusCode)
	return token, resp.StatusCode, err
}

// parseToken unwraps the envelope and builds the token value object.
func (c *TokenClient) parseToken(raw []byte, httpStatus int) (*oauth2.Token, error) {
	res := envelope.Parse(raw)
	switch res.Kind {
	case envelope.KindError:
		return nil, &ExchangeError{
			Kind:        KindProviderRejected,
			Description: res.Err.Description,
			Status:      res.Err.Status,
			Code:        res.Err.Code,
		}
	case envelope.KindMalformed:
		c.logger.Debug("unrecognized token response",
			"http_status", httpStatus,
			"body_bytes", len(res.Raw))
		return nil, &ExchangeError{Kind: KindMalformed, RawBody: res.Raw}
	}

	accessToken := stringField(res.Data, "access_token")
	if accessToken == "" {
		return nil, &ExchangeError{Kind: KindMissingAccessToken}
	}

	tokenType := stringField(res.Data, "token_type")
	if tokenType == "" {
		tokenType = "Bearer"
	}

	token := &oauth2.Token{
		AccessToken:  accessToken,
		TokenType:    tokenType,
		RefreshToken: stringField(res.Data, "refresh_token"),
	}
	if expiresIn, ok := res.Data["expires_in"].(float64); ok && expiresIn > 0 {
		token.Expiry = time.Now().Add(time.Duration(expiresIn) * time.Second)
	}

	// Extra fields (scope among them) stay reachable via token.Extra.
	return token.WithExtra(res.Data), nil
}
