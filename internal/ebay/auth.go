package ebay

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/donaldgifford/ebay-autolister/internal/metrics"
)

const (
	defaultTokenURL = "https://api.ebay.com/identity/v1/oauth2/token" //nolint:gosec // not a credential
	defaultScope    = "https://api.ebay.com/oauth/api_scope/sell.inventory"

	// refreshBuffer is how early a cached token is refreshed before its
	// actual expiry.
	refreshBuffer = 5 * time.Minute

	defaultAuthRetries = 3
	defaultAuthBackoff = time.Second
)

// OAuthTokenProvider implements TokenProvider using the eBay OAuth2 client
// credentials flow. It caches the issued token and refreshes automatically
// when expired or within the refresh buffer. The mutex is held across the
// exchange so at most one refresh is in flight; concurrent callers wait for
// its result. Exchange failures are retried with doubling backoff and
// surface as *AuthError when exhausted.
type OAuthTokenProvider struct {
	clientID     string
	clientSecret string
	tokenURL     string
	scopes       string
	client       *http.Client
	maxRetries   int
	retryBackoff time.Duration

	mu      sync.Mutex
	token   string
	expiry  time.Time
	nowFunc func() time.Time // for testing
}

// OAuthOption configures the OAuthTokenProvider.
type OAuthOption func(*OAuthTokenProvider)

// WithTokenURL overrides the default eBay token endpoint.
func WithTokenURL(u string) OAuthOption {
	return func(p *OAuthTokenProvider) {
		p.tokenURL = u
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) OAuthOption {
	return func(p *OAuthTokenProvider) {
		p.client = c
	}
}

// WithAuthRetries sets the number of exchange attempts before giving up.
func WithAuthRetries(n int) OAuthOption {
	return func(p *OAuthTokenProvider) {
		if n > 0 {
			p.maxRetries = n
		}
	}
}

// WithAuthBackoff sets the initial backoff between exchange attempts.
func WithAuthBackoff(d time.Duration) OAuthOption {
	return func(p *OAuthTokenProvider) {
		p.retryBackoff = d
	}
}

// WithNowFunc overrides the time function for testing.
func WithNowFunc(f func() time.Time) OAuthOption {
	return func(p *OAuthTokenProvider) {
		p.nowFunc = f
	}
}

// NewOAuthTokenProvider creates a new eBay OAuth2 token provider scoped to
// the Sell Inventory API.
func NewOAuthTokenProvider(
	clientID, clientSecret string,
	opts ...OAuthOption,
) *OAuthTokenProvider {
	p := &OAuthTokenProvider{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     defaultTokenURL,
		scopes:       defaultScope,
		client:       &http.Client{Timeout: 10 * time.Second},
		maxRetries:   defaultAuthRetries,
		retryBackoff: defaultAuthBackoff,
		nowFunc:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

type tokenErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Token returns a valid OAuth2 access token, refreshing if necessary.
func (p *OAuthTokenProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && p.nowFunc().Before(p.expiry.Add(-refreshBuffer)) {
		return p.token, nil
	}

	return p.refreshLocked(ctx)
}

// refreshLocked performs the credential exchange with retries. Callers must
// hold p.mu.
func (p *OAuthTokenProvider) refreshLocked(ctx context.Context) (string, error) {
	var lastErr error
	backoff := p.retryBackoff

	for attempt := 1; attempt <= p.maxRetries; attempt++ {
		token, expiresIn, err := p.exchange(ctx)
		if err == nil {
			p.token = token
			p.expiry = p.nowFunc().Add(time.Duration(expiresIn) * time.Second)
			metrics.TokenRefreshesTotal.Inc()
			return p.token, nil
		}
		lastErr = err

		if attempt == p.maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return "", &AuthError{Err: ctx.Err()}
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return "", &AuthError{Err: lastErr}
}

func (p *OAuthTokenProvider) exchange(ctx context.Context) (string, int, error) {
	form := url.Values{
		"grant_type": {"client_credentials"},
		"scope":      {p.scopes},
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		p.tokenURL,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return "", 0, fmt.Errorf("creating token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	creds := base64.StdEncoding.EncodeToString(
		[]byte(p.clientID + ":" + p.clientSecret),
	)
	req.Header.Set("Authorization", "Basic "+creds)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("executing token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("reading token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp tokenErrorResponse
		_ = json.Unmarshal(body, &errResp) //nolint:errcheck // best-effort error parsing
		return "", 0, fmt.Errorf(
			"token request failed (status %d): %s - %s",
			resp.StatusCode,
			errResp.Error,
			errResp.ErrorDescription,
		)
	}

	var tokenResp tokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", 0, fmt.Errorf("parsing token response: %w", err)
	}

	return tokenResp.AccessToken, tokenResp.ExpiresIn, nil
}
