package ebay_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/ebay-autolister/internal/ebay"
)

// tokenJSON returns a valid eBay OAuth2 token response as JSON bytes.
func tokenJSON(token string) []byte {
	return []byte(fmt.Sprintf(
		`{"access_token":%q,"expires_in":7200,"token_type":"Application Access Token"}`,
		token,
	))
}

func TestOAuthTokenProvider_Token(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantErr    bool
		wantToken  string
		errContain string
	}{
		{
			name: "successful token fetch",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write(tokenJSON("test-token-123"))
			},
			wantToken: "test-token-123",
		},
		{
			name: "server returns 401",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write(
					[]byte(`{"error":"invalid_client","error_description":"client authentication failed"}`),
				)
			},
			wantErr:    true,
			errContain: "status 401",
		},
		{
			name: "server returns invalid JSON",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte("not json"))
			},
			wantErr:    true,
			errContain: "parsing token response",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			provider := ebay.NewOAuthTokenProvider(
				"test-client-id",
				"test-client-secret",
				ebay.WithTokenURL(srv.URL),
				ebay.WithAuthBackoff(time.Millisecond),
			)

			token, err := provider.Token(context.Background())

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContain)

				var authErr *ebay.AuthError
				assert.ErrorAs(t, err, &authErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, token)
		})
	}
}

func TestOAuthTokenProvider_TokenCaching(t *testing.T) {
	t.Parallel()

	var callCount atomic.Int32

	srv := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			callCount.Add(1)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(tokenJSON("cached-token"))
		}),
	)
	defer srv.Close()

	provider := ebay.NewOAuthTokenProvider(
		"test-client-id",
		"test-client-secret",
		ebay.WithTokenURL(srv.URL),
	)

	// First call should hit the server.
	token1, err := provider.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cached-token", token1)
	assert.Equal(t, int32(1), callCount.Load())

	// Second call within the token lifetime returns the identical token
	// with zero extra exchanges.
	token2, err := provider.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, token1, token2)
	assert.Equal(t, int32(1), callCount.Load())
}

func TestOAuthTokenProvider_TokenRefreshOnExpiry(t *testing.T) {
	t.Parallel()

	var callCount atomic.Int32
	now := time.Now()

	srv := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			callCount.Add(1)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(tokenJSON("refreshed-token"))
		}),
	)
	defer srv.Close()

	currentTime := now
	var mu sync.Mutex

	provider := ebay.NewOAuthTokenProvider(
		"test-client-id",
		"test-client-secret",
		ebay.WithTokenURL(srv.URL),
		ebay.WithNowFunc(func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return currentTime
		}),
	)

	// First call fetches a token.
	_, err := provider.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), callCount.Load())

	// Advance time past expiry.
	mu.Lock()
	currentTime = now.Add(7200 * time.Second)
	mu.Unlock()

	// This call should trigger exactly one more exchange.
	_, err = provider.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), callCount.Load())
}

func TestOAuthTokenProvider_RetriesThenAuthError(t *testing.T) {
	t.Parallel()

	var callCount atomic.Int32

	srv := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			callCount.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}),
	)
	defer srv.Close()

	provider := ebay.NewOAuthTokenProvider(
		"test-client-id",
		"test-client-secret",
		ebay.WithTokenURL(srv.URL),
		ebay.WithAuthRetries(3),
		ebay.WithAuthBackoff(time.Millisecond),
	)

	_, err := provider.Token(context.Background())
	require.Error(t, err)

	var authErr *ebay.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.True(t, ebay.IsFatal(err))
	assert.Equal(t, int32(3), callCount.Load())
}

func TestOAuthTokenProvider_RetryRecovers(t *testing.T) {
	t.Parallel()

	var callCount atomic.Int32

	srv := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if callCount.Add(1) < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(tokenJSON("recovered-token"))
		}),
	)
	defer srv.Close()

	provider := ebay.NewOAuthTokenProvider(
		"test-client-id",
		"test-client-secret",
		ebay.WithTokenURL(srv.URL),
		ebay.WithAuthRetries(3),
		ebay.WithAuthBackoff(time.Millisecond),
	)

	token, err := provider.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "recovered-token", token)
	assert.Equal(t, int32(3), callCount.Load())
}

func TestOAuthTokenProvider_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	var callCount atomic.Int32

	srv := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			callCount.Add(1)
			time.Sleep(10 * time.Millisecond)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(tokenJSON("concurrent-token"))
		}),
	)
	defer srv.Close()

	provider := ebay.NewOAuthTokenProvider(
		"test-client-id",
		"test-client-secret",
		ebay.WithTokenURL(srv.URL),
	)

	const goroutines = 10

	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			token, err := provider.Token(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "concurrent-token", token)
		}()
	}

	wg.Wait()

	// With the mutex held across the refresh, only a few exchanges should
	// happen at most.
	assert.Less(t, callCount.Load(), int32(goroutines))
}

func TestOAuthTokenProvider_RequestFormat(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(
				t,
				"application/x-www-form-urlencoded",
				r.Header.Get("Content-Type"),
			)

			auth := r.Header.Get("Authorization")
			assert.Contains(t, auth, "Basic ")

			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "client_credentials", r.FormValue("grant_type"))
			assert.Contains(t, r.FormValue("scope"), "sell.inventory")

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(tokenJSON("format-test-token"))
		}),
	)
	defer srv.Close()

	provider := ebay.NewOAuthTokenProvider(
		"my-client-id",
		"my-client-secret",
		ebay.WithTokenURL(srv.URL),
	)

	token, err := provider.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "format-test-token", token)
}
