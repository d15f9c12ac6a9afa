// internal/common/auth/keycloak.go
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"compatibility-workers/internal/common/errors"
)

const (
	keycloakServiceName = "keycloak"

	// expirySkew renews a token slightly before Keycloak would reject it.
	expirySkew = 30 * time.Second
)

// TokenSource yields bearer tokens for outbound calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// KeycloakClient obtains service tokens with the client credentials flow and caches
// them until shortly before expiry. It is safe for concurrent use.
type KeycloakClient struct {
	baseURL      string
	realm        string
	clientID     string
	clientSecret string
	httpClient   *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
	now         func() time.Time
}

// TokenResponse holds the response from Keycloak's token endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
}

// NewKeycloakClient creates a new instance of KeycloakClient.
func NewKeycloakClient(baseURL, realm, clientID, clientSecret string) *KeycloakClient {
	return &KeycloakClient{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		realm:        realm,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		now:          time.Now,
	}
}

// Token returns the cached access token or fetches a new one.
func (k *KeycloakClient) Token(ctx context.Context) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.accessToken != "" && k.now().Before(k.tokenExpiry) {
		return k.accessToken, nil
	}

	tokenResp, err := k.fetchToken(ctx)
	if err != nil {
		return "", err
	}

	k.accessToken = tokenResp.AccessToken
	k.tokenExpiry = k.now().Add(time.Duration(tokenResp.ExpiresIn)*time.Second - expirySkew)
	return k.accessToken, nil
}

// Invalidate drops the cached token, e.g. after the resource server answered 401.
func (k *KeycloakClient) Invalidate() {
	k.mu.Lock()
	k.accessToken = ""
	k.tokenExpiry = time.Time{}
	k.mu.Unlock()
}

func (k *KeycloakClient) fetchToken(ctx context.Context) (*TokenResponse, error) {
	tokenURL := fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token", k.baseURL, k.realm)

	data := url.Values{}
	data.Set("grant_type", "client_credentials")
	data.Set("client_id", k.clientID)
	data.Set("client_secret", k.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, errors.NewInternalError(fmt.Errorf("create token request: %w", err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := k.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.NewServiceUnavailableError(keycloakServiceName, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if k.isTransientHTTPError(resp.StatusCode) {
			return nil, errors.NewServiceUnavailableError(keycloakServiceName, resp.StatusCode,
				fmt.Errorf("token request failed: %s", string(body)))
		}
		return nil, errors.NewAuthenticationError(
			fmt.Sprintf("keycloak token request failed with status %d: %s", resp.StatusCode, string(body)))
	}

	var tokenResp TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, errors.NewServiceUnavailableError(keycloakServiceName, resp.StatusCode,
			fmt.Errorf("decode token response: %w", err))
	}
	if tokenResp.AccessToken == "" {
		return nil, errors.NewAuthenticationError("keycloak returned an empty access token")
	}

	return &tokenResp, nil
}

// isTransientHTTPError returns true if the HTTP status code indicates a potentially transient error.
func (k *KeycloakClient) isTransientHTTPError(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// StaticToken is a TokenSource for a fixed API key.
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) {
	return string(s), nil
}
