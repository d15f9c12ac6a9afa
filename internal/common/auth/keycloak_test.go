package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"compatibility-workers/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenServer(t *testing.T, status int, body string, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/realms/market/protocol/openid-connect/token", r.URL.Path)
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "compat-worker", r.PostForm.Get("client_id"))
		assert.Equal(t, "s3cret", r.PostForm.Get("client_secret"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestKeycloakClient_TokenIsCached(t *testing.T) {
	var calls int32
	server := newTokenServer(t, http.StatusOK, `{"access_token":"abc","expires_in":300,"token_type":"Bearer"}`, &calls)
	defer server.Close()

	client := NewKeycloakClient(server.URL+"/", "market", "compat-worker", "s3cret")

	for i := 0; i < 3; i++ {
		token, err := client.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "abc", token)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestKeycloakClient_TokenRefreshedNearExpiry(t *testing.T) {
	var calls int32
	server := newTokenServer(t, http.StatusOK, `{"access_token":"abc","expires_in":60}`, &calls)
	defer server.Close()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	client := NewKeycloakClient(server.URL, "market", "compat-worker", "s3cret")
	client.now = func() time.Time { return now }

	_, err := client.Token(context.Background())
	require.NoError(t, err)

	now = now.Add(31 * time.Second)
	_, err = client.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

	client.Invalidate()
	_, err = client.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestKeycloakClient_TokenErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		code   errors.ErrorCode
	}{
		{"bad credentials", http.StatusUnauthorized, `{"error":"unauthorized_client"}`, errors.ErrCodeAuthentication},
		{"bad request", http.StatusBadRequest, `{"error":"invalid_grant"}`, errors.ErrCodeAuthentication},
		{"unavailable", http.StatusServiceUnavailable, ``, errors.ErrCodeServiceUnavailable},
		{"garbage body", http.StatusOK, `<html>`, errors.ErrCodeServiceUnavailable},
		{"empty token", http.StatusOK, `{"expires_in":60}`, errors.ErrCodeAuthentication},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			server := newTokenServer(t, tt.status, tt.body, &calls)
			defer server.Close()

			_, err := NewKeycloakClient(server.URL, "market", "compat-worker", "s3cret").Token(context.Background())
			assert.Equal(t, tt.code, errors.CodeOf(err))
		})
	}
}

func TestStaticToken(t *testing.T) {
	token, err := StaticToken("key").Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "key", token)
}
