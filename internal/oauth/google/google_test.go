package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeGoogle(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "at-1", "token_type": "Bearer", "expires_in": 3600})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(Profile{Sub: "g-123", Email: "ana@example.com", EmailVerified: true, Name: "Ana", Picture: "https://p/ana.png"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server) *Client {
	c := New("cid", "secret", "http://localhost/api/auth/google/callback", nil)
	c.Endpoints = Endpoints{Auth: srv.URL + "/auth", Token: srv.URL + "/token", UserInfo: srv.URL + "/userinfo"}
	return c
}

func TestAuthURL(t *testing.T) {
	c := New("cid", "secret", "http://localhost/cb", nil)
	u, err := url.Parse(c.AuthURL("st"))
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "accounts.google.com", u.Host)
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "cid", q.Get("client_id"))
	assert.Equal(t, "st", q.Get("state"))
	assert.Equal(t, "openid email profile", q.Get("scope"))
}

func TestExchangeAndUserInfo(t *testing.T) {
	c := newTestClient(fakeGoogle(t))
	ctx := context.Background()

	tr, err := c.ExchangeCode(ctx, "good-code")
	require.NoError(t, err)
	assert.Equal(t, "at-1", tr.AccessToken)

	p, err := c.UserInfo(ctx, tr.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "g-123", p.Sub)
	assert.Equal(t, "ana@example.com", p.Email)
}

func TestExchangeRejected(t *testing.T) {
	c := newTestClient(fakeGoogle(t))
	_, err := c.ExchangeCode(context.Background(), "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_grant")

	_, err = c.UserInfo(context.Background(), "nope")
	assert.Error(t, err)
}
