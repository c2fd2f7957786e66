package reddit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wwreviews/internal/domain"
)

func fakeReddit(t *testing.T, meStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "cid" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		_ = r.ParseForm()
		if r.Form.Get("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "at-1",
			"refresh_token": "rt-1",
			"token_type":    "bearer",
			"expires_in":    3600,
			"scope":         "identity",
		})
	})
	mux.HandleFunc("/api/v1/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if meStatus != http.StatusOK {
			w.WriteHeader(meStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"spez"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server) *Client {
	return New(Options{
		ClientID:     "cid",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/v1/reddit-callback/",
		UserAgent:    "test-agent",
		AuthURL:      srv.URL + "/api/v1/authorize",
		TokenURL:     srv.URL + "/api/v1/access_token",
		APIBase:      srv.URL,
	})
}

func TestClient_AuthURL(t *testing.T) {
	c := New(Options{ClientID: "cid", RedirectURL: "http://localhost/cb"})
	u, err := url.Parse(c.AuthURL("st-1"))
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "www.reddit.com", u.Host)
	assert.Equal(t, "cid", q.Get("client_id"))
	assert.Equal(t, "st-1", q.Get("state"))
	assert.Equal(t, "identity", q.Get("scope"))
	assert.Equal(t, "permanent", q.Get("duration"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "http://localhost/cb", q.Get("redirect_uri"))
}

func TestClient_Exchange(t *testing.T) {
	srv := fakeReddit(t, http.StatusOK)
	id, err := newTestClient(srv).Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, "spez", id.Username)
	assert.Equal(t, "rt-1", id.RefreshToken)
}

func TestClient_ExchangeFailures(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		meStatus int
	}{
		{"bad code", "bad-code", http.StatusOK},
		{"identity endpoint down", "good-code", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := fakeReddit(t, tt.meStatus)
			_, err := newTestClient(srv).Exchange(context.Background(), tt.code)
			assert.ErrorIs(t, err, domain.ErrUpstream)
		})
	}
}
