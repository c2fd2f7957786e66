package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wwreviews/internal/core/auth"
	"wwreviews/internal/core/reddit"
	"wwreviews/internal/core/session"
	"wwreviews/internal/domain"
	"wwreviews/internal/service"
)

type stubReddit struct{ name string }

func (s stubReddit) AuthURL(state string) string {
	return "https://reddit.test/authorize?state=" + url.QueryEscape(state)
}

func (s stubReddit) Exchange(_ context.Context, code string) (*reddit.Identity, error) {
	return &reddit.Identity{Username: s.name, RefreshToken: "rt-" + code}, nil
}

func TestRedditLogin_RoundTrip(t *testing.T) {
	d := testDeps(t)
	d.Auth = service.NewAuthService(d.DB, stubReddit{name: "spez"}, "http://fe.test/", nil)
	d.Sessions = session.NewCookieStore("wwr_session", time.Minute, false,
		&auth.Signer{Secret: []byte("s3cret"), Issuer: "test", TTL: time.Minute})
	r := NewAPIEngine(d)

	// 1) 跳转到 reddit，state 写进 cookie
	w := newRecorder(r, httptest.NewRequest(http.MethodGet, "/v1/reddit-auth/", nil))
	require.Equal(t, http.StatusFound, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	// 2) state 不一致
	req := httptest.NewRequest(http.MethodGet, "/v1/reddit-callback/?code=c&state=forged", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = newRecorder(r, req)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"state":["state does not match."]`)
	var n int64
	require.NoError(t, d.DB.Model(&domain.Member{}).Count(&n).Error)
	assert.Zero(t, n)

	// 3) 正常回调
	req = httptest.NewRequest(http.MethodGet, "/v1/reddit-callback/?code=c&state="+url.QueryEscape(state), nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = newRecorder(r, req)
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())
	target, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "fe.test", target.Host)
	assert.Equal(t, "/login", target.Path)
	token := target.Query().Get("token")
	require.Len(t, token, 40)

	// 拿到的 token 可以直接用
	w, env := do(t, r, http.MethodGet, "/v1/member/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeData[listBody](t, env)
	require.Len(t, body.List, 1)
	assert.Equal(t, "spez", body.List[0]["reddit_username"])
	assert.EqualValues(t, domain.RoleUser, body.List[0]["role"])
}

func TestRedditLogin_NoSessionIsMismatch(t *testing.T) {
	d := testDeps(t)
	d.Auth = service.NewAuthService(d.DB, stubReddit{name: "spez"}, "http://fe.test/", nil)
	d.Sessions = session.NewCookieStore("wwr_session", time.Minute, false,
		&auth.Signer{Secret: []byte("s3cret"), Issuer: "test", TTL: time.Minute})
	r := NewAPIEngine(d)

	w, env := do(t, r, http.MethodGet, "/v1/reddit-callback/?code=c&state=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, http.StatusBadRequest, env.Code)
}
