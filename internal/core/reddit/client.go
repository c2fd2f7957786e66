package reddit

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"

	"wwreviews/internal/domain"
)

const (
	DefaultAuthURL  = "https://www.reddit.com/api/v1/authorize"
	DefaultTokenURL = "https://www.reddit.com/api/v1/access_token"
	DefaultAPIBase  = "https://oauth.reddit.com"
)

type Options struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	UserAgent    string
	Timeout      time.Duration

	// 测试时替换为 httptest 地址
	AuthURL  string
	TokenURL string
	APIBase  string
}

// Identity 换码后拿到的外部身份
type Identity struct {
	Username     string
	RefreshToken string
}

type Client struct {
	oauth *oauth2.Config
	hc    *http.Client
	api   *resty.Client
}

func New(o Options) *Client {
	if o.AuthURL == "" {
		o.AuthURL = DefaultAuthURL
	}
	if o.TokenURL == "" {
		o.TokenURL = DefaultTokenURL
	}
	if o.APIBase == "" {
		o.APIBase = DefaultAPIBase
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	// reddit 要求所有请求带 User-Agent，换 token 也不例外
	hc := &http.Client{
		Timeout:   o.Timeout,
		Transport: uaTransport{ua: o.UserAgent, base: http.DefaultTransport},
	}
	return &Client{
		oauth: &oauth2.Config{
			ClientID:     o.ClientID,
			ClientSecret: o.ClientSecret,
			RedirectURL:  o.RedirectURL,
			Scopes:       []string{"identity"},
			Endpoint: oauth2.Endpoint{
				AuthURL:   o.AuthURL,
				TokenURL:  o.TokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		hc: hc,
		api: resty.New().
			SetBaseURL(o.APIBase).
			SetTimeout(o.Timeout).
			SetHeader("User-Agent", o.UserAgent),
	}
}

// AuthURL 授权跳转地址；duration=permanent 才会下发 refresh token
func (c *Client) AuthURL(state string) string {
	return c.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("duration", "permanent"))
}

// Exchange 用授权码换 token，再查当前用户名。外部错误统一包成 ErrUpstream。
func (c *Client) Exchange(ctx context.Context, code string) (*Identity, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.hc)
	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: exchange code: %v", domain.ErrUpstream, err)
	}

	var me struct {
		Name string `json:"name"`
	}
	resp, err := c.api.R().
		SetContext(ctx).
		SetAuthToken(tok.AccessToken).
		SetResult(&me).
		Get("/api/v1/me")
	if err != nil {
		return nil, fmt.Errorf("%w: fetch identity: %v", domain.ErrUpstream, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: fetch identity: status %d", domain.ErrUpstream, resp.StatusCode())
	}
	if me.Name == "" {
		return nil, fmt.Errorf("%w: identity without username", domain.ErrUpstream)
	}
	return &Identity{Username: me.Name, RefreshToken: tok.RefreshToken}, nil
}

type uaTransport struct {
	ua   string
	base http.RoundTripper
}

func (t uaTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if t.ua != "" {
		r = r.Clone(r.Context())
		r.Header.Set("User-Agent", t.ua)
	}
	return t.base.RoundTrip(r)
}
