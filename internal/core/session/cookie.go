package session

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"wwreviews/internal/core/auth"
)

const ctxKey = "session.values"

// Store 请求级 session 读写
type Store interface {
	Get(c *gin.Context, key string) string
	Set(c *gin.Context, key, val string) error
	Delete(c *gin.Context, key string) error
}

// CookieStore 把 session 值签进 HS256 JWT cookie，服务端无状态。
// 篡改或过期的 cookie 视为空 session。
type CookieStore struct {
	Name   string
	TTL    time.Duration
	Secure bool
	Signer *auth.Signer
}

func NewCookieStore(name string, ttl time.Duration, secure bool, signer *auth.Signer) *CookieStore {
	return &CookieStore{Name: name, TTL: ttl, Secure: secure, Signer: signer}
}

func (s *CookieStore) load(c *gin.Context) map[string]string {
	if v, ok := c.Get(ctxKey); ok {
		if m, ok := v.(map[string]string); ok {
			return m
		}
	}
	vals := map[string]string{}
	if raw, err := c.Cookie(s.Name); err == nil && raw != "" {
		if got, err := s.Signer.Verify(raw); err == nil {
			for k, v := range got {
				vals[k] = v
			}
		}
	}
	c.Set(ctxKey, vals)
	return vals
}

func (s *CookieStore) Get(c *gin.Context, key string) string { return s.load(c)[key] }

func (s *CookieStore) Set(c *gin.Context, key, val string) error {
	vals := s.load(c)
	vals[key] = val
	return s.save(c, vals)
}

func (s *CookieStore) Delete(c *gin.Context, key string) error {
	vals := s.load(c)
	if _, ok := vals[key]; !ok {
		return nil
	}
	delete(vals, key)
	return s.save(c, vals)
}

func (s *CookieStore) save(c *gin.Context, vals map[string]string) error {
	c.SetSameSite(http.SameSiteLaxMode)
	if len(vals) == 0 {
		c.SetCookie(s.Name, "", -1, "/", "", s.Secure, true)
		return nil
	}
	tok, err := s.Signer.Sign(vals)
	if err != nil {
		return err
	}
	c.SetCookie(s.Name, tok, int(s.TTL.Seconds()), "/", "", s.Secure, true)
	return nil
}
