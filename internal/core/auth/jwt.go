// Package auth 签发与校验 session cookie 用的 HS256 令牌
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid session token")

const audience = "session"

type claims struct {
	Values map[string]string `json:"v,omitempty"`
	jwt.RegisteredClaims
}

// Signer 只用于 cookie，不给 API 调用方发放
type Signer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

func (s *Signer) Sign(values map[string]string) (string, error) {
	if len(s.Secret) == 0 {
		return "", errors.New("auth: empty signing secret")
	}
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Values: values,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.Issuer,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.TTL)),
		},
	})
	return tok.SignedString(s.Secret)
}

// Verify 签名、签发方、受众、过期任一不对都返回 ErrInvalidToken
func (s *Signer) Verify(raw string) (map[string]string, error) {
	p := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.Issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30*time.Second),
	)
	var c claims
	if _, err := p.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) { return s.Secret, nil }); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return c.Values, nil
}
