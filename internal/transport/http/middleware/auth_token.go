package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"wwreviews/internal/core/cache"
	"wwreviews/internal/domain"
	resp "wwreviews/internal/transport/http/response"
)

const (
	KeyIdentity = "identity"
	KeyUID      = "uid"
)

// IdentityResolver 按 token 查身份（repo.TokenRepo 实现）
type IdentityResolver interface {
	Identity(ctx context.Context, key string) (*domain.Identity, error)
}

type TokenAuth struct {
	Resolver IdentityResolver
	Cache    *cache.Cache // 可为 nil
	TTL      time.Duration
}

// Optional 有 token 就解析，没有就匿名放行；token 无效直接 401
func (a TokenAuth) Optional() gin.HandlerFunc { return a.handler(false) }

// Required 必须带有效 token
func (a TokenAuth) Required() gin.HandlerFunc { return a.handler(true) }

func (a TokenAuth) handler(required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, ok := tokenFromHeader(c.GetHeader("Authorization"))
		if !ok {
			if required {
				resp.Abort(c, resp.CodeUnauthorized, "Authentication credentials were not provided.")
				return
			}
			c.Next()
			return
		}
		id, err := a.resolve(c.Request.Context(), key)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthorized) {
				resp.Abort(c, resp.CodeUnauthorized, "Invalid token.")
				return
			}
			_ = c.Error(err)
			resp.Abort(c, resp.CodeServerError, "")
			return
		}
		c.Set(KeyIdentity, id)
		c.Set(KeyUID, id.UserID)
		c.Next()
	}
}

func (a TokenAuth) resolve(ctx context.Context, key string) (*domain.Identity, error) {
	id, err := cache.GetOrLoadJSON(a.Cache, ctx, cache.IdentityKey(key), a.TTL,
		func(ctx context.Context) (*domain.Identity, error) {
			return a.Resolver.Identity(ctx, key)
		})
	if err != nil {
		return nil, err
	}
	if id == nil {
		return nil, fmt.Errorf("token %q: %w", key[:min(6, len(key))], domain.ErrUnauthorized)
	}
	return id, nil
}

// 支持 "Token <key>"（前端沿用的写法）与 "Bearer <key>"
func tokenFromHeader(h string) (string, bool) {
	scheme, key, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok {
		return "", false
	}
	switch strings.ToLower(scheme) {
	case "token", "bearer":
	default:
		return "", false
	}
	key = strings.TrimSpace(key)
	return key, key != ""
}

// Identity 取当前请求方；匿名返回 nil
func Identity(c *gin.Context) *domain.Identity {
	v, ok := c.Get(KeyIdentity)
	if !ok {
		return nil
	}
	id, _ := v.(*domain.Identity)
	return id
}

// RequireRole 管理端用，必须在 Required 之后
func RequireRole(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := Identity(c)
		if id == nil {
			resp.Abort(c, resp.CodeUnauthorized, "Authentication credentials were not provided.")
			return
		}
		if id.Role != role {
			resp.Abort(c, resp.CodeForbidden, "You do not have permission to perform this action.")
			return
		}
		c.Next()
	}
}
