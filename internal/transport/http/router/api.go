package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"wwreviews/internal/core/cache"
	"wwreviews/internal/core/config"
	"wwreviews/internal/core/server"
	"wwreviews/internal/core/session"
	"wwreviews/internal/repo"
	"wwreviews/internal/service"
	"wwreviews/internal/transport/http/handler"
	mdw "wwreviews/internal/transport/http/middleware"
	resp "wwreviews/internal/transport/http/response"
)

// Deps 两个 engine 共用的依赖
type Deps struct {
	Log         *zap.Logger
	DB          *gorm.DB
	Cache       *cache.Cache // 可为 nil
	IdentityTTL time.Duration
	Limits      config.Limits
	CORSOrigins []string

	Auth     *service.AuthService // 为 nil 时不挂 reddit 登录
	Sessions session.Store
	Catalog  *service.CatalogService
	Reviews  *service.ReviewService
	Members  *service.MemberService
}

func (d Deps) tokenAuth() mdw.TokenAuth {
	return mdw.TokenAuth{Resolver: repo.NewTokenRepo(d.DB), Cache: d.Cache, TTL: d.IdentityTTL}
}

func NewAPIEngine(d Deps) *gin.Engine {
	r := server.NewRouter(d.Log, server.Options{CORSOrigins: d.CORSOrigins})

	// 中间件
	r.Use(guards(d.Limits)...)
	r.Use(mdw.Metrics(), mdw.AccessLog(d.Log))
	notFound(r)

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		if err := d.Cache.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, resp.Error(resp.CodeUnavailable, "cache unavailable"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": 1})
	})
	r.GET("/metrics", mdw.MetricsHandler())

	// 前缀；token 可选，各资源按 access 表自己判断
	v1 := r.Group("/v1")
	v1.Use(d.tokenAuth().Optional())

	var reg Registry
	if d.Auth != nil {
		reg.Register(&handler.AuthHandler{Svc: d.Auth, Sessions: d.Sessions})
	}
	reg.Register(
		resources{db: d.DB, catalog: d.Catalog, reviews: d.Reviews},
		&handler.ReviewHandler{DB: d.DB, Svc: d.Reviews},
	)
	reg.MountAllAPI(v1)

	return r
}

// guards 限流 / 并发 / 请求体 / 超时，配置为 0 的项不启用
func guards(l config.Limits) []gin.HandlerFunc {
	hs := []gin.HandlerFunc{mdw.RequestID()}
	if l.RPS > 0 {
		hs = append(hs, mdw.RateLimit(rate.Limit(l.RPS), max(l.Burst, 1)))
	}
	if l.PerIPRPS > 0 {
		hs = append(hs, mdw.RateLimitPerIP(rate.Limit(l.PerIPRPS), max(l.PerIPBurst, 1)))
	}
	if l.MaxConcurrent > 0 {
		hs = append(hs, mdw.ConcurrencyLimit(l.MaxConcurrent))
	}
	if l.MaxBodyBytes > 0 {
		hs = append(hs, mdw.MaxBodyBytes(l.MaxBodyBytes))
	}
	if l.TimeoutSec > 0 {
		hs = append(hs, mdw.Timeout(time.Duration(l.TimeoutSec)*time.Second))
	}
	return hs
}

func notFound(r *gin.Engine) {
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, resp.Error(resp.CodeNotFound, ""))
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, resp.Error(resp.CodeMethodNotAllowed,
			`Method "`+c.Request.Method+`" not allowed.`))
	})
}
