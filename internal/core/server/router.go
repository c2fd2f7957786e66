package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Options struct {
	// 前端来源；为空时放开全部（不带凭证）
	CORSOrigins []string
}

// NewRouter 两个 engine 共用的底座：panic 恢复、CORS、405 判定
func NewRouter(l *zap.Logger, o Options) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.ContextWithFallback = true
	r.Use(ginzap.RecoveryWithZap(l, true))
	r.Use(corsFor(o.CORSOrigins))
	return r
}

func corsFor(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return cors.Default()
	}
	cfg := cors.DefaultConfig()
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	cfg.AddAllowHeaders("Authorization", "X-Request-ID")
	cfg.AddExposeHeaders("X-Request-ID")
	cfg.MaxAge = 12 * time.Hour
	return cors.New(cfg)
}

// Listen 监听参数；超时为 0 时用默认值
type Listen struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

func (l Listen) Addr() string { return net.JoinHostPort(l.Host, strconv.Itoa(l.Port)) }

// BaseURL 打日志用的可点击地址
func (l Listen) BaseURL() string {
	host := l.Host
	if host == "" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s", net.JoinHostPort(host, strconv.Itoa(l.Port)))
}

func BuildServer(l Listen, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              l.Addr(),
		Handler:           h,
		ReadTimeout:       or(l.ReadTimeout, 5*time.Second),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      or(l.WriteTimeout, 10*time.Second),
		IdleTimeout:       or(l.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    1 << 20,
	}
}

// Run 启动并阻塞到 ctx 结束，然后在 grace 内优雅关闭
func Run(ctx context.Context, srv *http.Server, l *zap.Logger, grace time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		l.Info("http starting", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	l.Info("http stopped", zap.String("addr", srv.Addr))
	return nil
}

func or(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}
