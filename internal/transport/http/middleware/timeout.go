package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	resp "wwreviews/internal/transport/http/response"
)

// Timeout 给请求 context 加截止时间；gorm 与 reddit 调用都会感知。
// handler 超时且还没写响应时补一个 504
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if c.Writer.Written() || !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return
		}
		_ = c.Error(ctx.Err())
		resp.Abort(c, resp.CodeTimeout, "request timed out")
	}
}
