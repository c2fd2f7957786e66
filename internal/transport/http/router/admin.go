package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wwreviews/internal/core/logger"
	"wwreviews/internal/core/server"
	"wwreviews/internal/domain"
	"wwreviews/internal/transport/http/handler"
	mdw "wwreviews/internal/transport/http/middleware"
)

func NewAdminEngine(d Deps) *gin.Engine {
	r := server.NewRouter(d.Log, server.Options{CORSOrigins: d.CORSOrigins})

	r.Use(guards(d.Limits)...)
	r.Use(mdw.Metrics(), logger.Middleware(d.Log))
	notFound(r)

	// 健康检查
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", mdw.MetricsHandler())

	// 管理端 v1（统一要求 MODERATOR）
	admin := r.Group("/admin/v1")
	admin.Use(d.tokenAuth().Required(), mdw.RequireRole(domain.RoleModerator))

	var reg Registry
	reg.Register(&handler.AdminHandler{DB: d.DB, Members: d.Members})
	reg.MountAllAdmin(admin)

	return r
}
