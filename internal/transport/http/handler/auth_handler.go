package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wwreviews/internal/core/session"
	"wwreviews/internal/service"
	"wwreviews/internal/transport/http/ez"
)

const sessionState = "state"

// AuthHandler reddit 登录两跳：/reddit-auth/ 跳走，/reddit-callback/ 回来
type AuthHandler struct {
	Svc      *service.AuthService
	Sessions session.Store
}

func (h *AuthHandler) MountAPI(g *gin.RouterGroup) {
	g.GET("/reddit-auth/", h.Begin)
	g.GET("/reddit-callback/", h.Callback)
}

func (h *AuthHandler) Priority() int { return 10 }

func (h *AuthHandler) Begin(c *gin.Context) {
	state, url := h.Svc.BeginAuth()
	if err := h.Sessions.Set(c, sessionState, state); err != nil {
		ez.WriteError(c, ez.Internal("save session failed", err))
		return
	}
	c.Redirect(http.StatusFound, url)
}

func (h *AuthHandler) Callback(c *gin.Context) {
	target, err := h.Svc.CompleteAuth(c.Request.Context(),
		c.Query("code"), c.Query("state"), h.Sessions.Get(c, sessionState))
	if err != nil {
		ez.WriteError(c, err)
		return
	}
	if err := h.Sessions.Delete(c, sessionState); err != nil {
		_ = c.Error(err)
	}
	c.Redirect(http.StatusFound, target)
}
