package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"wwreviews/internal/domain"
	"wwreviews/internal/service"
	"wwreviews/internal/transport/http/ez"
)

// AdminHandler 管理端成员管理；分组已要求 MODERATOR
type AdminHandler struct {
	DB      *gorm.DB
	Members *service.MemberService
}

type memberListQ struct {
	Offset int    `form:"offset,default=0" binding:"gte=0"`
	Limit  int    `form:"limit,default=20"`
	Q      string `form:"q"` // 按 reddit 用户名模糊搜
}

type memberRow struct {
	ID             uint   `json:"id"`
	User           uint   `json:"user"`
	RedditUsername string `json:"reddit_username"`
	Role           string `json:"role"`
}

type memberListOut struct {
	Total int64       `json:"total"`
	Items []memberRow `json:"items"`
}

type roleIn struct {
	Role domain.Role `json:"role" binding:"required,oneof=1 2"`
}

func (h *AdminHandler) MountAdmin(g *gin.RouterGroup) {
	e := ez.New(g)

	// --- GET /admin/v1/members  成员列表 ---
	ez.RegisterAction(e, h.DB, ez.Action[memberListQ, memberListOut]{
		Method: http.MethodGet,
		Path:   "/members",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, _ *gorm.DB, in *memberListQ) (memberListOut, error) {
			if in.Limit <= 0 || in.Limit > 100 {
				in.Limit = 20
			}
			ms, total, err := h.Members.List(c.Request.Context(), in.Offset, in.Limit, in.Q)
			if err != nil {
				return memberListOut{}, ez.Internal("list members failed", err)
			}
			out := memberListOut{Total: total, Items: make([]memberRow, 0, len(ms))}
			for _, m := range ms {
				out.Items = append(out.Items, toRow(m))
			}
			return out, nil
		},
	})

	// --- POST /admin/v1/members/:id/role  升降级 ---
	ez.RegisterAction(e, h.DB, ez.Action[roleIn, memberRow]{
		Method: http.MethodPost,
		Path:   "/members/:id/role",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, _ *gorm.DB, in *roleIn) (memberRow, error) {
			id, err := memberID(c)
			if err != nil {
				return memberRow{}, err
			}
			m, err := h.Members.SetRole(c.Request.Context(), id, in.Role)
			if err != nil {
				return memberRow{}, err
			}
			return toRow(*m), nil
		},
	})

	// --- DELETE /admin/v1/members/:id  删号 ---
	ez.RegisterAction(e, h.DB, ez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/members/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *gorm.DB, _ *struct{}) (gin.H, error) {
			id, err := memberID(c)
			if err != nil {
				return nil, err
			}
			if err := h.Members.DeleteAccount(c.Request.Context(), id); err != nil {
				return nil, err
			}
			return gin.H{"id": id}, nil
		},
	})
}

func memberID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, ez.NotFound("member not found")
	}
	return uint(id), nil
}

func toRow(m domain.Member) memberRow {
	return memberRow{ID: m.ID, User: m.UserID, RedditUsername: m.RedditUsername, Role: m.Role.String()}
}
