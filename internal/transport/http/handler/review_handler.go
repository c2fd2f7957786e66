package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"wwreviews/internal/access"
	"wwreviews/internal/domain"
	"wwreviews/internal/service"
	"wwreviews/internal/transport/http/ez"
	"wwreviews/internal/transport/http/middleware"
)

// ReviewHandler basic-product-review 只读投影
type ReviewHandler struct {
	DB  *gorm.DB
	Svc *service.ReviewService
}

type reviewListQ struct {
	IDs string `form:"ids"`
}

type reviewList struct {
	List  []domain.BasicProductReview `json:"list"`
	Total int                         `json:"total"`
}

func (h *ReviewHandler) MountAPI(g *gin.RouterGroup) {
	e := ez.New(g)

	ez.RegisterAction(e, h.DB, ez.Action[reviewListQ, reviewList]{
		Method: http.MethodGet,
		Path:   "/basic-product-review/",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, _ *gorm.DB, in *reviewListQ) (reviewList, error) {
			if err := access.Authorize(access.BasicProductReview, access.List, middleware.Identity(c)); err != nil {
				return reviewList{}, err
			}
			ids, err := service.ParseIDs(in.IDs)
			if err != nil {
				return reviewList{}, err
			}
			items, err := h.Svc.List(c.Request.Context(), ids)
			if err != nil {
				return reviewList{}, err
			}
			return reviewList{List: items, Total: len(items)}, nil
		},
	})

	ez.RegisterAction(e, h.DB, ez.Action[struct{}, *domain.BasicProductReview]{
		Method: http.MethodGet,
		Path:   "/basic-product-review/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *gorm.DB, _ *struct{}) (*domain.BasicProductReview, error) {
			if err := access.Authorize(access.BasicProductReview, access.Retrieve, middleware.Identity(c)); err != nil {
				return nil, err
			}
			id, err := strconv.ParseUint(c.Param("id"), 10, 64)
			if err != nil {
				return nil, domain.ErrNotFound
			}
			return h.Svc.Get(c.Request.Context(), uint(id))
		},
	})
}
