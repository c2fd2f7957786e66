package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"wwreviews/internal/access"
	"wwreviews/internal/domain"
	"wwreviews/internal/service"
	"wwreviews/internal/transport/http/ez"
)

// resources 所有 CRUD 资源挂在 /v1 下
type resources struct {
	db      *gorm.DB
	catalog *service.CatalogService
	reviews *service.ReviewService
}

func (m resources) Priority() int { return 20 }

func (m resources) MountAPI(g *gin.RouterGroup) {
	ez.Crud(ez.CrudConfig[domain.Member]{
		DB: m.db, Group: g, Path: "/member", Resource: access.Member,
		New:         func() *domain.Member { return &domain.Member{} },
		ReadOnly:    true,
		OwnerColumn: "user_id",
		Filters: []ez.Filter{
			{Param: "user", Column: "user_id", Kind: ez.KindInt},
			{Param: "reddit_username", Column: "reddit_username"},
		},
	})

	ez.Crud(ez.CrudConfig[domain.Category]{
		DB: m.db, Group: g, Path: "/category", Resource: access.Category,
		New: func() *domain.Category { return &domain.Category{} },
		Filters: []ez.Filter{
			{Param: "name", Column: "name"},
			{Param: "parent", Column: "parent_id", Kind: ez.KindInt},
			{Param: "no_parent", Column: "parent_id", Op: ez.OpIsNull},
		},
		Hooks: ez.CrudHooks[domain.Category]{
			BeforeSave: func(c *gin.Context, tx *gorm.DB, cat *domain.Category) error {
				if cat.ParentID == nil {
					return nil
				}
				return mustExist(tx, &domain.Category{}, *cat.ParentID, "parent")
			},
			BeforeDelete: func(c *gin.Context, tx *gorm.DB, cat *domain.Category) error {
				return m.catalog.PrepareCategoryDelete(c.Request.Context(), tx, cat.ID)
			},
		},
	})

	ez.Crud(ez.CrudConfig[domain.Product]{
		DB: m.db, Group: g, Path: "/product", Resource: access.Product,
		New:        func() *domain.Product { return &domain.Product{} },
		DisablePut: true,
		Paginate:   true,
		Required:   []string{"price"},
		Filters: concat(
			ez.F("name", ez.KindString, ez.OpExact, ez.OpStartsWith, ez.OpContains, ez.OpIContains),
			ez.F("price", ez.KindFloat, ez.OpExact, ez.OpGte, ez.OpLte),
			ez.F("link", ez.KindString),
		),
		Hooks: ez.CrudHooks[domain.Product]{
			BeforeSave: func(c *gin.Context, tx *gorm.DB, p *domain.Product) error {
				return mustExist(tx, &domain.Category{}, p.CategoryID, "category")
			},
			AfterUpdate: func(c *gin.Context, tx *gorm.DB, before, after *domain.Product) error {
				_, err := m.catalog.RecordProductChanges(c.Request.Context(), tx, before, after)
				return err
			},
			BeforeDelete: func(c *gin.Context, tx *gorm.DB, p *domain.Product) error {
				return m.catalog.PrepareProductDelete(c.Request.Context(), tx, p.ID)
			},
		},
	})

	ez.Crud(ez.CrudConfig[domain.ProductAction]{
		DB: m.db, Group: g, Path: "/product-action", Resource: access.ProductAction,
		New: func() *domain.ProductAction { return &domain.ProductAction{} },
		Filters: []ez.Filter{
			{Param: "product", Column: "product_id", Kind: ez.KindInt},
			{Param: "action", Column: "action", Kind: ez.KindInt},
		},
	})

	ez.Crud(ez.CrudConfig[domain.SuggestedProduct]{
		DB: m.db, Group: g, Path: "/suggested-product", Resource: access.SuggestedProduct,
		New:         func() *domain.SuggestedProduct { return &domain.SuggestedProduct{} },
		OwnerField:  "UserID",
		OwnerColumn: "user_id",
		Required:    []string{"price"},
	})

	ez.Crud(ez.CrudConfig[domain.Rating]{
		DB: m.db, Group: g, Path: "/rating", Resource: access.Rating,
		New:         func() *domain.Rating { return &domain.Rating{} },
		OwnerField:  "UserID",
		OwnerColumn: "user_id",
		Required:    []string{"value"},
		Filters: []ez.Filter{
			{Param: "product", Column: "product_id", Kind: ez.KindInt},
			{Param: "user", Column: "user_id", Kind: ez.KindInt},
			{Param: "value", Column: "value", Kind: ez.KindInt},
		},
		Hooks: ez.CrudHooks[domain.Rating]{
			BeforeSave: func(c *gin.Context, tx *gorm.DB, r *domain.Rating) error {
				return mustExist(tx, &domain.Product{}, r.ProductID, "product")
			},
		},
	})

	ez.Crud(ez.CrudConfig[domain.Feedback]{
		DB: m.db, Group: g, Path: "/feedback", Resource: access.Feedback,
		New:         func() *domain.Feedback { return &domain.Feedback{} },
		OwnerField:  "UserID",
		OwnerColumn: "user_id",
		Filters: []ez.Filter{
			{Param: "product", Column: "product_id", Kind: ez.KindInt},
			{Param: "user", Column: "user_id", Kind: ez.KindInt},
			{Param: "text", Column: "text"},
		},
		Hooks: ez.CrudHooks[domain.Feedback]{
			BeforeSave: func(c *gin.Context, tx *gorm.DB, f *domain.Feedback) error {
				return mustExist(tx, &domain.Product{}, f.ProductID, "product")
			},
			Present: func(c *gin.Context, items []domain.Feedback) ([]any, error) {
				views, err := m.reviews.FeedbackViews(c.Request.Context(), m.db, items)
				if err != nil {
					return nil, err
				}
				out := make([]any, len(views))
				for i := range views {
					out[i] = views[i]
				}
				return out, nil
			},
		},
	})
}

// mustExist 外键目标不存在时报字段错误，而不是等数据库约束报 500
func mustExist(tx *gorm.DB, model any, id uint, field string) error {
	var n int64
	if err := tx.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return domain.NewValidationError(field, fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id))
	}
	return nil
}

func concat(fs ...[]ez.Filter) []ez.Filter {
	var out []ez.Filter
	for _, f := range fs {
		out = append(out, f...)
	}
	return out
}
