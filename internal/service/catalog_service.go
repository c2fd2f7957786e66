package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"wwreviews/internal/domain"
)

type CatalogService struct {
	log *zap.Logger
}

func NewCatalogService(l *zap.Logger) *CatalogService {
	if l == nil {
		l = zap.NewNop()
	}
	return &CatalogService{log: l}
}

// DiffProduct 比较 name、price、link、image_url，按这个顺序每个变化的字段一条记录
func DiffProduct(before, after *domain.Product) []domain.ProductAction {
	var out []domain.ProductAction
	add := func(kind domain.ActionKind, prev, curr any) {
		out = append(out, domain.ProductAction{
			ProductID: after.ID,
			Action:    kind,
			Details:   datatypes.JSONMap{"prev": prev, "curr": curr},
		})
	}
	if before.Name != after.Name {
		add(domain.ActionNameUpdated, before.Name, after.Name)
	}
	if before.Price != after.Price {
		add(domain.ActionPriceUpdated, before.Price, after.Price)
	}
	if before.Link != after.Link {
		add(domain.ActionLinkUpdated, before.Link, after.Link)
	}
	if before.ImageURL != after.ImageURL {
		add(domain.ActionImageUpdated, before.ImageURL, after.ImageURL)
	}
	return out
}

// RecordProductChanges 在调用方事务里写审计记录
func (s *CatalogService) RecordProductChanges(ctx context.Context, tx *gorm.DB, before, after *domain.Product) ([]domain.ProductAction, error) {
	actions := DiffProduct(before, after)
	if len(actions) == 0 {
		return nil, nil
	}
	if err := tx.WithContext(ctx).Create(&actions).Error; err != nil {
		return nil, fmt.Errorf("record product %d changes: %w", after.ID, err)
	}
	for _, a := range actions {
		productActionsTotal.WithLabelValues(a.Action.String()).Inc()
	}
	s.log.Debug("product updated", zap.Uint("product_id", after.ID), zap.Int("actions", len(actions)))
	return actions, nil
}

// CategorySubtree 返回 root 及全部后代 id。父子关系可能成环，带 visited 防止死循环。
func CategorySubtree(ctx context.Context, tx *gorm.DB, root uint) ([]uint, error) {
	seen := map[uint]bool{root: true}
	out := []uint{root}
	frontier := []uint{root}
	for len(frontier) > 0 {
		var children []uint
		if err := tx.WithContext(ctx).Model(&domain.Category{}).
			Where("parent_id IN ?", frontier).
			Pluck("id", &children).Error; err != nil {
			return nil, err
		}
		frontier = frontier[:0]
		for _, id := range children {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
				frontier = append(frontier, id)
			}
		}
	}
	return out, nil
}

// PrepareCategoryDelete 子树里还有商品时拒绝（ErrConflict）；否则删掉全部后代，root 留给调用方删
func (s *CatalogService) PrepareCategoryDelete(ctx context.Context, tx *gorm.DB, root uint) error {
	ids, err := CategorySubtree(ctx, tx, root)
	if err != nil {
		return err
	}
	var n int64
	if err := tx.WithContext(ctx).Model(&domain.Product{}).Where("category_id IN ?", ids).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("category %d is still referenced by %d product(s): %w", root, n, domain.ErrConflict)
	}
	if len(ids) > 1 {
		// 先断开父子引用，成环时也能删
		if err := tx.WithContext(ctx).Model(&domain.Category{}).Where("id IN ?", ids).
			Update("parent_id", nil).Error; err != nil {
			return err
		}
		if err := tx.WithContext(ctx).Where("id IN ?", ids[1:]).Delete(&domain.Category{}).Error; err != nil {
			return err
		}
	}
	return nil
}

// PrepareProductDelete 清掉商品下的评分、反馈、审计记录
func (s *CatalogService) PrepareProductDelete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := tx.WithContext(ctx)
	for _, m := range []any{&domain.Rating{}, &domain.Feedback{}, &domain.ProductAction{}} {
		if err := db.Where("product_id = ?", id).Delete(m).Error; err != nil {
			return err
		}
	}
	return nil
}
