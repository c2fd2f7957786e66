package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"wwreviews/internal/core/database/dbtest"
	"wwreviews/internal/domain"
)

func product(name string, price float64, link, img string) *domain.Product {
	return &domain.Product{ID: 7, ProductBase: domain.ProductBase{Name: name, Price: price, Link: link, ImageURL: img}, CategoryID: 1}
}

func TestDiffProduct(t *testing.T) {
	base := product("a", 1, "https://l/1", "https://i/1")
	tests := []struct {
		name  string
		after *domain.Product
		want  []domain.ActionKind
	}{
		{"unchanged", product("a", 1, "https://l/1", "https://i/1"), nil},
		{"name and price", product("b", 2, "https://l/1", "https://i/1"),
			[]domain.ActionKind{domain.ActionNameUpdated, domain.ActionPriceUpdated}},
		{"everything", product("b", 2, "https://l/2", "https://i/2"),
			[]domain.ActionKind{domain.ActionNameUpdated, domain.ActionPriceUpdated, domain.ActionLinkUpdated, domain.ActionImageUpdated}},
		{"image only", product("a", 1, "https://l/1", "https://i/2"),
			[]domain.ActionKind{domain.ActionImageUpdated}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DiffProduct(base, tt.after)
			var kinds []domain.ActionKind
			for _, a := range got {
				kinds = append(kinds, a.Action)
				assert.Equal(t, uint(7), a.ProductID)
			}
			assert.Equal(t, tt.want, kinds)
		})
	}

	img := DiffProduct(base, product("a", 1, "https://l/1", "https://i/2"))
	require.Len(t, img, 1)
	assert.Equal(t, "https://i/1", img[0].Details["prev"])
	assert.Equal(t, "https://i/2", img[0].Details["curr"])
}

func seedTree(t *testing.T, db *gorm.DB) (root, child, grandchild domain.Category) {
	t.Helper()
	root = domain.Category{Name: "root"}
	require.NoError(t, db.Create(&root).Error)
	child = domain.Category{Name: "child", ParentID: &root.ID}
	require.NoError(t, db.Create(&child).Error)
	grandchild = domain.Category{Name: "grandchild", ParentID: &child.ID}
	require.NoError(t, db.Create(&grandchild).Error)
	return
}

func TestCategorySubtree_Cycle(t *testing.T) {
	db := dbtest.New(t)
	root, child, grandchild := seedTree(t, db)
	// grandchild → root 形成环
	require.NoError(t, db.Model(&root).Update("parent_id", grandchild.ID).Error)

	ids, err := CategorySubtree(context.Background(), db, root.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{root.ID, child.ID, grandchild.ID}, ids)
}

func TestPrepareCategoryDelete(t *testing.T) {
	ctx := context.Background()
	svc := NewCatalogService(nil)

	t.Run("protected by product", func(t *testing.T) {
		db := dbtest.New(t)
		root, _, grandchild := seedTree(t, db)
		p := product("p", 1, "https://l", "https://i")
		p.ID, p.CategoryID = 0, grandchild.ID
		require.NoError(t, db.Create(p).Error)

		err := svc.PrepareCategoryDelete(ctx, db, root.ID)
		assert.ErrorIs(t, err, domain.ErrConflict)
		var n int64
		require.NoError(t, db.Model(&domain.Category{}).Count(&n).Error)
		assert.EqualValues(t, 3, n)
	})

	t.Run("removes descendants", func(t *testing.T) {
		db := dbtest.New(t)
		root, _, _ := seedTree(t, db)
		require.NoError(t, svc.PrepareCategoryDelete(ctx, db, root.ID))

		var names []string
		require.NoError(t, db.Model(&domain.Category{}).Pluck("name", &names).Error)
		assert.Equal(t, []string{"root"}, names)
	})
}

func TestRecordProductChanges(t *testing.T) {
	db := dbtest.New(t)
	cat := domain.Category{Name: "c"}
	require.NoError(t, db.Create(&cat).Error)
	before := product("a", 1, "https://l/1", "https://i/1")
	before.ID, before.CategoryID = 0, cat.ID
	require.NoError(t, db.Create(before).Error)
	after := *before
	after.Link = "https://l/2"

	svc := NewCatalogService(nil)
	got, err := svc.RecordProductChanges(context.Background(), db, before, &after)
	require.NoError(t, err)
	require.Len(t, got, 1)

	var stored domain.ProductAction
	require.NoError(t, db.First(&stored).Error)
	assert.Equal(t, domain.ActionLinkUpdated, stored.Action)
	assert.Equal(t, "https://l/1", stored.Details["prev"])

	require.NoError(t, svc.PrepareProductDelete(context.Background(), db, before.ID))
	var n int64
	require.NoError(t, db.Model(&domain.ProductAction{}).Count(&n).Error)
	assert.Zero(t, n)
}
