package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wwreviews/internal/core/database/dbtest"
	"wwreviews/internal/domain"
)

func TestParseIDs(t *testing.T) {
	tests := []struct {
		in      string
		want    []uint
		wantErr bool
	}{
		{"", nil, false},
		{"1,2, 3", []uint{1, 2, 3}, false},
		{"4,,", []uint{4}, false},
		{",", []uint{}, false},
		{"1,x", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseIDs(tt.in)
			if tt.wantErr {
				assert.True(t, domain.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReviewService_List(t *testing.T) {
	db := dbtest.New(t)
	cat := domain.Category{Name: "c"}
	require.NoError(t, db.Create(&cat).Error)
	var ids []uint
	for _, n := range []string{"a", "b"} {
		p := domain.Product{ProductBase: domain.ProductBase{Name: n, Link: "https://l", ImageURL: "https://i"}, CategoryID: cat.ID}
		require.NoError(t, db.Create(&p).Error)
		ids = append(ids, p.ID)
	}
	require.NoError(t, db.Create(&domain.Rating{ProductID: ids[1], Value: 2}).Error)

	svc := NewReviewService(db)
	ctx := context.Background()

	all, err := svc.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Nil(t, all[0].AverageRating)
	require.NotNil(t, all[1].AverageRating)
	assert.InDelta(t, 2.0, *all[1].AverageRating, 1e-9)

	none, err := svc.List(ctx, []uint{})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = svc.Get(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
