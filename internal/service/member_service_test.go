package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"wwreviews/internal/core/database/dbtest"
	"wwreviews/internal/domain"
	"wwreviews/pkg/utils"
)

func seedAccount(t *testing.T, db *gorm.DB, name string) (domain.User, domain.Member) {
	t.Helper()
	u := domain.User{Username: name, PasswordHash: "x"}
	require.NoError(t, db.Create(&u).Error)
	m := domain.Member{UserID: u.ID, Role: domain.RoleUser, RedditUsername: name}
	require.NoError(t, db.Create(&m).Error)
	require.NoError(t, db.Create(&domain.AuthToken{Key: utils.NewTokenKey(), UserID: u.ID}).Error)
	return u, m
}

func TestMemberService_SetRoleAndBootstrap(t *testing.T) {
	db := dbtest.New(t)
	svc := NewMemberService(db, nil, nil)
	ctx := context.Background()
	_, alice := seedAccount(t, db, "alice")
	_, bob := seedAccount(t, db, "bob")

	m, err := svc.SetRole(ctx, alice.ID, domain.RoleModerator)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleModerator, m.Role)

	_, err = svc.SetRole(ctx, alice.ID, domain.Role(9))
	assert.True(t, domain.IsValidation(err))
	_, err = svc.SetRole(ctx, 999, domain.RoleUser)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	n, err := svc.BootstrapModerators(ctx, []string{"bob", "nobody"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	require.NoError(t, db.First(&bob, bob.ID).Error)
	assert.Equal(t, domain.RoleModerator, bob.Role)

	list, total, err := svc.List(ctx, 0, 10, "ali")
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "alice", list[0].RedditUsername)
}

func TestMemberService_DeleteAccount(t *testing.T) {
	db := dbtest.New(t)
	svc := NewMemberService(db, nil, nil)
	ctx := context.Background()
	u, m := seedAccount(t, db, "alice")

	cat := domain.Category{Name: "c"}
	require.NoError(t, db.Create(&cat).Error)
	p := domain.Product{ProductBase: domain.ProductBase{Name: "p", Link: "https://l", ImageURL: "https://i"}, CategoryID: cat.ID}
	require.NoError(t, db.Create(&p).Error)
	require.NoError(t, db.Create(&domain.Rating{ProductID: p.ID, UserID: &u.ID, Value: 3}).Error)
	require.NoError(t, db.Create(&domain.Feedback{ProductID: p.ID, UserID: &u.ID, Text: "t"}).Error)
	require.NoError(t, db.Create(&domain.SuggestedProduct{
		ProductBase: domain.ProductBase{Name: "s", Link: "https://l", ImageURL: "https://i"}, UserID: u.ID,
	}).Error)

	require.NoError(t, svc.DeleteAccount(ctx, m.ID))

	var r domain.Rating
	require.NoError(t, db.First(&r).Error)
	assert.Nil(t, r.UserID)
	var f domain.Feedback
	require.NoError(t, db.First(&f).Error)
	assert.Nil(t, f.UserID)

	for _, model := range []any{&domain.User{}, &domain.Member{}, &domain.AuthToken{}, &domain.SuggestedProduct{}} {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		assert.Zero(t, n, "%T", model)
	}

	assert.ErrorIs(t, svc.DeleteAccount(ctx, m.ID), domain.ErrNotFound)

	// 断开作者后的反馈显示为 [deleted]
	views, err := NewReviewService(db).FeedbackViews(ctx, nil, []domain.Feedback{f})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, domain.DeletedUserName, views[0].Username)
	assert.Nil(t, views[0].Rating)
}
