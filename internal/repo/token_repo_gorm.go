package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"wwreviews/internal/domain"
	"wwreviews/pkg/utils"
)

type TokenRepo struct{ db *gorm.DB }

func NewTokenRepo(db *gorm.DB) *TokenRepo { return &TokenRepo{db: db} }

// FindByUser 不存在返回 (nil, nil)
func (r *TokenRepo) FindByUser(ctx context.Context, userID uint) (*domain.AuthToken, error) {
	var t domain.AuthToken
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &t, err
}

// GetOrCreate 每个用户只有一个 token，重复登录复用
func (r *TokenRepo) GetOrCreate(ctx context.Context, userID uint) (*domain.AuthToken, error) {
	t, err := r.FindByUser(ctx, userID)
	if err != nil || t != nil {
		return t, err
	}
	return r.insertOrFetch(ctx, userID)
}

// insertOrFetch 并发登录时另一请求可能已插入；用 ON CONFLICT 跳过，
// 失败的 INSERT 在 postgres 上会让整个事务作废
func (r *TokenRepo) insertOrFetch(ctx context.Context, userID uint) (*domain.AuthToken, error) {
	t := &domain.AuthToken{Key: utils.NewTokenKey(), UserID: userID}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(t)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 1 {
		return t, nil
	}
	return r.FindByUser(ctx, userID)
}

// Identity 按 token 解析请求方身份；token 不存在返回 (nil, nil)。
// 没有 Member 的账号按普通用户处理。
func (r *TokenRepo) Identity(ctx context.Context, key string) (*domain.Identity, error) {
	type row struct {
		UserID   uint
		Username string
		MemberID *uint
		Role     *domain.Role
	}
	var out row
	err := r.db.WithContext(ctx).
		Table("auth_tokens AS t").
		Select("u.id AS user_id, u.username AS username, m.id AS member_id, m.role AS role").
		Joins("JOIN users AS u ON u.id = t.user_id").
		Joins("LEFT JOIN members AS m ON m.user_id = u.id").
		Where("t.token = ?", key).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	id := &domain.Identity{UserID: out.UserID, Username: out.Username, Role: domain.RoleUser}
	if out.MemberID != nil {
		id.MemberID = *out.MemberID
	}
	if out.Role != nil {
		id.Role = *out.Role
	}
	return id, nil
}

func (r *TokenRepo) DeleteByUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.AuthToken{}).Error
}
