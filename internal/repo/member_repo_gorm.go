package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"wwreviews/internal/domain"
)

type MemberRepo struct{ db *gorm.DB }

func NewMemberRepo(db *gorm.DB) *MemberRepo { return &MemberRepo{db: db} }

func (r *MemberRepo) Create(ctx context.Context, m *domain.Member) error {
	return Translate(r.db.WithContext(ctx).Create(m).Error, "member")
}

// FindByRedditUsername 不存在返回 (nil, nil)
func (r *MemberRepo) FindByRedditUsername(ctx context.Context, name string) (*domain.Member, error) {
	var m domain.Member
	err := r.db.WithContext(ctx).Where("reddit_username = ?", name).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &m, err
}

func (r *MemberRepo) FindByID(ctx context.Context, id uint) (*domain.Member, error) {
	var m domain.Member
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, Translate(err, "member")
	}
	return &m, nil
}

func (r *MemberRepo) UpdateRefreshToken(ctx context.Context, id uint, token string) error {
	return r.db.WithContext(ctx).Model(&domain.Member{}).
		Where("id = ?", id).
		Update("reddit_refresh_token", token).Error
}

func (r *MemberRepo) SetRole(ctx context.Context, id uint, role domain.Role) error {
	res := r.db.WithContext(ctx).Model(&domain.Member{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetRoleByUsernames 批量设置角色，返回命中行数
func (r *MemberRepo) SetRoleByUsernames(ctx context.Context, names []string, role domain.Role) (int64, error) {
	if len(names) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&domain.Member{}).
		Where("reddit_username IN ?", names).
		Update("role", role)
	return res.RowsAffected, res.Error
}

func (r *MemberRepo) List(ctx context.Context, offset, limit int, q string) ([]domain.Member, int64, error) {
	tx := r.db.WithContext(ctx).Model(&domain.Member{})
	if s := strings.TrimSpace(q); s != "" {
		tx = tx.Where("reddit_username LIKE ?", "%"+s+"%")
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var ms []domain.Member
	if err := tx.Order("id ASC").Offset(offset).Limit(limit).Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	return ms, total, nil
}
