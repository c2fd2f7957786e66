package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"wwreviews/internal/core/cache"
	"wwreviews/internal/domain"
	"wwreviews/internal/repo"
)

type MemberService struct {
	db    *gorm.DB
	cache *cache.Cache
	log   *zap.Logger
}

func NewMemberService(db *gorm.DB, c *cache.Cache, l *zap.Logger) *MemberService {
	if l == nil {
		l = zap.NewNop()
	}
	return &MemberService{db: db, cache: c, log: l}
}

func (s *MemberService) List(ctx context.Context, offset, limit int, q string) ([]domain.Member, int64, error) {
	return repo.NewMemberRepo(s.db).List(ctx, offset, limit, q)
}

// SetRole 改角色后让该用户的身份缓存失效
func (s *MemberService) SetRole(ctx context.Context, memberID uint, role domain.Role) (*domain.Member, error) {
	if !role.Valid() {
		return nil, domain.NewValidationError("role", fmt.Sprintf("\"%d\" is not a valid choice.", role))
	}
	members := repo.NewMemberRepo(s.db)
	if err := members.SetRole(ctx, memberID, role); err != nil {
		return nil, err
	}
	m, err := members.FindByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	s.forget(ctx, m.UserID)
	s.log.Info("member role changed", zap.Uint("member_id", memberID), zap.String("role", role.String()))
	return m, nil
}

// DeleteAccount 删号：评分、反馈保留但断开作者；建议商品、token、member、user 一并删除
func (s *MemberService) DeleteAccount(ctx context.Context, memberID uint) error {
	var userID uint
	var token string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := repo.NewMemberRepo(tx).FindByID(ctx, memberID)
		if err != nil {
			return err
		}
		userID = m.UserID
		if t, err := repo.NewTokenRepo(tx).FindByUser(ctx, userID); err != nil {
			return err
		} else if t != nil {
			token = t.Key
		}

		for _, model := range []any{&domain.Rating{}, &domain.Feedback{}} {
			if err := tx.Model(model).Where("user_id = ?", userID).Update("user_id", nil).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", userID).Delete(&domain.SuggestedProduct{}).Error; err != nil {
			return err
		}
		if err := repo.NewTokenRepo(tx).DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err := tx.Delete(&domain.Member{}, m.ID).Error; err != nil {
			return err
		}
		return repo.NewUserRepo(tx).Delete(ctx, userID)
	})
	if err != nil {
		return err
	}
	if token != "" {
		_ = s.cache.Delete(ctx, cache.IdentityKey(token))
	}
	s.log.Info("account deleted", zap.Uint("member_id", memberID), zap.Uint("user_id", userID))
	return nil
}

// BootstrapModerators 把配置里的 reddit 用户名提升为 MODERATOR，返回命中数
func (s *MemberService) BootstrapModerators(ctx context.Context, names []string) (int64, error) {
	n, err := repo.NewMemberRepo(s.db).SetRoleByUsernames(ctx, names, domain.RoleModerator)
	if err != nil {
		return 0, err
	}
	if n > 0 && s.cache != nil {
		var ids []uint
		if err := s.db.WithContext(ctx).Model(&domain.Member{}).
			Where("reddit_username IN ?", names).Pluck("user_id", &ids).Error; err == nil {
			for _, id := range ids {
				s.forget(ctx, id)
			}
		}
	}
	return n, nil
}

func (s *MemberService) forget(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	t, err := repo.NewTokenRepo(s.db).FindByUser(ctx, userID)
	if err != nil || t == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.IdentityKey(t.Key)); err != nil {
		s.log.Warn("identity cache invalidation failed", zap.Uint("user_id", userID), zap.Error(err))
	}
}
