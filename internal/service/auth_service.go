package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"wwreviews/internal/core/reddit"
	"wwreviews/internal/domain"
	"wwreviews/internal/repo"
	"wwreviews/pkg/utils"
)

// Provider 外部 OAuth 身份源（reddit.Client）
type Provider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*reddit.Identity, error)
}

type AuthService struct {
	db          *gorm.DB
	provider    Provider
	frontendURL string
	log         *zap.Logger
}

func NewAuthService(db *gorm.DB, p Provider, frontendURL string, l *zap.Logger) *AuthService {
	if l == nil {
		l = zap.NewNop()
	}
	return &AuthService{db: db, provider: p, frontendURL: frontendURL, log: l}
}

// BeginAuth 生成 state 与授权地址；state 由调用方存进会话
func (s *AuthService) BeginAuth() (state, authURL string) {
	state = utils.NewID()
	return state, s.provider.AuthURL(state)
}

// CompleteAuth 校验 state、换码、建号或更新 refresh token，返回带 token 的前端地址
func (s *AuthService) CompleteAuth(ctx context.Context, code, returnedState, sessionState string) (string, error) {
	if sessionState == "" || returnedState != sessionState {
		loginsTotal.WithLabelValues("state_mismatch").Inc()
		return "", domain.ErrStateMismatch
	}
	ident, err := s.provider.Exchange(ctx, code)
	if err != nil {
		loginsTotal.WithLabelValues("upstream_error").Inc()
		s.log.Warn("reddit exchange failed", zap.Error(err))
		return "", err
	}

	var (
		key     string
		created bool
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		members := repo.NewMemberRepo(tx)
		tokens := repo.NewTokenRepo(tx)

		m, err := members.FindByRedditUsername(ctx, ident.Username)
		if err != nil {
			return err
		}
		if m != nil {
			if err := members.UpdateRefreshToken(ctx, m.ID, ident.RefreshToken); err != nil {
				return err
			}
			t, err := tokens.GetOrCreate(ctx, m.UserID)
			if err != nil {
				return err
			}
			key = t.Key
			return nil
		}

		// 同名账号已存在但没绑 reddit（例如手工建的）：直接绑上
		users := repo.NewUserRepo(tx)
		u, err := users.FindByUsername(ctx, ident.Username)
		if err != nil {
			return err
		}
		if u == nil {
			pw, err := utils.UnusablePassword()
			if err != nil {
				return err
			}
			u = &domain.User{Username: ident.Username, PasswordHash: pw}
			if err := users.Create(ctx, u); err != nil {
				return err
			}
		}
		t, err := tokens.GetOrCreate(ctx, u.ID)
		if err != nil {
			return err
		}
		if err := members.Create(ctx, &domain.Member{
			UserID:             u.ID,
			Role:               domain.RoleUser,
			RedditUsername:     ident.Username,
			RedditRefreshToken: ident.RefreshToken,
		}); err != nil {
			return err
		}
		key, created = t.Key, true
		return nil
	})
	if err != nil {
		loginsTotal.WithLabelValues("error").Inc()
		if errors.Is(err, domain.ErrConflict) {
			return "", err
		}
		return "", fmt.Errorf("link reddit account %q: %w", ident.Username, err)
	}

	outcome := "existing"
	if created {
		outcome = "new"
	}
	loginsTotal.WithLabelValues(outcome).Inc()
	s.log.Info("reddit login", zap.String("reddit_username", ident.Username), zap.Bool("new_member", created))

	return s.frontendURL + "login?token=" + url.QueryEscape(key), nil
}
