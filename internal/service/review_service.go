package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"wwreviews/internal/domain"
	"wwreviews/internal/repo"
)

type ReviewService struct {
	repo *repo.ReviewRepo
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{repo: repo.NewReviewRepo(db)}
}

// List ids 为 nil 时返回全部商品
func (s *ReviewService) List(ctx context.Context, ids []uint) ([]domain.BasicProductReview, error) {
	return s.repo.BasicReviews(ctx, ids)
}

func (s *ReviewService) Get(ctx context.Context, id uint) (*domain.BasicProductReview, error) {
	out, err := s.repo.BasicReviews(ctx, []uint{id})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	return &out[0], nil
}

// FeedbackViews 在 db 上下文（可能是事务）里补全作者名与评分
func (s *ReviewService) FeedbackViews(ctx context.Context, db *gorm.DB, items []domain.Feedback) ([]domain.FeedbackView, error) {
	r := s.repo
	if db != nil {
		r = repo.NewReviewRepo(db)
	}
	return r.FeedbackViews(ctx, items)
}

// ParseIDs 解析 "1,2,3"；空串返回 nil
func ParseIDs(raw string) ([]uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	out := []uint{}
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return nil, domain.NewValidationError("ids", "Enter a whole number.")
		}
		out = append(out, uint(v))
	}
	return out, nil
}
