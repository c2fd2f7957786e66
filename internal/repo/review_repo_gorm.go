package repo

import (
	"context"

	"gorm.io/gorm"

	"wwreviews/internal/domain"
)

// ReviewRepo 评分 / 反馈的只读聚合
type ReviewRepo struct{ db *gorm.DB }

func NewReviewRepo(db *gorm.DB) *ReviewRepo { return &ReviewRepo{db: db} }

// BasicReviews ids 为空表示全部商品；结果按商品 id 升序
func (r *ReviewRepo) BasicReviews(ctx context.Context, ids []uint) ([]domain.BasicProductReview, error) {
	q := r.db.WithContext(ctx).
		Table("products AS p").
		Select(`p.id AS id,
			(SELECT COUNT(*) FROM feedback f WHERE f.product_id = p.id) AS feedback_count,
			(SELECT AVG(rt.value) FROM ratings rt WHERE rt.product_id = p.id) AS average_rating,
			(SELECT COUNT(*) FROM ratings rc WHERE rc.product_id = p.id) AS rating_count`).
		Order("p.id ASC")
	if ids != nil {
		if len(ids) == 0 {
			return []domain.BasicProductReview{}, nil
		}
		q = q.Where("p.id IN ?", ids)
	}
	out := []domain.BasicProductReview{}
	if err := q.Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// UsernamesByID 用户 id → 用户名
func (r *ReviewRepo) UsernamesByID(ctx context.Context, ids []uint) (map[uint]string, error) {
	out := map[uint]string{}
	if len(ids) == 0 {
		return out, nil
	}
	var users []domain.User
	if err := r.db.WithContext(ctx).Select("id", "username").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u.Username
	}
	return out, nil
}

type ratingKey struct{ ProductID, UserID uint }

// RatingsFor 同一 (商品, 用户) 的评分值
func (r *ReviewRepo) RatingsFor(ctx context.Context, productIDs, userIDs []uint) (map[ratingKey]int, error) {
	out := map[ratingKey]int{}
	if len(productIDs) == 0 || len(userIDs) == 0 {
		return out, nil
	}
	var rs []domain.Rating
	if err := r.db.WithContext(ctx).
		Where("product_id IN ? AND user_id IN ?", productIDs, userIDs).
		Find(&rs).Error; err != nil {
		return nil, err
	}
	for _, rt := range rs {
		if rt.UserID != nil {
			out[ratingKey{rt.ProductID, *rt.UserID}] = rt.Value
		}
	}
	return out, nil
}

// FeedbackViews 给反馈补上作者名与同一用户对该商品的评分（没有评分则为 null）
func (r *ReviewRepo) FeedbackViews(ctx context.Context, items []domain.Feedback) ([]domain.FeedbackView, error) {
	var productIDs, userIDs []uint
	for _, f := range items {
		productIDs = append(productIDs, f.ProductID)
		if f.UserID != nil {
			userIDs = append(userIDs, *f.UserID)
		}
	}
	names, err := r.UsernamesByID(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	ratings, err := r.RatingsFor(ctx, productIDs, userIDs)
	if err != nil {
		return nil, err
	}
	out := make([]domain.FeedbackView, 0, len(items))
	for _, f := range items {
		v := domain.FeedbackView{Feedback: f, Username: domain.DeletedUserName}
		if f.UserID != nil {
			if n, ok := names[*f.UserID]; ok {
				v.Username = n
			}
			if val, ok := ratings[ratingKey{f.ProductID, *f.UserID}]; ok {
				v.Rating = &val
			}
		}
		out = append(out, v)
	}
	return out, nil
}
