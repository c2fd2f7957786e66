package domain

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

const (
	MinRating = 0
	MaxRating = 5
)

// 作者账号已删除时的展示名
const DeletedUserName = "[deleted]"

// Rating (product, user) 唯一；删号后 user 置空
type Rating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_rating_product_user" json:"product" binding:"required"`
	Product   *Product  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	UserID    *uint     `gorm:"uniqueIndex:idx_rating_product_user" json:"user"`
	User      *User     `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	Value     int       `gorm:"not null" json:"value" binding:"gte=0,lte=5"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Rating) TableName() string { return "ratings" }

func (r *Rating) BeforeSave(*gorm.DB) error { return ValidateRating(r.Value) }

func ValidateRating(v int) error {
	if v < MinRating || v > MaxRating {
		return NewValidationError("value", fmt.Sprintf("Rating must be an integer between %d and %d, got %d.", MinRating, MaxRating, v))
	}
	return nil
}

type Feedback struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_feedback_product_user" json:"product" binding:"required"`
	Product   *Product  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	UserID    *uint     `gorm:"uniqueIndex:idx_feedback_product_user" json:"user"`
	User      *User     `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	Text      string    `gorm:"type:text;not null" json:"text" binding:"required"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Feedback) TableName() string { return "feedback" }

// FeedbackView 附带作者名与其对同一商品的评分
type FeedbackView struct {
	Feedback
	Username string `json:"username"`
	Rating   *int   `json:"rating"`
}

type BasicProductReview struct {
	ID            uint     `json:"id"`
	FeedbackCount int64    `json:"feedback_count"`
	AverageRating *float64 `json:"average_rating"`
	RatingCount   int64    `json:"rating_count"`
}

// Models AutoMigrate 顺序：被引用的表在前
func Models() []any {
	return []any{
		&User{}, &Member{}, &AuthToken{},
		&Category{}, &Product{}, &SuggestedProduct{}, &ProductAction{},
		&Rating{}, &Feedback{},
	}
}
