package domain

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Category struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Name     string    `gorm:"uniqueIndex;size:255;not null" json:"name" binding:"required"`
	ParentID *uint     `gorm:"index" json:"parent"`
	Parent   *Category `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (Category) TableName() string { return "categories" }

// Product 与 SuggestedProduct 共用字段
type ProductBase struct {
	Name      string    `gorm:"type:text;not null" json:"name" binding:"required"`
	Price     float64   `gorm:"not null" json:"price" binding:"gte=0"`
	Link      string    `gorm:"type:text;not null" json:"link" binding:"required,url"`
	ImageURL  string    `gorm:"type:text;not null" json:"image_url" binding:"required,url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Product struct {
	ID uint `gorm:"primaryKey" json:"id"`
	ProductBase
	CategoryID uint      `gorm:"index;not null" json:"category" binding:"required"`
	Category   *Category `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
}

func (Product) TableName() string { return "products" }

// SuggestedProduct 用户提交、未经审核的商品
type SuggestedProduct struct {
	ID uint `gorm:"primaryKey" json:"id"`
	ProductBase
	UserID   uint    `gorm:"index;not null" json:"user"`
	User     *User   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Category *string `gorm:"type:text" json:"category"`
}

func (SuggestedProduct) TableName() string { return "suggested_products" }

// ActionKind 审计类型，数值即 API 里的 action
type ActionKind int

const (
	ActionNameUpdated     ActionKind = 1
	ActionPriceUpdated    ActionKind = 2
	ActionLinkUpdated     ActionKind = 3
	ActionImageUpdated    ActionKind = 4
	ActionCategoryUpdated ActionKind = 5
)

var actionNames = map[ActionKind]string{
	ActionNameUpdated:     "NAME_UPDATED",
	ActionPriceUpdated:    "PRICE_UPDATED",
	ActionLinkUpdated:     "LINK_UPDATED",
	ActionImageUpdated:    "IMAGE_UPDATED",
	ActionCategoryUpdated: "CATEGORY_UPDATED",
}

func (k ActionKind) String() string {
	if n, ok := actionNames[k]; ok {
		return n
	}
	return "UNKNOWN"
}

// ProductAction 商品字段变更审计，只增不改
type ProductAction struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	ProductID uint              `gorm:"index;not null" json:"product"`
	Product   *Product          `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Action    ActionKind        `gorm:"not null;index" json:"action"`
	Details   datatypes.JSONMap `json:"details"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (ProductAction) TableName() string { return "product_actions" }

func (p *Product) BeforeSave(*gorm.DB) error {
	if p.CategoryID == 0 {
		return NewValidationError("category", "This field is required.")
	}
	return validateBase(&p.ProductBase)
}

func (p *SuggestedProduct) BeforeSave(*gorm.DB) error { return validateBase(&p.ProductBase) }

func validateBase(b *ProductBase) error {
	if b.Name == "" {
		return NewValidationError("name", "This field may not be blank.")
	}
	if b.Price < 0 {
		return NewValidationError("price", "Ensure this value is greater than or equal to 0.")
	}
	return nil
}
