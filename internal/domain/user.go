package domain

import (
	"context"
	"time"
)

// Role 成员角色，数值落库并直接出现在 API 里（1=USER 2=MODERATOR）
type Role int

const (
	RoleUser      Role = 1
	RoleModerator Role = 2
)

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "USER"
	case RoleModerator:
		return "MODERATOR"
	}
	return "UNKNOWN"
}

func (r Role) Valid() bool { return r == RoleUser || r == RoleModerator }

// User 平台账号；只能走 reddit 登录，密码是随机值
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:150;not null" json:"username"`
	PasswordHash string    `gorm:"size:100;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// Member 账号与 reddit 身份的一对一绑定
type Member struct {
	ID                 uint   `gorm:"primaryKey" json:"id"`
	UserID             uint   `gorm:"uniqueIndex;not null" json:"user"`
	User               *User  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Role               Role   `gorm:"not null;default:1" json:"role"`
	RedditUsername     string `gorm:"uniqueIndex;size:64;not null" json:"reddit_username"`
	RedditRefreshToken string `gorm:"type:text;not null" json:"-"`
}

func (Member) TableName() string { return "members" }

// AuthToken 不透明令牌，每个用户一条
type AuthToken struct {
	Key       string    `gorm:"primaryKey;column:token;size:40" json:"key"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (AuthToken) TableName() string { return "auth_tokens" }

// Identity 由 token 解析出的请求方
type Identity struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	MemberID uint   `json:"member_id"`
	Role     Role   `json:"role"`
}

func (i *Identity) IsModerator() bool { return i != nil && i.Role == RoleModerator }

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	Delete(ctx context.Context, id uint) error
}
