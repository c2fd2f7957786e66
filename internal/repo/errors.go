package repo

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"wwreviews/internal/domain"
)

// IsDupKey 唯一约束冲突。TranslateError 未覆盖的驱动靠错误文本兜底。
func IsDupKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation") ||
		strings.Contains(msg, "duplicate key")
}

// Translate 把 gorm 错误映射成 domain 错误，其余原样返回
func Translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	case IsDupKey(err):
		return fmt.Errorf("%s already exists: %w", what, domain.ErrConflict)
	}
	return err
}
