// Package dbtest 提供测试用的内存 sqlite 库
package dbtest

import (
	"testing"

	"gorm.io/gorm"

	"wwreviews/internal/core/database"
)

// New 每次调用得到一个全新的、已建表的内存库。
// 单连接保证所有语句落在同一个 :memory: 库上。
func New(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.NewGorm(database.Opts{
		Driver:       "sqlite",
		DSN:          "file::memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     "silent",
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
