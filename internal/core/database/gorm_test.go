package database

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"wwreviews/internal/domain"
)

func TestNormalizeMySQLDSN(t *testing.T) {
	tests := []struct {
		name, in, user, pass, want string
	}{
		{"native dsn untouched", "u:p@tcp(db:3306)/app", "", "", "u:p@tcp(db:3306)/app"},
		{"url form", "mysql://u:p@db:3306/app", "", "", "u:p@tcp(db:3306)/app?charset=utf8mb4&parseTime=true"},
		{"jdbc + overrides", "jdbc:mysql://db:3306/app?useSSL=false", "root", "pw", "root:pw@tcp(db:3306)/app?charset=utf8mb4&parseTime=true&tls=false"},
		{"empty", "  ", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeMySQLDSN(tt.in, tt.user, tt.pass))
		})
	}
}

func TestSQLiteDSN(t *testing.T) {
	tests := []struct{ in, want string }{
		{"file::memory:", "file::memory:?_foreign_keys=on&_case_sensitive_like=on"},
		{"file:app.db?cache=shared", "file:app.db?cache=shared&_foreign_keys=on&_case_sensitive_like=on"},
		{"file:app.db?_foreign_keys=off", "file:app.db?_foreign_keys=off&_case_sensitive_like=on"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, sqliteDSN(tt.in))
		})
	}
}

func TestNewGorm_UnsupportedDriver(t *testing.T) {
	_, err := NewGorm(Opts{Driver: "oracle"})
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestNewGorm_SQLiteMigrateAndUniqueTranslation(t *testing.T) {
	db, err := NewGorm(Opts{Driver: "sqlite", DSN: "file::memory:", MaxOpenConns: 1, MaxIdleConns: 1, LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	require.NoError(t, db.Create(&domain.Category{Name: "Keyboards"}).Error)
	err = db.Create(&domain.Category{Name: "Keyboards"}).Error
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(strings.ToLower(err.Error()), "unique"), err.Error())
}
