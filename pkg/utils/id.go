package utils

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

// NewID 随机 UUID v4 字符串
func NewID() string { return uuid.NewString() }

// NewTokenKey 40 位十六进制随机串（20 字节）
func NewTokenKey() string {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand 失败时退化为两段 uuid
		return (uuid.NewString() + uuid.NewString())[:40]
	}
	return hex.EncodeToString(b)
}
