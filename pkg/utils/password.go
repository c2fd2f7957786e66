package utils

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// 不可用密码的前缀；bcrypt 哈希总以 "$2" 开头，两者不会重叠
const unusablePrefix = "!"

// UnusablePassword 只能走第三方登录的账号用：随机明文哈希后再加前缀，任何输入都校验不过
func UnusablePassword() (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(NewID()+NewID()), bcrypt.MinCost)
	if err != nil {
		return "", err
	}
	return unusablePrefix + string(b), nil
}

func CheckPassword(pw, hashed string) bool {
	if hashed == "" || strings.HasPrefix(hashed, unusablePrefix) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}
