package common

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// HashString 計算字符串的 SHA-256 哈希值（十六進位，64 字元）
func HashString(s string) string {
	hash := sha256.Sum256([]byte(s))
	return hex.EncodeToString(hash[:])
}

// Truncate 依 rune 截斷字串，用於日誌預覽與 prompt 長度限制
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// CollapseSpaces 將連續空白壓縮為單一空格
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
