package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// tokenBytes 32 字节随机数，碰撞概率可忽略
const tokenBytes = 32

// Mint 生成一次性所有权令牌（hash）。
// 与帖子 id / 编号完全无关，泄露编号不会泄露令牌。
func Mint() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("mint token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
