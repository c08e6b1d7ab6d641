package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// sessionTokenBytes はセッショントークンの乱数バイト数（256bit）。
const sessionTokenBytes = 32

// TokenGenerator はセッショントークンの生成インターフェース。
type TokenGenerator interface {
	NewToken() (string, error)
}

// RandomTokenGenerator は暗号的に安全な乱数からトークンを生成する。
type RandomTokenGenerator struct{}

// NewRandomTokenGenerator はRandomTokenGeneratorを生成する。
func NewRandomTokenGenerator() *RandomTokenGenerator {
	return &RandomTokenGenerator{}
}

// NewToken は32バイトの乱数を16進文字列（64文字）で返す。
func (g *RandomTokenGenerator) NewToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// compile-time interface check
var _ TokenGenerator = (*RandomTokenGenerator)(nil)
