// Package security はアプリケーションのセキュリティ機能を提供する。
package security

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyPassword は空のパスワードをハッシュ化しようとした場合のエラー。
var ErrEmptyPassword = errors.New("password must not be empty")

// PasswordHasher はパスワードの一方向ハッシュ化と照合のインターフェース。
type PasswordHasher interface {
	// Hash はソルト付きのハッシュを生成する。平文は保持しない。
	Hash(password string) (string, error)

	// Verify はパスワードがハッシュと一致するかを返す。
	// 不一致は(false, nil)、ハッシュが不正な場合はエラーを返す。
	Verify(password, hash string) (bool, error)
}

// BcryptHasher はbcryptを使用したPasswordHasherの実装。
// bcryptは72バイトを超える入力を扱えないため、SHA-256でダイジェストを取り
// base64化した44文字をbcryptに渡す。長いパスワードも切り捨てずに全体が照合対象になる。
// bcryptの照合は定数時間比較で行われる。
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher はBcryptHasherを生成する。
// costが範囲外の場合はbcrypt.DefaultCostを使用する。
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash はパスワードのbcryptハッシュを生成する。
func (h *BcryptHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	b, err := bcrypt.GenerateFromPassword(prehash(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(b), nil
}

// Verify はパスワードとbcryptハッシュを照合する。
func (h *BcryptHasher) Verify(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), prehash(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("failed to verify password: %w", err)
}

// prehash はパスワードをbcryptの入力長制限内に収める。
// base64化によりNULバイトを含まない固定長の入力になる。
func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

// Cost は設定されたコストを返す。
func (h *BcryptHasher) Cost() int {
	return h.cost
}

// compile-time interface check
var _ PasswordHasher = (*BcryptHasher)(nil)
