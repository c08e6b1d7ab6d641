// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/authgate/internal/model"
)

var (
	// ErrEmailAlreadyExists はメールアドレスの一意制約違反を表す。
	// 存在確認と登録の間の競合もこのエラーとして返る。
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrIdentityNotFound は更新対象のアカウントが存在しないことを表す。
	ErrIdentityNotFound = errors.New("identity not found")
)

// CredentialRepository はアカウント（Identity）の永続化インターフェース。
// パスワードは実装内部でハッシュ化され、平文は保存しない。
type CredentialRepository interface {
	// FindByEmail はメールアドレスでアカウントを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.Identity, error)

	// Create はアカウントを作成する。
	// メールアドレスが登録済みの場合はErrEmailAlreadyExistsを返す。
	Create(ctx context.Context, email, password string) (*model.Identity, error)

	// UpdatePassword はパスワードハッシュを置き換える。旧パスワードは要求しない。
	// アカウントが存在しない場合はErrIdentityNotFoundを返す。
	UpdatePassword(ctx context.Context, identityID, newPassword string) error
}

// SessionRepository はセッション（トークン → アカウントID）の永続化インターフェース。
// セッションは作成後に変更されない。
type SessionRepository interface {
	// Create は新しいトークンを発行し、アカウントIDと紐付けて保存する。
	Create(ctx context.Context, identityID string) (string, error)

	// Resolve はトークンに紐付くアカウントIDを返す。見つからない場合は空文字を返す。
	Resolve(ctx context.Context, token string) (string, error)

	// Revoke はトークンを削除し、削除対象が存在したかを返す。
	Revoke(ctx context.Context, token string) (bool, error)
}
