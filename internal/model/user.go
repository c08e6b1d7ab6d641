// Package model はドメインモデルを定義する。
package model

import "time"

// Identity は登録済みアカウントを表す。
// Emailはログインハンドルとして全アカウントで一意（完全一致で比較する）。
type Identity struct {
	ID           string
	Email        string
	PasswordHash string // bcryptハッシュ。外部へは返さない
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session はトークンとアカウントの紐付け（ログインセッション）を表す。
// 有効期限は持たず、ログアウトで削除されるまで有効。
type Session struct {
	Token      string
	IdentityID string
	CreatedAt  time.Time
}

// Principal は認証済みリクエストの主体を表す。
// AuthenticateRequestの成功時にのみ生成される。
type Principal struct {
	IdentityID string
	Token      string
}
