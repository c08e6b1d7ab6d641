// Package model はドメインモデルを定義する。
package model

import "fmt"

// ErrorKind はエラーの分類を表す。
// トランスポート層はKindのみを見てステータスを決定する。
type ErrorKind int

const (
	// KindInternal は分類不能なストレージ障害などの内部エラー。
	KindInternal ErrorKind = iota
	// KindBadRequest は必須フィールドの欠落。
	KindBadRequest
	// KindConflict はメールアドレスの重複登録。
	KindConflict
	// KindUnauthorized は認証の失敗。
	KindUnauthorized
)

// String はログ出力用の名前を返す。
func (k ErrorKind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// APIError は統一エラーフォーマットを表す。
// 発生箇所でKindを確定させ、メッセージ文字列から後付けで推測しない。
type APIError struct {
	Kind     ErrorKind
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, system
	Action   string // ユーザー向け対処方法
	Err      error  // 原因。ログにのみ出力する
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap は原因エラーを返す。
func (e *APIError) Unwrap() error {
	return e.Err
}

// 定義済みエラーコード
const (
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeFieldRequired      = "FIELD_REQUIRED"
	ErrCodeInvalidField       = "INVALID_FIELD"
	ErrCodeAccountExists      = "ACCOUNT_EXISTS"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeIncorrectPassword  = "INCORRECT_PASSWORD"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeTokenMissing       = "TOKEN_MISSING"
	ErrCodeInvalidToken       = "INVALID_TOKEN"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// NewInvalidRequestError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Kind:     KindBadRequest,
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewFieldRequiredError は必須フィールド欠落エラーを生成する。
func NewFieldRequiredError(field string) *APIError {
	return &APIError{
		Kind:     KindBadRequest,
		Code:     ErrCodeFieldRequired,
		Message:  fmt.Sprintf("%s は必須です。", field),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewInvalidFieldError は保存できない文字を含む入力のエラーを生成する。
func NewInvalidFieldError(field string) *APIError {
	return &APIError{
		Kind:     KindBadRequest,
		Code:     ErrCodeInvalidField,
		Message:  fmt.Sprintf("%s に使用できない文字が含まれています。", field),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewAccountExistsError はアカウント重複エラーを生成する。
func NewAccountExistsError() *APIError {
	return &APIError{
		Kind:     KindConflict,
		Code:     ErrCodeAccountExists,
		Message:  "このメールアドレスのアカウントは既に存在します。",
		Category: "auth",
		Action:   "ログインするか、別のメールアドレスで登録してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Kind:     KindUnauthorized,
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが存在しません。",
		Category: "auth",
		Action:   "メールアドレスを確認してください。",
	}
}

// NewIncorrectPasswordError はパスワード不一致エラーを生成する。
func NewIncorrectPasswordError() *APIError {
	return &APIError{
		Kind:     KindUnauthorized,
		Code:     ErrCodeIncorrectPassword,
		Message:  "パスワードが正しくありません。",
		Category: "auth",
		Action:   "パスワードを確認してください。",
	}
}

// NewInvalidCredentialsError はメールアドレスとパスワードのどちらが誤りかを区別しない認証エラーを生成する。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Kind:     KindUnauthorized,
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認してください。",
	}
}

// NewTokenMissingError はベアラートークン未指定エラーを生成する。
func NewTokenMissingError() *APIError {
	return &APIError{
		Kind:     KindUnauthorized,
		Code:     ErrCodeTokenMissing,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewInvalidTokenError は無効・失効済みトークンのエラーを生成する。
func NewInvalidTokenError() *APIError {
	return &APIError{
		Kind:     KindUnauthorized,
		Code:     ErrCodeInvalidToken,
		Message:  "トークンが無効です。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewInternalError は内部エラーを生成する。
// 原因はErrに保持し、レスポンスには含めない。
func NewInternalError(err error) *APIError {
	return &APIError{
		Kind:     KindInternal,
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
		Err:      err,
	}
}
