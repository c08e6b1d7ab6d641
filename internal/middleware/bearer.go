// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/hitoshi/authgate/internal/model"
)

const bearerScheme = "Bearer"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// principalContextKey はリクエストコンテキストに認証主体を格納するためのキー。
var principalContextKey = contextKey("principal")

// Authenticator はベアラートークンの検証に必要なインターフェース。
// auth.GatewayのAuthenticateRequestを満たす。
type Authenticator interface {
	AuthenticateRequest(ctx context.Context, token string) (*model.Principal, error)
}

// ExtractBearerToken はAuthorizationヘッダー値からトークン部分を取り出す。
// "Bearer <token>" 形式でない場合は空文字を返す。スキーム名は大文字小文字を区別しない。
func ExtractBearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, bearerScheme) {
		return ""
	}
	return token
}

// NewBearerAuthMiddleware はAuthorizationヘッダーのベアラートークンを検証するミドルウェアを返す。
// トークンの有無の判定はAuthenticatorに委ね、ここでは取り出しのみを行う。
// 認証済みの主体をリクエストコンテキストに注入する。
func NewBearerAuthMiddleware(authenticator Authenticator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractBearerToken(r.Header.Get("Authorization"))

			principal, err := authenticator.AuthenticateRequest(r.Context(), token)
			if err != nil {
				WriteError(w, err)
				return
			}

			annotateIdentity(r.Context(), principal.IdentityID)

			ctx := ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext はリクエストコンテキストから認証主体を取得する。
// ベアラー認証ミドルウェアを通過したリクエストでのみ有効。
func PrincipalFromContext(ctx context.Context) (*model.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(*model.Principal)
	if !ok || principal == nil {
		return nil, false
	}
	return principal, true
}

// ContextWithPrincipal はコンテキストに認証主体を注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithPrincipal(ctx context.Context, principal *model.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}
