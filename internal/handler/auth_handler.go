// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/authgate/internal/middleware"
	"github.com/hitoshi/authgate/internal/model"
)

// GatewayInterface は認証ハンドラーが必要とするゲートウェイインターフェース。
// auth.Gatewayが満たす。
type GatewayInterface interface {
	Signup(ctx context.Context, email, password string) (*model.Identity, error)
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, principal *model.Principal) error
	ChangePassword(ctx context.Context, principal *model.Principal, newPassword string) error
}

// AuthHandler はアカウント関連のHTTPハンドラー。
// HTTPとゲートウェイ操作の対応付けのみを行い、判定ロジックは持たない。
type AuthHandler struct {
	gateway GatewayInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(gateway GatewayInterface) *AuthHandler {
	return &AuthHandler{
		gateway: gateway,
	}
}

// credentialsRequest はサインアップ・ログインのリクエストボディ。
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// changePasswordRequest はパスワード変更のリクエストボディ。
type changePasswordRequest struct {
	Password string `json:"password"`
}

// identityResponse はサインアップ成功時のレスポンス。パスワードハッシュは含めない。
type identityResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// tokenResponse はログイン成功時のレスポンス。
type tokenResponse struct {
	Token string `json:"token"`
}

// Signup はアカウントを登録する。
// POST /login/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, model.NewInvalidRequestError())
		return
	}

	identity, err := h.gateway.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, identityResponse{
		ID:    identity.ID,
		Email: identity.Email,
	})
}

// Login は資格情報を検証し、新しいトークンを発行する。
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, model.NewInvalidRequestError())
		return
	}

	token, err := h.gateway.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

// Logout は提示されたトークンを失効させる。
// POST /login/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, model.NewTokenMissingError())
		return
	}

	if err := h.gateway.Logout(r.Context(), principal); err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ChangePassword は認証済みアカウントのパスワードを変更する。
// POST /login/password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, model.NewTokenMissingError())
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, model.NewInvalidRequestError())
		return
	}

	if err := h.gateway.ChangePassword(r.Context(), principal, req.Password); err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}
