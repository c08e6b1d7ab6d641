// Package auth はアカウント登録、ログイン、ベアラートークンによるリクエスト認証を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/hitoshi/authgate/internal/model"
	"github.com/hitoshi/authgate/internal/repository"
	"github.com/hitoshi/authgate/internal/security"
)

// 操作名。メトリクスのラベルに使用する。
const (
	OpSignup         = "signup"
	OpLogin          = "login"
	OpAuthenticate   = "authenticate"
	OpLogout         = "logout"
	OpChangePassword = "change_password"
)

// EventRecorder は認証イベントの記録インターフェース。
// outcomeは成功時"success"、失敗時はmodel.ErrorKindの名前。
type EventRecorder interface {
	RecordAuthEvent(operation, outcome string)
}

// GatewayConfig は認証ゲートウェイの設定。
type GatewayConfig struct {
	// UniformLoginErrors がtrueの場合、ログイン失敗時に
	// 「ユーザーが存在しない」と「パスワード不一致」を区別しない。
	UniformLoginErrors bool
}

// Gateway はCredentialRepositoryとSessionRepositoryを組み合わせ、
// 登録・ログイン・ログアウト・パスワード変更・リクエスト認証を提供する。
// 状態は持たず、全メソッドは並行に呼び出して安全。
type Gateway struct {
	credentials repository.CredentialRepository
	sessions    repository.SessionRepository
	hasher      security.PasswordHasher
	recorder    EventRecorder
	config      GatewayConfig
}

// NewGateway はGatewayを生成する。recorderはnilでもよい。
func NewGateway(
	credentials repository.CredentialRepository,
	sessions repository.SessionRepository,
	hasher security.PasswordHasher,
	recorder EventRecorder,
	config GatewayConfig,
) *Gateway {
	return &Gateway{
		credentials: credentials,
		sessions:    sessions,
		hasher:      hasher,
		recorder:    recorder,
		config:      config,
	}
}

// Signup はアカウントを登録する。
// 存在確認と作成の間に競合した場合も、ストアの一意制約違反をConflictとして返す。
func (g *Gateway) Signup(ctx context.Context, email, password string) (identity *model.Identity, err error) {
	defer func() { g.record(OpSignup, err) }()

	if email == "" {
		return nil, model.NewFieldRequiredError("email")
	}
	if !storableText(email) {
		return nil, model.NewInvalidFieldError("email")
	}
	if password == "" {
		return nil, model.NewFieldRequiredError("password")
	}

	existing, err := g.credentials.FindByEmail(ctx, email)
	if err != nil {
		return nil, model.NewInternalError(fmt.Errorf("failed to find identity: %w", err))
	}
	if existing != nil {
		return nil, model.NewAccountExistsError()
	}

	identity, err = g.credentials.Create(ctx, email, password)
	if errors.Is(err, repository.ErrEmailAlreadyExists) {
		return nil, model.NewAccountExistsError()
	}
	if err != nil {
		return nil, model.NewInternalError(fmt.Errorf("failed to create identity: %w", err))
	}

	slog.Info("identity created",
		slog.String("identity_id", identity.ID),
		slog.String("email", identity.Email),
	)
	return identity, nil
}

// Login はメールアドレスとパスワードを検証し、新しいセッショントークンを返す。
// 同一アカウントの複数ログインはそれぞれ独立したセッションになる。
func (g *Gateway) Login(ctx context.Context, email, password string) (token string, err error) {
	defer func() { g.record(OpLogin, err) }()

	if email == "" {
		return "", model.NewFieldRequiredError("email")
	}
	if !storableText(email) {
		return "", model.NewInvalidFieldError("email")
	}

	identity, err := g.credentials.FindByEmail(ctx, email)
	if err != nil {
		return "", model.NewInternalError(fmt.Errorf("failed to find identity: %w", err))
	}
	if identity == nil {
		return "", g.loginFailure(model.NewUserNotFoundError())
	}

	if password == "" {
		return "", model.NewFieldRequiredError("password")
	}

	ok, err := g.hasher.Verify(password, identity.PasswordHash)
	if err != nil {
		return "", model.NewInternalError(fmt.Errorf("failed to verify password: %w", err))
	}
	if !ok {
		return "", g.loginFailure(model.NewIncorrectPasswordError())
	}

	token, err = g.sessions.Create(ctx, identity.ID)
	if err != nil {
		return "", model.NewInternalError(fmt.Errorf("failed to create session: %w", err))
	}

	slog.Info("identity logged in", slog.String("identity_id", identity.ID))
	return token, nil
}

// AuthenticateRequest は提示されたベアラートークンを検証し、認証主体を返す。
// 読み取りのみで副作用はないため、リトライを含む全リクエストで安全に呼び出せる。
func (g *Gateway) AuthenticateRequest(ctx context.Context, token string) (principal *model.Principal, err error) {
	defer func() { g.record(OpAuthenticate, err) }()

	// 空のトークンではストアに問い合わせない
	if token == "" {
		return nil, model.NewTokenMissingError()
	}

	identityID, err := g.sessions.Resolve(ctx, token)
	if err != nil {
		return nil, model.NewInternalError(fmt.Errorf("failed to resolve session: %w", err))
	}
	if identityID == "" {
		return nil, model.NewInvalidTokenError()
	}

	return &model.Principal{IdentityID: identityID, Token: token}, nil
}

// Logout は認証済みセッションを失効させる。
// トークンが既に存在しない場合はUnauthorizedを返す（二重ログアウトと偽造トークンを区別しない）。
func (g *Gateway) Logout(ctx context.Context, principal *model.Principal) (err error) {
	defer func() { g.record(OpLogout, err) }()

	if principal == nil || principal.Token == "" {
		return model.NewTokenMissingError()
	}

	revoked, err := g.sessions.Revoke(ctx, principal.Token)
	if err != nil {
		return model.NewInternalError(fmt.Errorf("failed to revoke session: %w", err))
	}
	if !revoked {
		return model.NewInvalidTokenError()
	}

	slog.Info("identity logged out", slog.String("identity_id", principal.IdentityID))
	return nil
}

// ChangePassword は認証済みアカウントのパスワードを変更する。
// トークンを再解決し、認証時と同じアカウントであることを確認してから更新する。
// 既存のセッションは失効させない。
func (g *Gateway) ChangePassword(ctx context.Context, principal *model.Principal, newPassword string) (err error) {
	defer func() { g.record(OpChangePassword, err) }()

	if principal == nil || principal.Token == "" {
		return model.NewTokenMissingError()
	}

	identityID, err := g.sessions.Resolve(ctx, principal.Token)
	if err != nil {
		return model.NewInternalError(fmt.Errorf("failed to resolve session: %w", err))
	}
	if identityID == "" || identityID != principal.IdentityID {
		return model.NewInvalidTokenError()
	}

	if newPassword == "" {
		return model.NewFieldRequiredError("password")
	}

	err = g.credentials.UpdatePassword(ctx, identityID, newPassword)
	if errors.Is(err, repository.ErrIdentityNotFound) {
		return model.NewInvalidTokenError()
	}
	if err != nil {
		return model.NewInternalError(fmt.Errorf("failed to update password: %w", err))
	}

	slog.Info("password changed", slog.String("identity_id", identityID))
	return nil
}

// storableText はPostgreSQLのTEXT型に保存できる文字列かを返す。
// NULバイトと不正なUTF-8は受け付けない。パスワードはハッシュ化されるため対象外。
func storableText(s string) bool {
	return utf8.ValidString(s) && !strings.ContainsRune(s, 0)
}

// loginFailure はUniformLoginErrorsが有効な場合に失敗理由を統一する。
func (g *Gateway) loginFailure(apiErr *model.APIError) *model.APIError {
	if g.config.UniformLoginErrors {
		return model.NewInvalidCredentialsError()
	}
	return apiErr
}

// record は操作結果をEventRecorderに記録する。
func (g *Gateway) record(operation string, err error) {
	if g.recorder == nil {
		return
	}
	g.recorder.RecordAuthEvent(operation, Outcome(err))
}

// Outcome はエラーを結果ラベルに変換する。
// nilは"success"、APIError以外のエラーは"internal"になる。
func Outcome(err error) string {
	if err == nil {
		return "success"
	}
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind.String()
	}
	return model.KindInternal.String()
}
