package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/authgate/internal/model"
	"github.com/hitoshi/authgate/internal/security"
)

// PostgresSessionRepo はPostgreSQLを使用したセッションリポジトリ。
// セッションに有効期限はなく、Revokeされるまで有効。
type PostgresSessionRepo struct {
	db     *sql.DB
	tokens security.TokenGenerator
}

// NewPostgresSessionRepo はPostgresSessionRepoを生成する。
func NewPostgresSessionRepo(db *sql.DB, tokens security.TokenGenerator) *PostgresSessionRepo {
	return &PostgresSessionRepo{db: db, tokens: tokens}
}

// Create は新しいトークンを発行して保存する。
func (r *PostgresSessionRepo) Create(ctx context.Context, identityID string) (string, error) {
	token, err := r.tokens.NewToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}

	session := model.Session{
		Token:      token,
		IdentityID: identityID,
		CreatedAt:  time.Now(),
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO sessions (token, identity_id, created_at)
		 VALUES ($1, $2, $3)`,
		session.Token, session.IdentityID, session.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return session.Token, nil
}

// Resolve はトークンに紐付くアカウントIDを返す。見つからない場合は空文字を返す。
func (r *PostgresSessionRepo) Resolve(ctx context.Context, token string) (string, error) {
	var identityID string
	err := r.db.QueryRowContext(ctx,
		`SELECT identity_id FROM sessions WHERE token = $1`,
		token,
	).Scan(&identityID)

	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve session: %w", err)
	}
	return identityID, nil
}

// Revoke はトークンを削除する。削除した行があればtrueを返す。
func (r *PostgresSessionRepo) Revoke(ctx context.Context, token string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE token = $1`,
		token,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete session: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// compile-time interface check
var _ SessionRepository = (*PostgresSessionRepo)(nil)
