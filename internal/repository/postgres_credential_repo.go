package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/authgate/internal/model"
	"github.com/hitoshi/authgate/internal/security"
	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
)

// PostgresCredentialRepo はPostgreSQLを使用したアカウントリポジトリ。
type PostgresCredentialRepo struct {
	db     *sql.DB
	hasher security.PasswordHasher
}

// NewPostgresCredentialRepo はPostgresCredentialRepoを生成する。
func NewPostgresCredentialRepo(db *sql.DB, hasher security.PasswordHasher) *PostgresCredentialRepo {
	return &PostgresCredentialRepo{db: db, hasher: hasher}
}

// FindByEmail はメールアドレスでアカウントを検索する。見つからない場合はnilを返す。
func (r *PostgresCredentialRepo) FindByEmail(ctx context.Context, email string) (*model.Identity, error) {
	identity := &model.Identity{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at, updated_at
		 FROM identities
		 WHERE email = $1`,
		email,
	).Scan(&identity.ID, &identity.Email, &identity.PasswordHash, &identity.CreatedAt, &identity.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find identity by email: %w", err)
	}

	return identity, nil
}

// Create はパスワードをハッシュ化してアカウントを作成する。
// 一意制約違反はErrEmailAlreadyExistsとして返す。
func (r *PostgresCredentialRepo) Create(ctx context.Context, email, password string) (*model.Identity, error) {
	hash, err := r.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	identity := &model.Identity{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO identities (id, email, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		identity.ID, identity.Email, identity.PasswordHash, identity.CreatedAt, identity.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to insert identity: %w", err)
	}

	return identity, nil
}

// UpdatePassword はパスワードハッシュを置き換える。
func (r *PostgresCredentialRepo) UpdatePassword(ctx context.Context, identityID, newPassword string) error {
	hash, err := r.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE identities SET password_hash = $1, updated_at = $2 WHERE id = $3`,
		hash, time.Now(), identityID,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrIdentityNotFound
	}
	return nil
}

// isUniqueViolation はPostgreSQLの一意制約違反（23505）かを判定する。
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pgerrcode.UniqueViolation
}

// compile-time interface check
var _ CredentialRepository = (*PostgresCredentialRepo)(nil)
