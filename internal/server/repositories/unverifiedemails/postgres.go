package unverifiedemails

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/filehaven/filehaven/internal/common"
	"github.com/filehaven/filehaven/internal/dbx"
	"github.com/filehaven/filehaven/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a pending verification request. A primary-key collision is
// returned raw so the caller's collision loop can classify it by
// constraint name.
func (r *PostgresRepository) Create(ctx context.Context, tokenHash []byte, email string) error {
	query := `
		INSERT INTO unverified_emails (token_hash, email)
		VALUES ($1, $2)
	`
	if _, err := r.db.ExecContext(ctx, query, tokenHash, email); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindByTokenHash(ctx context.Context, tokenHash []byte) (*models.UnverifiedEmail, error) {
	query := `
		SELECT token_hash, email, code_hash, created_at FROM unverified_emails
		WHERE token_hash = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, tokenHash))
}

// FindByEmail returns the pending request for email that already has a
// verification code issued.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.UnverifiedEmail, error) {
	query := `
		SELECT token_hash, email, code_hash, created_at FROM unverified_emails
		WHERE email = $1 AND code_hash IS NOT NULL
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

// SetCodeHash stores the salted hash of a freshly issued short code and
// returns the email it belongs to, or common.ErrorNotFound.
func (r *PostgresRepository) SetCodeHash(ctx context.Context, tokenHash []byte, codeHash string) (string, error) {
	query := `
		UPDATE unverified_emails
		SET code_hash = $1
		WHERE token_hash = $2
		RETURNING email
	`
	var email string
	if err := r.db.QueryRowContext(ctx, query, codeHash, tokenHash).Scan(&email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return email, nil
}

// DeleteByEmail removes all pending requests for email. Used both to drop
// stale requests before issuing a new token and to consume the request
// when the account is created.
func (r *PostgresRepository) DeleteByEmail(ctx context.Context, email string) error {
	query := `
		DELETE FROM unverified_emails
		WHERE email = $1
	`
	if _, err := r.db.ExecContext(ctx, query, email); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.UnverifiedEmail, error) {
	pending := &models.UnverifiedEmail{}
	err := row.Scan(&pending.TokenHash, &pending.Email, &pending.CodeHash, &pending.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return pending, nil
}
