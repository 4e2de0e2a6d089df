package passwordresets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/filehaven/filehaven/internal/common"
	"github.com/filehaven/filehaven/internal/dbx"
	"github.com/filehaven/filehaven/internal/ident"
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

// Create inserts a pending reset request. A primary-key collision is
// returned raw so the caller's collision loop can classify it by
// constraint name.
func (r *PostgresRepository) Create(ctx context.Context, tokenHash []byte, userID ident.ID) error {
	query := `
		INSERT INTO password_resets (token_hash, user_id)
		VALUES ($1, $2)
	`
	if _, err := r.db.ExecContext(ctx, query, tokenHash, []byte(userID)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// FindEmail returns the email of the user whose reset request matches the
// token digest, or common.ErrorNotFound.
func (r *PostgresRepository) FindEmail(ctx context.Context, tokenHash []byte) (string, error) {
	query := `
		SELECT users.email
		FROM password_resets JOIN users ON users.id = password_resets.user_id
		WHERE password_resets.token_hash = $1
	`
	var email string
	if err := r.db.QueryRowContext(ctx, query, tokenHash).Scan(&email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return email, nil
}

// Consume deletes the reset request matching the token digest and returns
// the user it belonged to, or common.ErrorNotFound. Resets are single-use.
func (r *PostgresRepository) Consume(ctx context.Context, tokenHash []byte) (ident.ID, error) {
	query := `
		DELETE FROM password_resets
		WHERE token_hash = $1
		RETURNING user_id
	`
	var userID ident.ID
	if err := r.db.QueryRowContext(ctx, query, tokenHash).Scan(&userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return userID, nil
}

// DeleteByUser drops any previous reset request for the user, so only the
// most recently emailed token stays valid.
func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID ident.ID) error {
	query := `
		DELETE FROM password_resets
		WHERE user_id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, []byte(userID)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
