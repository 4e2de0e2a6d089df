package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/filehaven/filehaven/internal/common"
	"github.com/filehaven/filehaven/internal/dbx"
	"github.com/filehaven/filehaven/internal/ident"
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

// Create inserts a session row. A primary-key collision is returned raw so
// the caller's collision loop can classify it by constraint name.
func (r *PostgresRepository) Create(ctx context.Context, tokenHash []byte, userID ident.ID) error {
	query := `
		INSERT INTO sessions (token_hash, user_id)
		VALUES ($1, $2)
	`
	if _, err := r.db.ExecContext(ctx, query, tokenHash, []byte(userID)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetUser returns the user owning the session with the given token digest,
// or common.ErrorNotFound.
func (r *PostgresRepository) GetUser(ctx context.Context, tokenHash []byte) (*models.User, error) {
	query := `
		SELECT users.id, users.email, users.name, users.password_hash, users.created_at
		FROM sessions JOIN users ON users.id = sessions.user_id
		WHERE sessions.token_hash = $1
	`
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, tokenHash).
		Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, tokenHash []byte) error {
	query := `
		DELETE FROM sessions
		WHERE token_hash = $1
	`
	if _, err := r.db.ExecContext(ctx, query, tokenHash); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// DeleteExpired drops sessions older than maxAge and reports how many were
// removed.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, maxAge time.Duration) (int64, error) {
	query := `
		DELETE FROM sessions
		WHERE created_at < $1
	`
	res, err := r.db.ExecContext(ctx, query, time.Now().Add(-maxAge))
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
