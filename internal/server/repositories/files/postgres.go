package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/filehaven/filehaven/internal/common"
	"github.com/filehaven/filehaven/internal/dbx"
	"github.com/filehaven/filehaven/internal/ident"
	"github.com/filehaven/filehaven/internal/server/models"
)

// nameConstraint guards per-user file name uniqueness; violating it is a
// business conflict, not an ID collision.
const nameConstraint = "files_user_id_name_key"

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a file metadata row. A duplicate name for the same user
// yields common.ErrorNameTaken; a primary-key collision is returned raw so
// the caller's collision loop can classify it by constraint name.
func (r *PostgresRepository) Create(ctx context.Context, file *models.File) error {
	query := `
		INSERT INTO files (id, user_id, name, size, content_type, storage_key)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := r.db.ExecContext(ctx, query,
		[]byte(file.ID), []byte(file.UserID), file.Name, file.Size, file.ContentType, file.StorageKey); err != nil {
		if dbx.IsUniqueViolation(err, nameConstraint) {
			return common.ErrorNameTaken
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id ident.ID) (*models.File, error) {
	query := `
		SELECT id, user_id, name, size, content_type, storage_key, uploaded, created_at
		FROM files
		WHERE user_id = $1 AND id = $2
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, []byte(userID), []byte(id)))
}

func (r *PostgresRepository) List(ctx context.Context, userID ident.ID) ([]*models.File, error) {
	query := `
		SELECT id, user_id, name, size, content_type, storage_key, uploaded, created_at
		FROM files
		WHERE user_id = $1
		ORDER BY name
	`
	rows, err := r.db.QueryContext(ctx, query, []byte(userID))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var list []*models.File
	for rows.Next() {
		f := &models.File{}
		if err := rows.Scan(&f.ID, &f.UserID, &f.Name, &f.Size, &f.ContentType,
			&f.StorageKey, &f.Uploaded, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		list = append(list, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return list, nil
}

func (r *PostgresRepository) MarkUploaded(ctx context.Context, userID, id ident.ID) error {
	query := `
		UPDATE files SET uploaded = true
		WHERE user_id = $1 AND id = $2
	`
	res, err := r.db.ExecContext(ctx, query, []byte(userID), []byte(id))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// Delete removes the row and returns it so the caller can delete the
// backing object from storage after commit.
func (r *PostgresRepository) Delete(ctx context.Context, userID, id ident.ID) (*models.File, error) {
	query := `
		DELETE FROM files
		WHERE user_id = $1 AND id = $2
		RETURNING id, user_id, name, size, content_type, storage_key, uploaded, created_at
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, []byte(userID), []byte(id)))
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.File, error) {
	f := &models.File{}
	err := row.Scan(&f.ID, &f.UserID, &f.Name, &f.Size, &f.ContentType,
		&f.StorageKey, &f.Uploaded, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}
