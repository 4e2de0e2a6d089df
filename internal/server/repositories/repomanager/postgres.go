package repomanager

import (
	"context"
	"database/sql"

	"github.com/filehaven/filehaven/internal/dbx"
	"github.com/filehaven/filehaven/internal/server/migrations"
	"github.com/filehaven/filehaven/internal/server/repositories/files"
	"github.com/filehaven/filehaven/internal/server/repositories/passwordresets"
	"github.com/filehaven/filehaven/internal/server/repositories/sessions"
	"github.com/filehaven/filehaven/internal/server/repositories/unverifiedemails"
	"github.com/filehaven/filehaven/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

type PostgresRepositoryManager struct{}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return err
	}

	return nil
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Sessions(db dbx.DBTX) sessions.Repository {
	return sessions.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) UnverifiedEmails(db dbx.DBTX) unverifiedemails.Repository {
	return unverifiedemails.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) PasswordResets(db dbx.DBTX) passwordresets.Repository {
	return passwordresets.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Files(db dbx.DBTX) files.Repository {
	return files.NewPostgresRepository(db)
}
