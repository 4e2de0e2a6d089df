// Package repomanager hands out repositories bound to a DBTX, so the same
// repository code runs against the pool or inside a transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/filehaven/filehaven/internal/dbx"
	"github.com/filehaven/filehaven/internal/server/repositories/files"
	"github.com/filehaven/filehaven/internal/server/repositories/passwordresets"
	"github.com/filehaven/filehaven/internal/server/repositories/sessions"
	"github.com/filehaven/filehaven/internal/server/repositories/unverifiedemails"
	"github.com/filehaven/filehaven/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	UnverifiedEmails(db dbx.DBTX) unverifiedemails.Repository
	PasswordResets(db dbx.DBTX) passwordresets.Repository
	Files(db dbx.DBTX) files.Repository
}
