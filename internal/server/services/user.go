package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/filehaven/filehaven/internal/cryptox"
	"github.com/filehaven/filehaven/internal/dbx"
	"github.com/filehaven/filehaven/internal/ident"
	"github.com/filehaven/filehaven/internal/logging"
	"github.com/filehaven/filehaven/internal/server/config"
	"github.com/filehaven/filehaven/internal/server/models"
	"github.com/filehaven/filehaven/internal/server/repositories/repomanager"
	"github.com/filehaven/filehaven/internal/server/repositories/users"
)

// UserService handles account creation.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	txOpts      *dbx.Options
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		txOpts:      txOptions(cfg, logger.With("service", "users")),
	}
}

// Register creates a new user. The 8-byte user ID is generated here and
// rerolled inside a savepoint if it collides; a duplicate email surfaces as
// common.ErrorEmailTaken. Any pending email verification rows for the
// address are consumed in the same transaction.
func (s *UserService) Register(ctx context.Context, email, name, password string) (*models.User, error) {
	passwordHash, err := cryptox.HashSalted([]byte(password))
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	id, err := ident.New(ident.UserIDLength)
	if err != nil {
		return nil, fmt.Errorf("error generating user id: %w", err)
	}

	user := &models.User{ID: id, Email: email, Name: name, PasswordHash: passwordHash}

	return dbx.Serializable(ctx, s.db, s.txOpts, func(ctx context.Context, tx dbx.DBTX) (*models.User, error) {
		usersRepo := s.repomanager.Users(tx)
		pendingRepo := s.repomanager.UnverifiedEmails(tx)

		err := dbx.RerollOnCollision(ctx, tx, users.PKConstraint, id.Reroll, func(ctx context.Context) error {
			return usersRepo.Create(ctx, user)
		})
		if err != nil {
			return nil, err
		}

		if err := pendingRepo.DeleteByEmail(ctx, email); err != nil {
			return nil, err
		}

		return user, nil
	})
}
