package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/filehaven/filehaven/internal/common"
	"github.com/filehaven/filehaven/internal/cryptox"
	"github.com/filehaven/filehaven/internal/dbx"
	"github.com/filehaven/filehaven/internal/ident"
	"github.com/filehaven/filehaven/internal/logging"
	"github.com/filehaven/filehaven/internal/server/config"
	"github.com/filehaven/filehaven/internal/server/models"
	"github.com/filehaven/filehaven/internal/server/repositories/repomanager"
	"github.com/filehaven/filehaven/internal/server/repositories/sessions"
)

// SessionService handles sign-in, sign-out and bearer-token authentication.
type SessionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	maxAge      time.Duration
	txOpts      *dbx.Options
}

func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *SessionService {
	return &SessionService{
		db:          db,
		repomanager: m,
		maxAge:      cfg.SessionMaxAge,
		txOpts:      txOptions(cfg, logger.With("service", "sessions")),
	}
}

// SignIn checks the credentials and creates a session. The 128-byte token
// is rerolled inside a savepoint if its digest collides with an existing
// session; a wrong email and a wrong password take the same error path.
func (s *SessionService) SignIn(ctx context.Context, email, password string) (ident.ID, *models.User, error) {
	token, err := ident.New(ident.TokenLength)
	if err != nil {
		return nil, nil, fmt.Errorf("error generating session token: %w", err)
	}

	user, err := dbx.Serializable(ctx, s.db, s.txOpts, func(ctx context.Context, tx dbx.DBTX) (*models.User, error) {
		user, err := s.repomanager.Users(tx).GetByEmail(ctx, email)
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorInvalidCredentials
		}
		if err != nil {
			return nil, err
		}
		if !cryptox.VerifySalted([]byte(password), user.PasswordHash) {
			return nil, common.ErrorInvalidCredentials
		}

		sessionsRepo := s.repomanager.Sessions(tx)
		err = dbx.RerollOnCollision(ctx, tx, sessions.PKConstraint, token.Reroll, func(ctx context.Context) error {
			return sessionsRepo.Create(ctx, cryptox.HashUnsalted(token), user.ID)
		})
		if err != nil {
			return nil, err
		}
		return user, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return token, user, nil
}

// Authenticate resolves a bearer token to its user. Any malformed or
// unknown token yields common.ErrorUnauthorized; callers never learn which.
func (s *SessionService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	parsed, err := ident.Parse(token, ident.TokenLength)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}

	user, err := s.repomanager.Sessions(s.db).GetUser(ctx, cryptox.HashUnsalted(parsed))
	if errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrorUnauthorized
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// SignOut deletes the session for the given token. Unknown tokens are not
// an error; signing out twice is fine.
func (s *SessionService) SignOut(ctx context.Context, token string) error {
	parsed, err := ident.Parse(token, ident.TokenLength)
	if err != nil {
		return nil
	}
	return s.repomanager.Sessions(s.db).Delete(ctx, cryptox.HashUnsalted(parsed))
}

// CleanupExpired removes sessions older than the configured max age and
// returns how many were dropped.
func (s *SessionService) CleanupExpired(ctx context.Context) (int64, error) {
	return s.repomanager.Sessions(s.db).DeleteExpired(ctx, s.maxAge)
}
