package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/filehaven/filehaven/internal/common"
	"github.com/filehaven/filehaven/internal/cryptox"
	"github.com/filehaven/filehaven/internal/dbx"
	"github.com/filehaven/filehaven/internal/ident"
	"github.com/filehaven/filehaven/internal/logging"
	"github.com/filehaven/filehaven/internal/server/captcha"
	"github.com/filehaven/filehaven/internal/server/config"
	"github.com/filehaven/filehaven/internal/server/mailer"
	"github.com/filehaven/filehaven/internal/server/models"
	"github.com/filehaven/filehaven/internal/server/repositories/passwordresets"
	"github.com/filehaven/filehaven/internal/server/repositories/repomanager"
)

// PasswordResetService manages the reset flow: issuing one-time reset
// tokens by email and exchanging them for a new password.
type PasswordResetService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	mailer      mailer.Mailer
	captcha     captcha.Verifier
	origin      string
	logger      logging.Logger
	txOpts      *dbx.Options
}

func NewPasswordResetService(db *sql.DB, m repomanager.RepositoryManager,
	mail mailer.Mailer, verifier captcha.Verifier, cfg *config.Config, logger logging.Logger) *PasswordResetService {
	l := logger.With("service", "password-resets")
	return &PasswordResetService{
		db:          db,
		repomanager: m,
		mailer:      mail,
		captcha:     verifier,
		origin:      cfg.WebsiteOrigin,
		logger:      l,
		txOpts:      txOptions(cfg, l),
	}
}

// Request issues a reset token for the account with the given email. The
// API response never reveals whether the account exists: an unknown email
// gets a "reset failed" mail instead of a reset link. At most one pending
// reset per user survives; a new request replaces the previous one.
func (s *PasswordResetService) Request(ctx context.Context, email, captchaToken string) error {
	ok, err := s.captcha.Verify(ctx, captchaToken)
	if err != nil {
		return fmt.Errorf("error verifying captcha: %w", err)
	}
	if !ok {
		return common.ErrorCaptchaFailed
	}

	token, err := ident.New(ident.TokenLength)
	if err != nil {
		return fmt.Errorf("error generating reset token: %w", err)
	}

	user, err := dbx.Serializable(ctx, s.db, s.txOpts, func(ctx context.Context, tx dbx.DBTX) (*models.User, error) {
		user, err := s.repomanager.Users(tx).GetByEmail(ctx, email)
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		resetsRepo := s.repomanager.PasswordResets(tx)
		if err := resetsRepo.DeleteByUser(ctx, user.ID); err != nil {
			return nil, err
		}
		err = dbx.RerollOnCollision(ctx, tx, passwordresets.PKConstraint, token.Reroll, func(ctx context.Context) error {
			return resetsRepo.Create(ctx, cryptox.HashUnsalted(token), user.ID)
		})
		return user, err
	})
	if err != nil {
		return err
	}

	var msg mailer.Message
	if user != nil {
		msg = mailer.PasswordReset(user.Name, email, fmt.Sprintf("%s/reset-password?token=%s", s.origin, token))
	} else {
		msg = mailer.PasswordResetFailed(email)
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Error(ctx, "error sending mail", "error", err)
	}
	return nil
}

// Check returns the email a pending reset token belongs to, so the client
// can show it on the new-password form.
func (s *PasswordResetService) Check(ctx context.Context, token string) (string, error) {
	parsed, err := ident.Parse(token, ident.TokenLength)
	if err != nil {
		return "", common.ErrorNotFound
	}
	return s.repomanager.PasswordResets(s.db).FindEmail(ctx, cryptox.HashUnsalted(parsed))
}

// Complete consumes a reset token and sets the account's password. The
// token row is deleted and the hash updated in one transaction, so a token
// can never be spent twice.
func (s *PasswordResetService) Complete(ctx context.Context, token, newPassword string) error {
	parsed, err := ident.Parse(token, ident.TokenLength)
	if err != nil {
		return common.ErrorNotFound
	}

	passwordHash, err := cryptox.HashSalted([]byte(newPassword))
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	_, err = dbx.Serializable(ctx, s.db, s.txOpts, func(ctx context.Context, tx dbx.DBTX) (struct{}, error) {
		userID, err := s.repomanager.PasswordResets(tx).Consume(ctx, cryptox.HashUnsalted(parsed))
		if err != nil {
			return struct{}{}, err
		}
		return struct{}{}, s.repomanager.Users(tx).UpdatePasswordHash(ctx, userID, passwordHash)
	})
	return err
}
