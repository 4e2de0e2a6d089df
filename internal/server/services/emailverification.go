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
	"github.com/filehaven/filehaven/internal/server/repositories/repomanager"
	"github.com/filehaven/filehaven/internal/server/repositories/unverifiedemails"
)

// EmailVerificationService manages pending email verifications: issuing
// tokens, exchanging a token for a short code, and checking either proof.
type EmailVerificationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	mailer      mailer.Mailer
	captcha     captcha.Verifier
	origin      string
	logger      logging.Logger
	txOpts      *dbx.Options
}

func NewEmailVerificationService(db *sql.DB, m repomanager.RepositoryManager,
	mail mailer.Mailer, verifier captcha.Verifier, cfg *config.Config, logger logging.Logger) *EmailVerificationService {
	l := logger.With("service", "email-verification")
	return &EmailVerificationService{
		db:          db,
		repomanager: m,
		mailer:      mail,
		captcha:     verifier,
		origin:      cfg.WebsiteOrigin,
		logger:      l,
		txOpts:      txOptions(cfg, l),
	}
}

// Request starts verification for an address. The API response is the same
// whether or not the address already has an account; the difference lives
// only in which email gets sent, after the transaction commits.
func (s *EmailVerificationService) Request(ctx context.Context, email, captchaToken string) error {
	ok, err := s.captcha.Verify(ctx, captchaToken)
	if err != nil {
		return fmt.Errorf("error verifying captcha: %w", err)
	}
	if !ok {
		return common.ErrorCaptchaFailed
	}

	token, err := ident.New(ident.TokenLength)
	if err != nil {
		return fmt.Errorf("error generating verification token: %w", err)
	}

	owner, err := dbx.Serializable(ctx, s.db, s.txOpts, func(ctx context.Context, tx dbx.DBTX) (*models.User, error) {
		user, err := s.repomanager.Users(tx).GetByEmail(ctx, email)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}

		pendingRepo := s.repomanager.UnverifiedEmails(tx)
		if err := pendingRepo.DeleteByEmail(ctx, email); err != nil {
			return nil, err
		}
		err = dbx.RerollOnCollision(ctx, tx, unverifiedemails.PKConstraint, token.Reroll, func(ctx context.Context) error {
			return pendingRepo.Create(ctx, cryptox.HashUnsalted(token), email)
		})
		return nil, err
	})
	if err != nil {
		return err
	}

	var msg mailer.Message
	if owner != nil {
		msg = mailer.EmailTaken(owner.Name, email)
	} else {
		msg = mailer.Verification(email, fmt.Sprintf("%s/sign-up?token=%s", s.origin, token))
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Error(ctx, "error sending mail", "error", err)
	}
	return nil
}

// CheckToken returns the email a verification token belongs to.
func (s *EmailVerificationService) CheckToken(ctx context.Context, token string) (string, error) {
	parsed, err := ident.Parse(token, ident.TokenLength)
	if err != nil {
		return "", common.ErrorNotFound
	}
	pending, err := s.repomanager.UnverifiedEmails(s.db).FindByTokenHash(ctx, cryptox.HashUnsalted(parsed))
	if err != nil {
		return "", err
	}
	return pending.Email, nil
}

// IssueCode generates a short code for the pending verification identified
// by token, stores its salted hash, and returns the code together with the
// email it verifies. Only the hash is persisted.
func (s *EmailVerificationService) IssueCode(ctx context.Context, token string) (code, email string, err error) {
	parsed, err := ident.Parse(token, ident.TokenLength)
	if err != nil {
		return "", "", common.ErrorNotFound
	}

	code, err = cryptox.GenerateShortCode()
	if err != nil {
		return "", "", fmt.Errorf("error generating code: %w", err)
	}
	codeHash, err := cryptox.HashSalted([]byte(code))
	if err != nil {
		return "", "", fmt.Errorf("error hashing code: %w", err)
	}

	email, err = s.repomanager.UnverifiedEmails(s.db).SetCodeHash(ctx, cryptox.HashUnsalted(parsed), codeHash)
	if err != nil {
		return "", "", err
	}
	return code, email, nil
}

// CheckCode verifies a short code against the pending verification for
// email. A missing row, a row without a code, and a wrong code all come
// back as common.ErrorNotFound.
func (s *EmailVerificationService) CheckCode(ctx context.Context, email, code string) error {
	pending, err := s.repomanager.UnverifiedEmails(s.db).FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if pending.CodeHash == nil || !cryptox.VerifySalted([]byte(code), *pending.CodeHash) {
		return common.ErrorNotFound
	}
	return nil
}
