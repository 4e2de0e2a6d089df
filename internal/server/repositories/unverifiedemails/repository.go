// Package unverifiedemails provides a PostgreSQL-backed repository for
// pending email verification requests.
package unverifiedemails

import (
	"context"

	"github.com/filehaven/filehaven/internal/server/models"
)

// PKConstraint is the primary-key constraint of the unverified_emails
// table, used by the token collision-retry loop.
const PKConstraint = "unverified_emails_pkey"

type Repository interface {
	Create(ctx context.Context, tokenHash []byte, email string) error
	FindByTokenHash(ctx context.Context, tokenHash []byte) (*models.UnverifiedEmail, error)
	FindByEmail(ctx context.Context, email string) (*models.UnverifiedEmail, error)
	SetCodeHash(ctx context.Context, tokenHash []byte, codeHash string) (string, error)
	DeleteByEmail(ctx context.Context, email string) error
}
