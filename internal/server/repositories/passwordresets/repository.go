// Package passwordresets provides a PostgreSQL-backed repository for
// pending password reset requests.
package passwordresets

import (
	"context"

	"github.com/filehaven/filehaven/internal/ident"
)

// PKConstraint is the primary-key constraint of the password_resets table,
// used by the token collision-retry loop.
const PKConstraint = "password_resets_pkey"

type Repository interface {
	Create(ctx context.Context, tokenHash []byte, userID ident.ID) error
	FindEmail(ctx context.Context, tokenHash []byte) (string, error)
	Consume(ctx context.Context, tokenHash []byte) (ident.ID, error)
	DeleteByUser(ctx context.Context, userID ident.ID) error
}
