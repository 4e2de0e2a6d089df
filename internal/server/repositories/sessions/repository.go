// Package sessions provides a PostgreSQL-backed repository for sign-in
// sessions, keyed by the unsalted digest of the bearer token.
package sessions

import (
	"context"
	"time"

	"github.com/filehaven/filehaven/internal/ident"
	"github.com/filehaven/filehaven/internal/server/models"
)

// PKConstraint is the primary-key constraint of the sessions table, used by
// the token collision-retry loop.
const PKConstraint = "sessions_pkey"

type Repository interface {
	Create(ctx context.Context, tokenHash []byte, userID ident.ID) error
	GetUser(ctx context.Context, tokenHash []byte) (*models.User, error)
	Delete(ctx context.Context, tokenHash []byte) error
	DeleteExpired(ctx context.Context, maxAge time.Duration) (int64, error)
}
