// Package users provides a PostgreSQL-backed repository for user accounts.
package users

import (
	"context"

	"github.com/filehaven/filehaven/internal/ident"
	"github.com/filehaven/filehaven/internal/server/models"
)

// PKConstraint is the primary-key constraint of the users table, used by
// the ID collision-retry loop.
const PKConstraint = "users_pkey"

type Repository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id ident.ID) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, id ident.ID, passwordHash string) error
}
