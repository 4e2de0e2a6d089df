// Package files provides a PostgreSQL-backed repository for stored file
// metadata. File content lives in the S3-compatible backend.
package files

import (
	"context"

	"github.com/filehaven/filehaven/internal/ident"
	"github.com/filehaven/filehaven/internal/server/models"
)

// PKConstraint is the primary-key constraint of the files table, used by
// the ID collision-retry loop.
const PKConstraint = "files_pkey"

type Repository interface {
	Create(ctx context.Context, file *models.File) error
	Get(ctx context.Context, userID, id ident.ID) (*models.File, error)
	List(ctx context.Context, userID ident.ID) ([]*models.File, error)
	MarkUploaded(ctx context.Context, userID, id ident.ID) error
	Delete(ctx context.Context, userID, id ident.ID) (*models.File, error)
}
