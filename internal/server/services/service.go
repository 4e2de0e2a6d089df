// Package services contains server-side business logic. Every write goes
// through dbx.Serializable; anything observable outside the database (mail,
// presigned URLs) happens strictly after the transaction has committed, so
// units of work stay safely repeatable under conflict retry.
package services

import (
	"context"

	"github.com/filehaven/filehaven/internal/dbx"
	"github.com/filehaven/filehaven/internal/logging"
	"github.com/filehaven/filehaven/internal/server/config"
)

// txOptions builds the executor options shared by all services: the
// configured retry cap plus a log line per conflict so contention is
// visible in production.
func txOptions(cfg *config.Config, logger logging.Logger) *dbx.Options {
	return &dbx.Options{
		MaxAttempts: cfg.TxMaxAttempts,
		OnConflict: func(attempt int, err error) {
			logger.Warn(context.Background(), "serialization conflict, retrying transaction",
				"attempt", attempt)
		},
	}
}
