// Package dbx provides the DB abstractions shared by repositories and
// services: a minimal interface (DBTX) implemented by both *sql.DB and
// *sql.Tx, a serializable-transaction executor that retries on detected
// race conditions, and a savepoint helper for resolving primary-key
// collisions on freshly generated random identifiers.
package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of database/sql used by our repos.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLSTATE codes reported by Postgres.
const (
	// serializationFailureCode is raised when the database detects that
	// concurrently committed transactions cannot be explained by any serial
	// order. It is the only code that triggers a transaction re-run.
	serializationFailureCode = "40001"

	// uniqueViolationCode is raised on any unique-constraint violation.
	// Which constraint was violated decides whether it is an ID collision
	// (retried via savepoint) or a genuine business conflict.
	uniqueViolationCode = "23505"
)

// ErrTooManyConflicts is returned by Serializable when Options.MaxAttempts
// transactions in a row were aborted by serialization failures.
var ErrTooManyConflicts = errors.New("too many serialization conflicts")

// IsSerializationFailure reports whether err originates from the database
// as a serialization failure (SQLSTATE 40001). No other error, including
// unique-constraint violations, counts as a conflict.
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == serializationFailureCode
}

// IsUniqueViolation reports whether err is a unique-constraint violation of
// the specific named constraint. Matching by constraint name keeps a
// primary-key collision distinct from, say, a duplicate email.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == uniqueViolationCode &&
		pgErr.ConstraintName == constraint
}

// Options tunes the retry behavior of Serializable.
type Options struct {
	// MaxAttempts bounds how many times the unit of work is run before
	// giving up with ErrTooManyConflicts. Zero means unlimited, which
	// matches the assumption that conflicts are rare and transient.
	MaxAttempts int

	// OnConflict, if set, is called before each re-run with the attempt
	// number that failed and the conflict error. Used for logging and
	// counters.
	OnConflict func(attempt int, err error)
}

// Serializable runs fn inside a transaction at SERIALIZABLE isolation and
// commits it if fn returns nil. When the database reports a serialization
// failure, from a statement or from the commit itself, the transaction is
// discarded and fn is re-run from the beginning. Any other error rolls the
// transaction back and is returned to the caller unchanged.
//
// fn must not perform side effects outside the transaction (sending mail,
// third-party calls): it can run any number of times before one run
// commits. Defer such work until Serializable has returned.
func Serializable[T any](ctx context.Context, db *sql.DB, opts *Options, fn func(ctx context.Context, tx DBTX) (T, error)) (T, error) {
	var zero T

	for attempt := 1; ; attempt++ {
		value, err := runOnce(ctx, db, fn)
		if err == nil {
			return value, nil
		}
		if !IsSerializationFailure(err) {
			return zero, err
		}
		if opts != nil && opts.MaxAttempts > 0 && attempt >= opts.MaxAttempts {
			return zero, fmt.Errorf("%w: %d attempts, last: %v", ErrTooManyConflicts, attempt, err)
		}
		if opts != nil && opts.OnConflict != nil {
			opts.OnConflict(attempt, err)
		}
	}
}

// runOnce performs a single begin/fn/commit cycle. Panics roll the
// transaction back and are rethrown.
func runOnce[T any](ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx DBTX) (T, error)) (value T, err error) {
	var zero T

	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return zero, err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			value = zero
			return
		}
		if err = tx.Commit(); err != nil {
			value = zero
		}
	}()

	value, err = fn(ctx, tx)
	return value, err
}
