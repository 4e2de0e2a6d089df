package dbx

import "context"

// savepointName is the nested savepoint used by RerollOnCollision. Loops
// never nest, so a fixed name is fine.
const savepointName = "reroll_insert"

// RerollOnCollision inserts a row keyed by a freshly generated random
// identifier, tolerating the astronomically rare case of the identifier
// already existing. The insert runs inside a nested savepoint; when it
// fails with a unique violation on exactly pkConstraint (the target
// table's primary key), only the savepoint is rolled back, reroll is
// called to draw a new identifier, and the insert runs again. Statements
// already executed in the surrounding transaction are untouched.
//
// Any other error, including unique violations on other constraints such
// as an email column, propagates immediately and aborts the outer unit of
// work: those are business conflicts, not collisions.
func RerollOnCollision(ctx context.Context, tx DBTX, pkConstraint string, reroll func() error, insert func(ctx context.Context) error) error {
	for {
		if _, err := tx.ExecContext(ctx, "SAVEPOINT "+savepointName); err != nil {
			return err
		}

		err := insert(ctx)
		if err == nil {
			_, err = tx.ExecContext(ctx, "RELEASE SAVEPOINT "+savepointName)
			return err
		}

		if !IsUniqueViolation(err, pkConstraint) {
			return err
		}

		// The transaction is poisoned until the failed statement is undone;
		// rolling back to the savepoint keeps the rest of it intact.
		if _, err := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+savepointName); err != nil {
			return err
		}
		if err := reroll(); err != nil {
			return err
		}
	}
}
