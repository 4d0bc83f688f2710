package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// WithTx executes fn within a single transaction. Any error from fn rolls the
// whole transaction back, so multi-collection writes commit together or not
// at all.
func WithTx(ctx context.Context, sdb *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := sdb.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("platform/db: begin tx: %w", err)
	}

	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("platform/db: commit tx: %w", err)
	}

	return nil
}
