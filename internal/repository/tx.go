package repository

import (
	"context"

	"github.com/suivest/suivest-go/internal/logger"
)

// Tx is the common contract for transactional repository handles
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// SafeRollback rolls back a transaction and logs unexpected errors. Rolling
// back an already-committed transaction is a no-op for the implementations
// in this repo, so it is safe to defer unconditionally.
func SafeRollback(ctx context.Context, tx Tx) {
	if err := tx.Rollback(ctx); err != nil {
		logger.FromContext(ctx).Error("Failed to rollback transaction", "error", err)
	}
}
