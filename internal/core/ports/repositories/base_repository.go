package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager exposes database transaction control to the service
// layer. Services own the transaction boundary; repositories only execute
// inside one when handed a pgx.Tx.
type TransactionManager interface {
	// Begin opens a new database transaction.
	Begin(ctx context.Context) (pgx.Tx, error)

	// Commit finalizes the transaction.
	Commit(ctx context.Context, tx pgx.Tx) error

	// Rollback aborts the transaction. Rolling back an already committed
	// transaction is a no-op.
	Rollback(ctx context.Context, tx pgx.Tx) error
}

// RepositoryWithTx marks a repository whose ...InTx methods participate in
// caller-managed transactions.
type RepositoryWithTx interface {
	TransactionManager
}
