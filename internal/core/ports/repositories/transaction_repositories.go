package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sekrobank/sekro_bank_api/internal/core/domain"
)

// TransactionReader defines read operations for ledger transaction data
type TransactionReader interface {
	// FindTransactionByID retrieves a specific transaction by its unique identifier.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// FindTransactionByIdempotencyKey retrieves the transaction previously recorded for a key, if any.
	FindTransactionByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error)

	// FindTransactionsByTransferGroup retrieves all legs recorded under a transfer group ID.
	FindTransactionsByTransferGroup(ctx context.Context, transferGroupID string) ([]domain.Transaction, error)

	// ListTransactionsByAccountID retrieves a paginated list of transactions for an account
	// using token-based pagination, newest first.
	// It returns the transactions, a token for the next page, and an error.
	ListTransactionsByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error)
}

// TransactionWriter defines write operations for ledger transaction data
type TransactionWriter interface {
	// SaveTransactionsInTx persists one or more transaction rows within a given transaction.
	SaveTransactionsInTx(ctx context.Context, tx pgx.Tx, transactions []domain.Transaction) error

	// FindTransactionByIDForUpdate selects a transaction and locks it within a transaction.
	FindTransactionByIDForUpdate(ctx context.Context, tx pgx.Tx, transactionID string) (*domain.Transaction, error)

	// UpdateTransactionStatusInTx moves a transaction to a terminal status within a transaction.
	UpdateTransactionStatusInTx(ctx context.Context, tx pgx.Tx, transactionID string, status domain.TransactionStatus, postedAt time.Time) error
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}

// TransactionRepositoryWithTx extends TransactionRepositoryFacade with transaction capabilities
type TransactionRepositoryWithTx interface {
	TransactionRepositoryFacade
	TransactionManager
}
