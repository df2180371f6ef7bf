package services

import (
	"context"

	"github.com/sekrobank/sekro_bank_api/internal/core/domain"
	"github.com/sekrobank/sekro_bank_api/internal/dto"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account, enforcing ownership for customers.
	GetAccountByID(ctx context.Context, accountID string, userID string) (*domain.Account, error)

	// ListAccounts retrieves all accounts owned by the user.
	ListAccounts(ctx context.Context, userID string) ([]domain.Account, error)

	// ListTransactions retrieves a page of an account's ledger history, newest first.
	ListTransactions(ctx context.Context, accountID string, userID string, limit int, nextToken *string) ([]domain.Transaction, *string, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// CreateAccount opens a new deposit account for the user.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error)

	// CloseAccount closes an account with a zero balance.
	CloseAccount(ctx context.Context, accountID string, userID string) error
}

// LedgerSvc defines the money movement operations of the ledger engine.
// Every mutating operation takes an idempotency key; replays with a key that
// was already recorded return the original transaction without moving money.
type LedgerSvc interface {
	// Deposit credits an account.
	Deposit(ctx context.Context, accountID string, req dto.DepositRequest, userID string, idempotencyKey string) (*domain.Transaction, error)

	// Withdraw debits an account, failing with ErrInsufficientFunds rather than overdrawing.
	Withdraw(ctx context.Context, accountID string, req dto.WithdrawRequest, userID string, idempotencyKey string) (*domain.Transaction, error)

	// InternalTransfer atomically debits one account and credits another.
	// Both legs post together or not at all.
	InternalTransfer(ctx context.Context, req dto.InternalTransferRequest, userID string, idempotencyKey string) ([]domain.Transaction, error)

	// ExternalTransfer debits the source account and records a PENDING transfer
	// to another institution.
	ExternalTransfer(ctx context.Context, req dto.ExternalTransferRequest, userID string, idempotencyKey string) (*domain.Transaction, error)

	// SettleExternalTransfer resolves a PENDING external transfer to POSTED or
	// FAILED. A FAILED outcome refunds the held amount. Settling an already
	// settled transfer is a no-op returning the transfer as-is.
	SettleExternalTransfer(ctx context.Context, transactionID string, outcome domain.TransactionStatus) (*domain.Transaction, error)
}

// AccountSvcFacade combines all account-related service interfaces
// This is a facade for clients that need access to all operations
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	LedgerSvc
}
