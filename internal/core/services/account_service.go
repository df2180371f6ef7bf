package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sekrobank/sekro_bank_api/internal/apperrors"
	"github.com/sekrobank/sekro_bank_api/internal/core/domain"
	portsrepo "github.com/sekrobank/sekro_bank_api/internal/core/ports/repositories"
	portssvc "github.com/sekrobank/sekro_bank_api/internal/core/ports/services"
	"github.com/sekrobank/sekro_bank_api/internal/dto"
	"github.com/sekrobank/sekro_bank_api/internal/middleware"
	"github.com/sekrobank/sekro_bank_api/internal/utils"
)

// accountService provides deposit account and ledger operations.
// The ledger methods live in ledger_service.go.
type accountService struct {
	accountRepo portsrepo.AccountRepositoryWithTx
	txnRepo     portsrepo.TransactionRepositoryWithTx
}

// NewAccountService creates a new account service.
func NewAccountService(accountRepo portsrepo.AccountRepositoryWithTx, txnRepo portsrepo.TransactionRepositoryWithTx) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
	}
}

// Ensure accountService implements the portssvc.AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount opens a new deposit account for the user.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	accountNumber, err := utils.GenerateAccountNumber()
	if err != nil {
		logger.Error("Failed to generate account number", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to generate account number: %w", err)
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:        uuid.NewString(),
		OwnerID:          userID,
		Name:             req.Name,
		AccountType:      req.AccountType,
		AccountNumber:    accountNumber,
		AvailableBalance: decimal.Zero,
		Status:           domain.AccountOpen,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		logger.Error("Failed to save account", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID), slog.String("account_type", string(account.AccountType)))
	return &account, nil
}

// CloseAccount closes an account with a zero balance.
func (s *accountService) CloseAccount(ctx context.Context, accountID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.GetAccountByID(ctx, accountID, userID)
	if err != nil {
		return err
	}
	if !account.AvailableBalance.IsZero() {
		return fmt.Errorf("%w: account %s still holds %s", apperrors.ErrConflict, accountID, account.AvailableBalance)
	}

	if err := s.accountRepo.CloseAccount(ctx, accountID, userID, time.Now().UTC()); err != nil {
		return err
	}
	logger.Info("Account closed", slog.String("account_id", accountID))
	return nil
}

// GetAccountByID retrieves a specific account, enforcing ownership.
func (s *accountService) GetAccountByID(ctx context.Context, accountID string, userID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.OwnerID != userID {
		// Do not reveal that the account exists.
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("account %s not found", accountID))
	}
	return account, nil
}

// ListAccounts retrieves all accounts owned by the user.
func (s *accountService) ListAccounts(ctx context.Context, userID string) ([]domain.Account, error) {
	return s.accountRepo.ListAccountsByOwner(ctx, userID)
}

// ListTransactions retrieves a page of an account's ledger history, newest first.
func (s *accountService) ListTransactions(ctx context.Context, accountID string, userID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if _, err := s.GetAccountByID(ctx, accountID, userID); err != nil {
		return nil, nil, err
	}

	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return s.txnRepo.ListTransactionsByAccountID(ctx, accountID, limit, nextToken)
}
