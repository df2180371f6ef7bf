package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sekrobank/sekro_bank_api/internal/apperrors"
	"github.com/sekrobank/sekro_bank_api/internal/core/domain"
	"github.com/sekrobank/sekro_bank_api/internal/dto"
	"github.com/sekrobank/sekro_bank_api/internal/middleware"
)

var (
	ErrAccountClosed     = errors.New("account is closed")
	ErrSameAccount       = errors.New("source and destination accounts must differ")
	ErrNonPositiveAmount = errors.New("amount must be positive")
)

// Ledger operations of accountService. Every mutating operation records its
// idempotency key on the posting row; a unique index makes replays observable
// as duplicates even under concurrent submission.

// checkIdempotencyReplay returns the previously recorded transaction for the
// key, if any. Callers return it as-is without moving money again.
func (s *accountService) checkIdempotencyReplay(ctx context.Context, idempotencyKey string) (*domain.Transaction, error) {
	if idempotencyKey == "" {
		return nil, nil
	}
	existing, err := s.txnRepo.FindTransactionByIdempotencyKey(ctx, idempotencyKey)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return existing, nil
}

func validateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrNonPositiveAmount)
	}
	return nil
}

// Deposit credits an account.
func (s *accountService) Deposit(ctx context.Context, accountID string, req dto.DepositRequest, userID string, idempotencyKey string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}
	if replay, err := s.checkIdempotencyReplay(ctx, idempotencyKey); err != nil || replay != nil {
		return replay, err
	}

	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Deposit (%s)", req.DepositType)
	}

	txn, err := s.postSingle(ctx, accountID, userID, domain.Transaction{
		TransactionType: domain.TypeDeposit,
		Amount:          req.Amount,
		Direction:       domain.Credit,
		Description:     description,
	}, idempotencyKey)
	if err != nil {
		return nil, err
	}

	logger.Info("Deposit posted", slog.String("account_id", accountID), slog.String("transaction_id", txn.TransactionID))
	return txn, nil
}

// Withdraw debits an account, failing rather than overdrawing.
func (s *accountService) Withdraw(ctx context.Context, accountID string, req dto.WithdrawRequest, userID string, idempotencyKey string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}
	if replay, err := s.checkIdempotencyReplay(ctx, idempotencyKey); err != nil || replay != nil {
		return replay, err
	}

	description := req.Description
	if description == "" {
		description = "Withdrawal"
	}

	txn, err := s.postSingle(ctx, accountID, userID, domain.Transaction{
		TransactionType: domain.TypeWithdraw,
		Amount:          req.Amount,
		Direction:       domain.Debit,
		Description:     description,
	}, idempotencyKey)
	if err != nil {
		return nil, err
	}

	logger.Info("Withdrawal posted", slog.String("account_id", accountID), slog.String("transaction_id", txn.TransactionID))
	return txn, nil
}

// postSingle locks one account, validates it and applies a single POSTED
// credit or debit atomically.
func (s *accountService) postSingle(ctx context.Context, accountID string, userID string, template domain.Transaction, idempotencyKey string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now().UTC()

	tx, err := s.accountRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.accountRepo.Rollback(ctx, tx)

	accounts, err := s.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, []string{accountID})
	if err != nil {
		return nil, err
	}
	account := accounts[accountID]
	if account.OwnerID != userID {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("account %s not found", accountID))
	}
	if !account.IsOpen() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrConflict, ErrAccountClosed)
	}

	txn := template
	txn.TransactionID = uuid.NewString()
	txn.AccountID = accountID
	txn.Status = domain.TxnPosted
	txn.CreatedAt = now
	txn.CreatedBy = userID
	txn.PostedAt = &now
	if idempotencyKey != "" {
		txn.IdempotencyKey = &idempotencyKey
	}

	delta := txn.SignedAmount()
	if account.AvailableBalance.Add(delta).IsNegative() {
		return nil, fmt.Errorf("%w: account %s balance %s, requested %s", apperrors.ErrInsufficientFunds, accountID, account.AvailableBalance, txn.Amount)
	}

	if err := s.txnRepo.SaveTransactionsInTx(ctx, tx, []domain.Transaction{txn}); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) && idempotencyKey != "" {
			// Lost a race with a replay of the same key; surface the original.
			s.accountRepo.Rollback(ctx, tx)
			return s.txnRepo.FindTransactionByIdempotencyKey(ctx, idempotencyKey)
		}
		return nil, err
	}

	changes := map[string]decimal.Decimal{accountID: delta}
	if err := s.accountRepo.UpdateAccountBalancesInTx(ctx, tx, changes, userID, now); err != nil {
		return nil, err
	}

	if err := s.accountRepo.Commit(ctx, tx); err != nil {
		logger.Error("Failed to commit posting", slog.String("error", err.Error()))
		return nil, err
	}
	return &txn, nil
}

// InternalTransfer atomically debits one account and credits another.
func (s *accountService) InternalTransfer(ctx context.Context, req dto.InternalTransferRequest, userID string, idempotencyKey string) ([]domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}
	if req.FromAccountID == req.ToAccountID {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrSameAccount)
	}
	if replay, err := s.checkIdempotencyReplay(ctx, idempotencyKey); err != nil {
		return nil, err
	} else if replay != nil && replay.TransferGroupID != nil {
		return s.txnRepo.FindTransactionsByTransferGroup(ctx, *replay.TransferGroupID)
	} else if replay != nil {
		return []domain.Transaction{*replay}, nil
	}

	now := time.Now().UTC()
	transferGroupID := uuid.NewString()

	tx, err := s.accountRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.accountRepo.Rollback(ctx, tx)

	accounts, err := s.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, []string{req.FromAccountID, req.ToAccountID})
	if err != nil {
		return nil, err
	}
	from := accounts[req.FromAccountID]
	to := accounts[req.ToAccountID]

	// Only the debited side requires ownership; crediting another customer's
	// open account is how money moves between customers.
	if from.OwnerID != userID {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("account %s not found", req.FromAccountID))
	}
	if !from.IsOpen() || !to.IsOpen() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrConflict, ErrAccountClosed)
	}
	if from.AvailableBalance.LessThan(req.Amount) {
		return nil, fmt.Errorf("%w: account %s balance %s, requested %s", apperrors.ErrInsufficientFunds, req.FromAccountID, from.AvailableBalance, req.Amount)
	}

	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Transfer to account ending %s", to.Last4())
	}

	debit := domain.Transaction{
		TransactionID:   uuid.NewString(),
		AccountID:       req.FromAccountID,
		TransactionType: domain.TypeTransfer,
		Amount:          req.Amount,
		Direction:       domain.Debit,
		Status:          domain.TxnPosted,
		Description:     description,
		TransferGroupID: &transferGroupID,
		CreatedAt:       now,
		CreatedBy:       userID,
		PostedAt:        &now,
	}
	if idempotencyKey != "" {
		debit.IdempotencyKey = &idempotencyKey
	}
	credit := domain.Transaction{
		TransactionID:   uuid.NewString(),
		AccountID:       req.ToAccountID,
		TransactionType: domain.TypeTransfer,
		Amount:          req.Amount,
		Direction:       domain.Credit,
		Status:          domain.TxnPosted,
		Description:     fmt.Sprintf("Transfer from account ending %s", from.Last4()),
		TransferGroupID: &transferGroupID,
		CreatedAt:       now,
		CreatedBy:       userID,
		PostedAt:        &now,
	}

	if err := s.txnRepo.SaveTransactionsInTx(ctx, tx, []domain.Transaction{debit, credit}); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) && idempotencyKey != "" {
			s.accountRepo.Rollback(ctx, tx)
			original, ferr := s.txnRepo.FindTransactionByIdempotencyKey(ctx, idempotencyKey)
			if ferr != nil {
				return nil, ferr
			}
			// The key may have been consumed by a single-leg operation.
			if original.TransferGroupID == nil {
				return []domain.Transaction{*original}, nil
			}
			return s.txnRepo.FindTransactionsByTransferGroup(ctx, *original.TransferGroupID)
		}
		return nil, err
	}

	changes := map[string]decimal.Decimal{
		req.FromAccountID: req.Amount.Neg(),
		req.ToAccountID:   req.Amount,
	}
	if err := s.accountRepo.UpdateAccountBalancesInTx(ctx, tx, changes, userID, now); err != nil {
		return nil, err
	}

	if err := s.accountRepo.Commit(ctx, tx); err != nil {
		logger.Error("Failed to commit transfer", slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Internal transfer posted",
		slog.String("transfer_group_id", transferGroupID),
		slog.String("from_account_id", req.FromAccountID),
		slog.String("to_account_id", req.ToAccountID),
	)
	return []domain.Transaction{debit, credit}, nil
}

// ExternalTransfer debits the source account immediately and records a single
// PENDING posting carrying the recipient metadata.
func (s *accountService) ExternalTransfer(ctx context.Context, req dto.ExternalTransferRequest, userID string, idempotencyKey string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}
	if replay, err := s.checkIdempotencyReplay(ctx, idempotencyKey); err != nil || replay != nil {
		return replay, err
	}

	now := time.Now().UTC()

	tx, err := s.accountRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.accountRepo.Rollback(ctx, tx)

	accounts, err := s.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, []string{req.FromAccountID})
	if err != nil {
		return nil, err
	}
	from := accounts[req.FromAccountID]
	if from.OwnerID != userID {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("account %s not found", req.FromAccountID))
	}
	if !from.IsOpen() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrConflict, ErrAccountClosed)
	}
	if from.AvailableBalance.LessThan(req.Amount) {
		return nil, fmt.Errorf("%w: account %s balance %s, requested %s", apperrors.ErrInsufficientFunds, req.FromAccountID, from.AvailableBalance, req.Amount)
	}

	last4 := req.RecipientAccountNumber
	if len(last4) > 4 {
		last4 = last4[len(last4)-4:]
	}
	description := req.Description
	if description == "" {
		description = fmt.Sprintf("External transfer to account ending %s", last4)
	}

	txn := domain.Transaction{
		TransactionID:          uuid.NewString(),
		AccountID:              req.FromAccountID,
		TransactionType:        domain.TypeExternalTransfer,
		Amount:                 req.Amount,
		Direction:              domain.Debit,
		Status:                 domain.TxnPending,
		Description:            description,
		RecipientRoutingNumber: req.RecipientRoutingNumber,
		RecipientAccountLast4:  last4,
		CreatedAt:              now,
		CreatedBy:              userID,
	}
	if idempotencyKey != "" {
		txn.IdempotencyKey = &idempotencyKey
	}

	if err := s.txnRepo.SaveTransactionsInTx(ctx, tx, []domain.Transaction{txn}); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) && idempotencyKey != "" {
			s.accountRepo.Rollback(ctx, tx)
			return s.txnRepo.FindTransactionByIdempotencyKey(ctx, idempotencyKey)
		}
		return nil, err
	}

	// The hold debits the balance up front; settlement either finalizes it
	// or refunds it.
	changes := map[string]decimal.Decimal{req.FromAccountID: req.Amount.Neg()}
	if err := s.accountRepo.UpdateAccountBalancesInTx(ctx, tx, changes, userID, now); err != nil {
		return nil, err
	}

	if err := s.accountRepo.Commit(ctx, tx); err != nil {
		logger.Error("Failed to commit external transfer", slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("External transfer initiated", slog.String("transaction_id", txn.TransactionID), slog.String("account_id", req.FromAccountID))
	return &txn, nil
}

// SettleExternalTransfer resolves a PENDING external transfer. A FAILED
// outcome posts a compensating credit under the same transfer group.
func (s *accountService) SettleExternalTransfer(ctx context.Context, transactionID string, outcome domain.TransactionStatus) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if outcome != domain.TxnPosted && outcome != domain.TxnFailed {
		return nil, fmt.Errorf("%w: settlement outcome must be POSTED or FAILED", apperrors.ErrValidation)
	}

	now := time.Now().UTC()

	tx, err := s.txnRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.txnRepo.Rollback(ctx, tx)

	txn, err := s.txnRepo.FindTransactionByIDForUpdate(ctx, tx, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.TransactionType != domain.TypeExternalTransfer {
		return nil, fmt.Errorf("%w: transaction %s is not an external transfer", apperrors.ErrValidation, transactionID)
	}
	if txn.Status.IsTerminal() {
		// Settling twice is a no-op.
		return txn, nil
	}

	if err := s.txnRepo.UpdateTransactionStatusInTx(ctx, tx, transactionID, outcome, now); err != nil {
		return nil, err
	}
	txn.Status = outcome
	txn.PostedAt = &now

	if outcome == domain.TxnFailed {
		// Refund the held amount. The compensating credit shares a transfer
		// group with the original debit so the pair is traceable.
		groupID := txn.TransferGroupID
		if groupID == nil {
			g := uuid.NewString()
			groupID = &g
		}
		refund := domain.Transaction{
			TransactionID:   uuid.NewString(),
			AccountID:       txn.AccountID,
			TransactionType: domain.TypeExternalTransfer,
			Amount:          txn.Amount,
			Direction:       domain.Credit,
			Status:          domain.TxnPosted,
			Description:     fmt.Sprintf("Refund: %s", txn.Description),
			TransferGroupID: groupID,
			CreatedAt:       now,
			CreatedBy:       txn.CreatedBy,
			PostedAt:        &now,
		}
		if err := s.txnRepo.SaveTransactionsInTx(ctx, tx, []domain.Transaction{refund}); err != nil {
			return nil, err
		}
		changes := map[string]decimal.Decimal{txn.AccountID: txn.Amount}
		if err := s.accountRepo.UpdateAccountBalancesInTx(ctx, tx, changes, txn.CreatedBy, now); err != nil {
			return nil, err
		}
	}

	if err := s.txnRepo.Commit(ctx, tx); err != nil {
		logger.Error("Failed to commit settlement", slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("External transfer settled", slog.String("transaction_id", transactionID), slog.String("outcome", string(outcome)))
	return txn, nil
}
