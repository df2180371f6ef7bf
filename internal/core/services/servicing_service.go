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
	portsrepo "github.com/sekrobank/sekro_bank_api/internal/core/ports/repositories"
	portssvc "github.com/sekrobank/sekro_bank_api/internal/core/ports/services"
	"github.com/sekrobank/sekro_bank_api/internal/dto"
	"github.com/sekrobank/sekro_bank_api/internal/middleware"
)

var (
	ErrLoanNotActive = errors.New("loan is not active")
	ErrOverpayment   = errors.New("payment exceeds outstanding balance")
)

// servicingService covers funded loan reads, payments and autopay.
type servicingService struct {
	loanRepo    portsrepo.LoanRepositoryWithTx
	accountRepo portsrepo.AccountRepositoryWithTx
	txnRepo     portsrepo.TransactionRepositoryWithTx
	autopayRepo portsrepo.AutopayRepositoryFacade
}

// NewServicingService creates a new servicing service.
func NewServicingService(
	loanRepo portsrepo.LoanRepositoryWithTx,
	accountRepo portsrepo.AccountRepositoryWithTx,
	txnRepo portsrepo.TransactionRepositoryWithTx,
	autopayRepo portsrepo.AutopayRepositoryFacade,
) portssvc.ServicingSvcFacade {
	return &servicingService{
		loanRepo:    loanRepo,
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		autopayRepo: autopayRepo,
	}
}

// Ensure servicingService implements the portssvc.ServicingSvcFacade interface
var _ portssvc.ServicingSvcFacade = (*servicingService)(nil)

// GetLoan retrieves a loan, enforcing ownership.
func (s *servicingService) GetLoan(ctx context.Context, loanID string, userID string) (*domain.LoanAccount, error) {
	loan, err := s.loanRepo.FindLoanByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.UserID != userID {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("loan %s not found", loanID))
	}
	return loan, nil
}

// ListLoans retrieves the user's loans, newest first.
func (s *servicingService) ListLoans(ctx context.Context, userID string) ([]domain.LoanAccount, error) {
	return s.loanRepo.ListLoansByUser(ctx, userID)
}

// ListLoanTransactions retrieves a loan's payment history, newest first.
func (s *servicingService) ListLoanTransactions(ctx context.Context, loanID string, userID string) ([]domain.LoanTransaction, error) {
	if _, err := s.GetLoan(ctx, loanID, userID); err != nil {
		return nil, err
	}
	return s.loanRepo.ListLoanTransactions(ctx, loanID)
}

// MakePayment debits the payment account and reduces the outstanding balance
// atomically. Paying the balance exactly closes the loan.
func (s *servicingService) MakePayment(ctx context.Context, loanID string, req dto.MakePaymentRequest, userID string, initiatedBy domain.LoanInitiator, idempotencyKey string) (*domain.LoanTransaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.PaymentAmount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: payment amount must be positive", apperrors.ErrValidation)
	}

	// A replayed key returns the loan transaction recorded for the original
	// ledger posting.
	if idempotencyKey != "" {
		if existing, err := s.txnRepo.FindTransactionByIdempotencyKey(ctx, idempotencyKey); err == nil {
			return s.findLoanTxnByPosting(ctx, loanID, existing.TransactionID)
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
	}

	now := time.Now().UTC()

	tx, err := s.loanRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.loanRepo.Rollback(ctx, tx)

	loan, err := s.loanRepo.FindLoanByIDForUpdate(ctx, tx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.UserID != userID {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("loan %s not found", loanID))
	}
	if loan.Status != domain.LoanActive {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrConflict, ErrLoanNotActive)
	}
	if req.PaymentAmount.GreaterThan(loan.OutstandingBalance) {
		return nil, fmt.Errorf("%w: %s (outstanding %s)", apperrors.ErrValidation, ErrOverpayment, loan.OutstandingBalance)
	}

	accounts, err := s.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, []string{req.PaymentAccountID})
	if err != nil {
		return nil, err
	}
	paymentAccount := accounts[req.PaymentAccountID]
	if paymentAccount.OwnerID != userID {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("account %s not found", req.PaymentAccountID))
	}
	if !paymentAccount.IsOpen() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrConflict, ErrAccountClosed)
	}
	if paymentAccount.AvailableBalance.LessThan(req.PaymentAmount) {
		return nil, fmt.Errorf("%w: account %s balance %s, requested %s", apperrors.ErrInsufficientFunds, req.PaymentAccountID, paymentAccount.AvailableBalance, req.PaymentAmount)
	}

	posting := domain.Transaction{
		TransactionID:   uuid.NewString(),
		AccountID:       req.PaymentAccountID,
		TransactionType: domain.TypeLoanPayment,
		Amount:          req.PaymentAmount,
		Direction:       domain.Debit,
		Status:          domain.TxnPosted,
		Description:     fmt.Sprintf("Loan payment (%s)", initiatedBy),
		CreatedAt:       now,
		CreatedBy:       userID,
		PostedAt:        &now,
	}
	if idempotencyKey != "" {
		posting.IdempotencyKey = &idempotencyKey
	}
	if err := s.txnRepo.SaveTransactionsInTx(ctx, tx, []domain.Transaction{posting}); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) && idempotencyKey != "" {
			s.loanRepo.Rollback(ctx, tx)
			original, ferr := s.txnRepo.FindTransactionByIdempotencyKey(ctx, idempotencyKey)
			if ferr != nil {
				return nil, ferr
			}
			return s.findLoanTxnByPosting(ctx, loanID, original.TransactionID)
		}
		return nil, err
	}

	changes := map[string]decimal.Decimal{req.PaymentAccountID: req.PaymentAmount.Neg()}
	if err := s.accountRepo.UpdateAccountBalancesInTx(ctx, tx, changes, userID, now); err != nil {
		return nil, err
	}

	newOutstanding := loan.OutstandingBalance.Sub(req.PaymentAmount)
	status := domain.LoanActive
	var closedAt *time.Time
	if newOutstanding.IsZero() {
		status = domain.LoanClosed
		closedAt = &now
	}
	if err := s.loanRepo.UpdateLoanBalanceInTx(ctx, tx, loanID, newOutstanding, status, closedAt); err != nil {
		return nil, err
	}

	loanTxn := domain.LoanTransaction{
		ID:                   uuid.NewString(),
		LoanID:               loanID,
		UserID:               userID,
		TransactionType:      domain.LoanTxnPayment,
		Amount:               req.PaymentAmount,
		PaymentAccountID:     &req.PaymentAccountID,
		AccountTransactionID: &posting.TransactionID,
		Status:               domain.TxnPosted,
		InitiatedBy:          initiatedBy,
		Description:          "Loan payment",
		CreatedAt:            now,
		PostedAt:             &now,
	}
	if err := s.loanRepo.SaveLoanTransactionInTx(ctx, tx, loanTxn); err != nil {
		return nil, err
	}

	if err := s.loanRepo.Commit(ctx, tx); err != nil {
		logger.Error("Failed to commit loan payment", slog.String("loan_id", loanID), slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Loan payment posted",
		slog.String("loan_id", loanID),
		slog.String("amount", req.PaymentAmount.String()),
		slog.String("initiated_by", string(initiatedBy)),
		slog.String("loan_status", string(status)),
	)
	return &loanTxn, nil
}

// findLoanTxnByPosting locates the loan transaction recorded for a ledger posting.
func (s *servicingService) findLoanTxnByPosting(ctx context.Context, loanID string, transactionID string) (*domain.LoanTransaction, error) {
	loanTxns, err := s.loanRepo.ListLoanTransactions(ctx, loanID)
	if err != nil {
		return nil, err
	}
	for i := range loanTxns {
		if loanTxns[i].AccountTransactionID != nil && *loanTxns[i].AccountTransactionID == transactionID {
			return &loanTxns[i], nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("loan transaction for posting %s not found", transactionID))
}

// ConfigureAutopay creates or replaces the loan's autopay schedule.
func (s *servicingService) ConfigureAutopay(ctx context.Context, loanID string, req dto.ConfigureAutopayRequest, userID string) (*domain.AutopaySchedule, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.PaymentAmount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: payment amount must be positive", apperrors.ErrValidation)
	}
	if req.DayOfMonth < 1 || req.DayOfMonth > 28 {
		return nil, fmt.Errorf("%w: day of month must be between 1 and 28", apperrors.ErrValidation)
	}

	loan, err := s.GetLoan(ctx, loanID, userID)
	if err != nil {
		return nil, err
	}
	if loan.Status != domain.LoanActive {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrConflict, ErrLoanNotActive)
	}

	paymentAccount, err := s.accountRepo.FindAccountByID(ctx, req.PaymentAccountID)
	if err != nil {
		return nil, err
	}
	if paymentAccount.OwnerID != userID {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("account %s not found", req.PaymentAccountID))
	}
	if !paymentAccount.IsOpen() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrConflict, ErrAccountClosed)
	}

	now := time.Now().UTC()
	schedule := domain.AutopaySchedule{
		LoanID:           loanID,
		PaymentAccountID: req.PaymentAccountID,
		PaymentAmount:    req.PaymentAmount,
		DayOfMonth:       req.DayOfMonth,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.autopayRepo.UpsertSchedule(ctx, schedule); err != nil {
		return nil, err
	}

	logger.Info("Autopay configured", slog.String("loan_id", loanID), slog.Int("day_of_month", req.DayOfMonth))
	return s.autopayRepo.FindScheduleByLoanID(ctx, loanID)
}

// GetAutopay retrieves the loan's autopay schedule, if configured.
func (s *servicingService) GetAutopay(ctx context.Context, loanID string, userID string) (*domain.AutopaySchedule, error) {
	if _, err := s.GetLoan(ctx, loanID, userID); err != nil {
		return nil, err
	}
	return s.autopayRepo.FindScheduleByLoanID(ctx, loanID)
}

// SetAutopayPaused pauses or resumes the schedule.
func (s *servicingService) SetAutopayPaused(ctx context.Context, loanID string, userID string, paused bool) (*domain.AutopaySchedule, error) {
	if _, err := s.GetAutopay(ctx, loanID, userID); err != nil {
		return nil, err
	}
	if err := s.autopayRepo.SetPaused(ctx, loanID, paused, userID, time.Now().UTC()); err != nil {
		return nil, err
	}
	return s.autopayRepo.FindScheduleByLoanID(ctx, loanID)
}

// DeleteAutopay removes the schedule.
func (s *servicingService) DeleteAutopay(ctx context.Context, loanID string, userID string) error {
	if _, err := s.GetAutopay(ctx, loanID, userID); err != nil {
		return err
	}
	return s.autopayRepo.DeleteSchedule(ctx, loanID)
}

// RunDueAutopays executes every schedule due at the given time. A CAS on the
// schedule's last run time keeps concurrent runners to one attempt per period.
func (s *servicingService) RunDueAutopays(ctx context.Context, now time.Time) (int, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	schedules, err := s.autopayRepo.ListActiveSchedules(ctx)
	if err != nil {
		return 0, err
	}

	attempted := 0
	for _, schedule := range schedules {
		if !schedule.DueAt(now) {
			continue
		}

		if err := s.autopayRepo.MarkRun(ctx, schedule.LoanID, now, schedule.LastRunAt); err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				// Another runner took this period.
				continue
			}
			logger.Error("Failed to mark autopay run", slog.String("loan_id", schedule.LoanID), slog.String("error", err.Error()))
			continue
		}
		attempted++

		if err := s.runAutopayPayment(ctx, schedule, now); err != nil {
			logger.Warn("Autopay payment failed", slog.String("loan_id", schedule.LoanID), slog.String("error", err.Error()))
		}
	}
	return attempted, nil
}

// runAutopayPayment executes one schedule's payment for the current period
// and records a FAILED loan transaction when the payment cannot post.
func (s *servicingService) runAutopayPayment(ctx context.Context, schedule domain.AutopaySchedule, now time.Time) error {
	loan, err := s.loanRepo.FindLoanByID(ctx, schedule.LoanID)
	if err != nil {
		return err
	}
	if loan.Status != domain.LoanActive {
		return nil
	}

	// Never overpay: the final installment is clamped to the balance.
	amount := schedule.PaymentAmount
	if amount.GreaterThan(loan.OutstandingBalance) {
		amount = loan.OutstandingBalance
	}

	// One key per loan per period makes retried runs harmless.
	idempotencyKey := fmt.Sprintf("autopay-%s-%s", schedule.LoanID, now.UTC().Format("2006-01"))

	_, err = s.MakePayment(ctx, schedule.LoanID, dto.MakePaymentRequest{
		PaymentAccountID: schedule.PaymentAccountID,
		PaymentAmount:    amount,
	}, loan.UserID, domain.InitiatedByAutopay, idempotencyKey)
	if err == nil {
		return nil
	}

	failed := domain.LoanTransaction{
		ID:               uuid.NewString(),
		LoanID:           schedule.LoanID,
		UserID:           loan.UserID,
		TransactionType:  domain.LoanTxnPayment,
		Amount:           amount,
		PaymentAccountID: &schedule.PaymentAccountID,
		Status:           domain.TxnFailed,
		InitiatedBy:      domain.InitiatedByAutopay,
		Description:      fmt.Sprintf("Autopay failed: %s", err.Error()),
		CreatedAt:        now.UTC(),
	}
	if saveErr := s.loanRepo.SaveLoanTransaction(ctx, failed); saveErr != nil {
		return errors.Join(err, saveErr)
	}
	return err
}
