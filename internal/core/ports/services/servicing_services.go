package services

import (
	"context"
	"time"

	"github.com/sekrobank/sekro_bank_api/internal/core/domain"
	"github.com/sekrobank/sekro_bank_api/internal/dto"
)

// ServicingSvcFacade covers funded loan reads, payments and autopay.
type ServicingSvcFacade interface {
	// GetLoan retrieves a loan, enforcing ownership for customers.
	GetLoan(ctx context.Context, loanID string, userID string) (*domain.LoanAccount, error)

	// ListLoans retrieves the user's loans, newest first.
	ListLoans(ctx context.Context, userID string) ([]domain.LoanAccount, error)

	// ListLoanTransactions retrieves a loan's payment history, newest first.
	ListLoanTransactions(ctx context.Context, loanID string, userID string) ([]domain.LoanTransaction, error)

	// MakePayment debits the payment account and reduces the outstanding
	// balance atomically. Paying more than the outstanding balance fails
	// with ErrValidation; paying the balance exactly closes the loan.
	MakePayment(ctx context.Context, loanID string, req dto.MakePaymentRequest, userID string, initiatedBy domain.LoanInitiator, idempotencyKey string) (*domain.LoanTransaction, error)

	// ConfigureAutopay creates or replaces the loan's autopay schedule.
	ConfigureAutopay(ctx context.Context, loanID string, req dto.ConfigureAutopayRequest, userID string) (*domain.AutopaySchedule, error)

	// GetAutopay retrieves the loan's autopay schedule, if configured.
	GetAutopay(ctx context.Context, loanID string, userID string) (*domain.AutopaySchedule, error)

	// SetAutopayPaused pauses or resumes the schedule.
	SetAutopayPaused(ctx context.Context, loanID string, userID string, paused bool) (*domain.AutopaySchedule, error)

	// DeleteAutopay removes the schedule.
	DeleteAutopay(ctx context.Context, loanID string, userID string) error

	// RunDueAutopays executes every schedule due at the given time. Failed
	// payments surface as FAILED loan transactions without stopping the run.
	// It returns the number of schedules attempted.
	RunDueAutopays(ctx context.Context, now time.Time) (int, error)
}
