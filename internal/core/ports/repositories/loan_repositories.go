package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sekrobank/sekro_bank_api/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LoanApplicationReader defines read operations for loan applications
type LoanApplicationReader interface {
	// FindApplicationByID retrieves a specific application by its unique identifier.
	FindApplicationByID(ctx context.Context, applicationID string) (*domain.LoanApplication, error)

	// FindActiveApplicationByUser retrieves the user's application that is not yet in a terminal state, if any.
	FindActiveApplicationByUser(ctx context.Context, userID string) (*domain.LoanApplication, error)

	// ListApplicationsByUser retrieves all applications submitted by a user, newest first.
	ListApplicationsByUser(ctx context.Context, userID string) ([]domain.LoanApplication, error)
}

// LoanApplicationWriter defines write operations for loan applications
type LoanApplicationWriter interface {
	// SaveApplicationInTx persists a new application within a caller-managed transaction.
	SaveApplicationInTx(ctx context.Context, tx pgx.Tx, application domain.LoanApplication) error

	// TransitionApplicationStatusInTx moves an application from an expected status to a new one
	// within a caller-managed transaction.
	// It returns apperrors.ErrConflict when the application is no longer in the expected status.
	TransitionApplicationStatusInTx(ctx context.Context, tx pgx.Tx, applicationID string, from, to domain.LoanApplicationStatus, reason string, now time.Time) error

	// SetSelectedOfferInTx records the accepted offer on the application within a transaction.
	SetSelectedOfferInTx(ctx context.Context, tx pgx.Tx, applicationID string, offerID string, now time.Time) error

	// SetFundedInTx stamps the application funded within a transaction.
	SetFundedInTx(ctx context.Context, tx pgx.Tx, applicationID string, now time.Time) error
}

// LoanOfferReader defines read operations for loan offers
type LoanOfferReader interface {
	// FindOfferByID retrieves a specific offer row by its unique identifier.
	FindOfferByID(ctx context.Context, id string) (*domain.LoanOffer, error)

	// FindOffersByApplicationID retrieves all offers generated for an application.
	FindOffersByApplicationID(ctx context.Context, applicationID string) ([]domain.LoanOffer, error)
}

// LoanOfferWriter defines write operations for loan offers
type LoanOfferWriter interface {
	// SaveOffersInTx persists the generated offer set within a transaction.
	SaveOffersInTx(ctx context.Context, tx pgx.Tx, offers []domain.LoanOffer) error

	// SelectOfferInTx marks one offer selected and voids its siblings within a transaction.
	SelectOfferInTx(ctx context.Context, tx pgx.Tx, applicationID string, offerRowID string) error

	// VoidOffersInTx voids every offer of an application within a transaction.
	VoidOffersInTx(ctx context.Context, tx pgx.Tx, applicationID string) error
}

// LoanAccountReader defines read operations for funded loans
type LoanAccountReader interface {
	// FindLoanByID retrieves a specific loan by its unique identifier.
	FindLoanByID(ctx context.Context, loanID string) (*domain.LoanAccount, error)

	// ListLoansByUser retrieves all loans belonging to a user, newest first.
	ListLoansByUser(ctx context.Context, userID string) ([]domain.LoanAccount, error)
}

// LoanAccountWriter defines write operations for funded loans
type LoanAccountWriter interface {
	// SaveLoanAccountInTx persists a newly funded loan within a transaction.
	SaveLoanAccountInTx(ctx context.Context, tx pgx.Tx, loan domain.LoanAccount) error

	// FindLoanByIDForUpdate selects a loan and locks it within a transaction.
	FindLoanByIDForUpdate(ctx context.Context, tx pgx.Tx, loanID string) (*domain.LoanAccount, error)

	// UpdateLoanBalanceInTx sets the outstanding balance and status within a transaction.
	UpdateLoanBalanceInTx(ctx context.Context, tx pgx.Tx, loanID string, outstanding decimal.Decimal, status domain.LoanAccountStatus, closedAt *time.Time) error
}

// LoanTransactionReader defines read operations for loan transactions
type LoanTransactionReader interface {
	// ListLoanTransactions retrieves all loan transactions for a loan, newest first.
	ListLoanTransactions(ctx context.Context, loanID string) ([]domain.LoanTransaction, error)
}

// LoanTransactionWriter defines write operations for loan transactions
type LoanTransactionWriter interface {
	// SaveLoanTransaction persists a loan transaction outside of any caller transaction.
	SaveLoanTransaction(ctx context.Context, loanTxn domain.LoanTransaction) error

	// SaveLoanTransactionInTx persists a loan transaction within a transaction.
	SaveLoanTransactionInTx(ctx context.Context, tx pgx.Tx, loanTxn domain.LoanTransaction) error
}

// LoanRepositoryFacade combines all loan-related repository interfaces
// This is a facade for clients that need access to all operations
type LoanRepositoryFacade interface {
	LoanApplicationReader
	LoanApplicationWriter
	LoanOfferReader
	LoanOfferWriter
	LoanAccountReader
	LoanAccountWriter
	LoanTransactionReader
	LoanTransactionWriter
}

// LoanRepositoryWithTx extends LoanRepositoryFacade with transaction capabilities
type LoanRepositoryWithTx interface {
	LoanRepositoryFacade
	TransactionManager
}
