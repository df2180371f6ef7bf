package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/sekrobank/sekro_bank_api/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	transactionRepo := newPgxTransactionRepository(dbPool)
	loanRepo := newPgxLoanRepository(dbPool)
	reviewTaskRepo := newPgxReviewTaskRepository(dbPool)
	autopayRepo := newPgxAutopayRepository(dbPool)
	userRepo := newPgxUserRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo:     accountRepo,
		TransactionRepo: transactionRepo,
		LoanRepo:        loanRepo,
		ReviewTaskRepo:  reviewTaskRepo,
		AutopayRepo:     autopayRepo,
		UserRepo:        userRepo,
	}
}
