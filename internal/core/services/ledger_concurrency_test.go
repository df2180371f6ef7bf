package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/sekrobank/sekro_bank_api/internal/apperrors"
	"github.com/sekrobank/sekro_bank_api/internal/core/domain"
	"github.com/sekrobank/sekro_bank_api/internal/core/services"
	"github.com/sekrobank/sekro_bank_api/internal/dto"
)

// serialTx is the transaction handle handed out by serialAccountRepo. It
// remembers whether it already released the row lock so the deferred rollback
// after a commit stays a no-op, as it would against a real database.
type serialTx struct {
	pgx.Tx
	mu   sync.Mutex
	done bool
}

// serialAccountRepo is a stateful in-memory account store whose
// FindAccountsByIDsForUpdate blocks until the previous transaction commits or
// rolls back, reproducing the row-lock serialization the SQL FOR UPDATE
// provides.
type serialAccountRepo struct {
	MockAccountRepository
	row sync.Mutex

	mu      sync.Mutex
	account domain.Account
	balance decimal.Decimal
}

func newSerialAccountRepo(account domain.Account) *serialAccountRepo {
	return &serialAccountRepo{account: account, balance: account.AvailableBalance}
}

func (r *serialAccountRepo) Begin(ctx context.Context) (pgx.Tx, error) {
	return &serialTx{}, nil
}

func (r *serialAccountRepo) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	r.row.Lock()

	r.mu.Lock()
	snapshot := r.account
	snapshot.AvailableBalance = r.balance
	r.mu.Unlock()

	return map[string]domain.Account{snapshot.AccountID: snapshot}, nil
}

func (r *serialAccountRepo) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for accountID, delta := range balanceChanges {
		if accountID == r.account.AccountID {
			r.balance = r.balance.Add(delta)
		}
	}
	return nil
}

func (r *serialAccountRepo) Commit(ctx context.Context, tx pgx.Tx) error {
	r.release(tx)
	return nil
}

func (r *serialAccountRepo) Rollback(ctx context.Context, tx pgx.Tx) error {
	r.release(tx)
	return nil
}

func (r *serialAccountRepo) release(tx pgx.Tx) {
	st := tx.(*serialTx)
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.done {
		return
	}
	st.done = true
	r.row.Unlock()
}

// recordingTxnRepo accepts every posting and keeps them for inspection.
type recordingTxnRepo struct {
	MockTransactionRepository

	mu    sync.Mutex
	saved []domain.Transaction
}

func (r *recordingTxnRepo) SaveTransactionsInTx(ctx context.Context, tx pgx.Tx, transactions []domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, transactions...)
	return nil
}

func TestWithdraw_ConcurrentWithdrawalsSerialize(t *testing.T) {
	userID := uuid.NewString()
	account := domain.Account{
		AccountID:        uuid.NewString(),
		OwnerID:          userID,
		Name:             "Primary Checking",
		AccountType:      domain.Checking,
		AccountNumber:    "1100440055",
		AvailableBalance: decimal.NewFromInt(100),
		Status:           domain.AccountOpen,
	}

	accountRepo := newSerialAccountRepo(account)
	txnRepo := &recordingTxnRepo{}
	service := services.NewAccountService(accountRepo, txnRepo)

	ctx := context.Background()
	results := make([]error, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := service.Withdraw(ctx, account.AccountID, dto.WithdrawRequest{
				Amount: decimal.NewFromInt(60),
			}, userID, "")
			results[i] = err
		}(i)
	}
	wg.Wait()

	var failures int
	for _, err := range results {
		if err != nil {
			require.ErrorIs(t, err, apperrors.ErrInsufficientFunds)
			failures++
		}
	}
	require.Equal(t, 1, failures, "exactly one of the two withdrawals must fail")

	require.True(t, accountRepo.balance.Equal(decimal.NewFromInt(40)),
		"final balance should reflect a single posted withdrawal, got %s", accountRepo.balance)
	require.Len(t, txnRepo.saved, 1)
	require.Equal(t, domain.TypeWithdraw, txnRepo.saved[0].TransactionType)
}
