package services_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/sekrobank/sekro_bank_api/internal/core/domain"
	portsrepo "github.com/sekrobank/sekro_bank_api/internal/core/ports/repositories"
)

// --- Mock transaction manager, embedded by every repository mock ---

type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockTxManager) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTxManager) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// expectTx wires the usual Begin/Commit/Rollback happy path: Begin hands out a
// nil pgx.Tx (the mocks never touch it) and both Commit and Rollback succeed.
func expectTx(m *MockTxManager) {
	m.On("Begin", mock.Anything).Return(pgx.Tx(nil), nil).Maybe()
	m.On("Commit", mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("Rollback", mock.Anything, mock.Anything).Return(nil).Maybe()
}

// --- Mock AccountRepository ---

type MockAccountRepository struct {
	MockTxManager
}

var _ portsrepo.AccountRepositoryWithTx = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccountsByOwner(ctx context.Context, ownerID string) ([]domain.Account, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) CloseAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	args := m.Called(ctx, accountID, userID, now)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, tx, balanceChanges, userID, now)
	return args.Error(0)
}

// --- Mock TransactionRepository ---

type MockTransactionRepository struct {
	MockTxManager
}

var _ portsrepo.TransactionRepositoryWithTx = (*MockTransactionRepository)(nil)

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindTransactionByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindTransactionsByTransferGroup(ctx context.Context, transferGroupID string) ([]domain.Transaction, error) {
	args := m.Called(ctx, transferGroupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListTransactionsByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, accountID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Transaction), returnedNextToken, args.Error(2)
}

func (m *MockTransactionRepository) SaveTransactionsInTx(ctx context.Context, tx pgx.Tx, transactions []domain.Transaction) error {
	args := m.Called(ctx, tx, transactions)
	return args.Error(0)
}

func (m *MockTransactionRepository) FindTransactionByIDForUpdate(ctx context.Context, tx pgx.Tx, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, tx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) UpdateTransactionStatusInTx(ctx context.Context, tx pgx.Tx, transactionID string, status domain.TransactionStatus, postedAt time.Time) error {
	args := m.Called(ctx, tx, transactionID, status, postedAt)
	return args.Error(0)
}

// --- Mock LoanRepository ---

type MockLoanRepository struct {
	MockTxManager
}

var _ portsrepo.LoanRepositoryWithTx = (*MockLoanRepository)(nil)

func (m *MockLoanRepository) FindApplicationByID(ctx context.Context, applicationID string) (*domain.LoanApplication, error) {
	args := m.Called(ctx, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanApplication), args.Error(1)
}

func (m *MockLoanRepository) FindActiveApplicationByUser(ctx context.Context, userID string) (*domain.LoanApplication, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanApplication), args.Error(1)
}

func (m *MockLoanRepository) ListApplicationsByUser(ctx context.Context, userID string) ([]domain.LoanApplication, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LoanApplication), args.Error(1)
}

func (m *MockLoanRepository) SaveApplicationInTx(ctx context.Context, tx pgx.Tx, application domain.LoanApplication) error {
	args := m.Called(ctx, tx, application)
	return args.Error(0)
}

func (m *MockLoanRepository) TransitionApplicationStatusInTx(ctx context.Context, tx pgx.Tx, applicationID string, from, to domain.LoanApplicationStatus, reason string, now time.Time) error {
	args := m.Called(ctx, tx, applicationID, from, to, reason, now)
	return args.Error(0)
}

func (m *MockLoanRepository) SetSelectedOfferInTx(ctx context.Context, tx pgx.Tx, applicationID string, offerID string, now time.Time) error {
	args := m.Called(ctx, tx, applicationID, offerID, now)
	return args.Error(0)
}

func (m *MockLoanRepository) SetFundedInTx(ctx context.Context, tx pgx.Tx, applicationID string, now time.Time) error {
	args := m.Called(ctx, tx, applicationID, now)
	return args.Error(0)
}

func (m *MockLoanRepository) FindOfferByID(ctx context.Context, id string) (*domain.LoanOffer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanOffer), args.Error(1)
}

func (m *MockLoanRepository) FindOffersByApplicationID(ctx context.Context, applicationID string) ([]domain.LoanOffer, error) {
	args := m.Called(ctx, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LoanOffer), args.Error(1)
}

func (m *MockLoanRepository) SaveOffersInTx(ctx context.Context, tx pgx.Tx, offers []domain.LoanOffer) error {
	args := m.Called(ctx, tx, offers)
	return args.Error(0)
}

func (m *MockLoanRepository) SelectOfferInTx(ctx context.Context, tx pgx.Tx, applicationID string, offerRowID string) error {
	args := m.Called(ctx, tx, applicationID, offerRowID)
	return args.Error(0)
}

func (m *MockLoanRepository) VoidOffersInTx(ctx context.Context, tx pgx.Tx, applicationID string) error {
	args := m.Called(ctx, tx, applicationID)
	return args.Error(0)
}

func (m *MockLoanRepository) FindLoanByID(ctx context.Context, loanID string) (*domain.LoanAccount, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanAccount), args.Error(1)
}

func (m *MockLoanRepository) ListLoansByUser(ctx context.Context, userID string) ([]domain.LoanAccount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LoanAccount), args.Error(1)
}

func (m *MockLoanRepository) SaveLoanAccountInTx(ctx context.Context, tx pgx.Tx, loan domain.LoanAccount) error {
	args := m.Called(ctx, tx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) FindLoanByIDForUpdate(ctx context.Context, tx pgx.Tx, loanID string) (*domain.LoanAccount, error) {
	args := m.Called(ctx, tx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanAccount), args.Error(1)
}

func (m *MockLoanRepository) UpdateLoanBalanceInTx(ctx context.Context, tx pgx.Tx, loanID string, outstanding decimal.Decimal, status domain.LoanAccountStatus, closedAt *time.Time) error {
	args := m.Called(ctx, tx, loanID, outstanding, status, closedAt)
	return args.Error(0)
}

func (m *MockLoanRepository) ListLoanTransactions(ctx context.Context, loanID string) ([]domain.LoanTransaction, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LoanTransaction), args.Error(1)
}

func (m *MockLoanRepository) SaveLoanTransaction(ctx context.Context, loanTxn domain.LoanTransaction) error {
	args := m.Called(ctx, loanTxn)
	return args.Error(0)
}

func (m *MockLoanRepository) SaveLoanTransactionInTx(ctx context.Context, tx pgx.Tx, loanTxn domain.LoanTransaction) error {
	args := m.Called(ctx, tx, loanTxn)
	return args.Error(0)
}

// --- Mock ReviewTaskRepository ---

type MockReviewTaskRepository struct {
	MockTxManager
}

var _ portsrepo.ReviewTaskRepositoryWithTx = (*MockReviewTaskRepository)(nil)

func (m *MockReviewTaskRepository) FindTaskByID(ctx context.Context, taskID string) (*domain.HumanReviewTask, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HumanReviewTask), args.Error(1)
}

func (m *MockReviewTaskRepository) FindTaskByWorkflowID(ctx context.Context, workflowID string) (*domain.HumanReviewTask, error) {
	args := m.Called(ctx, workflowID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HumanReviewTask), args.Error(1)
}

func (m *MockReviewTaskRepository) ListOpenTasks(ctx context.Context) ([]domain.HumanReviewTask, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HumanReviewTask), args.Error(1)
}

func (m *MockReviewTaskRepository) SaveTaskInTx(ctx context.Context, tx pgx.Tx, task domain.HumanReviewTask) error {
	args := m.Called(ctx, tx, task)
	return args.Error(0)
}

func (m *MockReviewTaskRepository) ClaimTask(ctx context.Context, taskID string, reviewerID string) error {
	args := m.Called(ctx, taskID, reviewerID)
	return args.Error(0)
}

func (m *MockReviewTaskRepository) ReleaseTask(ctx context.Context, taskID string, reviewerID string) error {
	args := m.Called(ctx, taskID, reviewerID)
	return args.Error(0)
}

func (m *MockReviewTaskRepository) CompleteTaskInTx(ctx context.Context, tx pgx.Tx, taskID string, reviewerID string, decision domain.ReviewDecision, notes string, now time.Time) error {
	args := m.Called(ctx, tx, taskID, reviewerID, decision, notes, now)
	return args.Error(0)
}

// --- Mock AutopayRepository ---

type MockAutopayRepository struct {
	mock.Mock
}

var _ portsrepo.AutopayRepositoryFacade = (*MockAutopayRepository)(nil)

func (m *MockAutopayRepository) FindScheduleByLoanID(ctx context.Context, loanID string) (*domain.AutopaySchedule, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AutopaySchedule), args.Error(1)
}

func (m *MockAutopayRepository) ListActiveSchedules(ctx context.Context) ([]domain.AutopaySchedule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AutopaySchedule), args.Error(1)
}

func (m *MockAutopayRepository) UpsertSchedule(ctx context.Context, schedule domain.AutopaySchedule) error {
	args := m.Called(ctx, schedule)
	return args.Error(0)
}

func (m *MockAutopayRepository) SetPaused(ctx context.Context, loanID string, paused bool, userID string, now time.Time) error {
	args := m.Called(ctx, loanID, paused, userID, now)
	return args.Error(0)
}

func (m *MockAutopayRepository) DeleteSchedule(ctx context.Context, loanID string) error {
	args := m.Called(ctx, loanID)
	return args.Error(0)
}

func (m *MockAutopayRepository) MarkRun(ctx context.Context, loanID string, ranAt time.Time, lastRunBefore *time.Time) error {
	args := m.Called(ctx, loanID, ranAt, lastRunBefore)
	return args.Error(0)
}

// --- Mock UserRepository ---

type MockUserRepository struct {
	mock.Mock
}

var _ portsrepo.UserRepositoryFacade = (*MockUserRepository)(nil)

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash *string, expiryTime *time.Time) error {
	args := m.Called(ctx, userID, refreshTokenHash, expiryTime)
	return args.Error(0)
}
