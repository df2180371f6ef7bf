package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/sekrobank/sekro_bank_api/internal/apperrors"
	"github.com/sekrobank/sekro_bank_api/internal/core/domain"
	portssvc "github.com/sekrobank/sekro_bank_api/internal/core/ports/services"
	"github.com/sekrobank/sekro_bank_api/internal/core/services"
	"github.com/sekrobank/sekro_bank_api/internal/dto"
)

type ServicingServiceTestSuite struct {
	suite.Suite
	mockLoanRepo    *MockLoanRepository
	mockAccountRepo *MockAccountRepository
	mockTxnRepo     *MockTransactionRepository
	mockAutopayRepo *MockAutopayRepository
	service         portssvc.ServicingSvcFacade

	ctx    context.Context
	userID string
}

func (suite *ServicingServiceTestSuite) SetupTest() {
	suite.mockLoanRepo = new(MockLoanRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockAutopayRepo = new(MockAutopayRepository)
	suite.service = services.NewServicingService(
		suite.mockLoanRepo,
		suite.mockAccountRepo,
		suite.mockTxnRepo,
		suite.mockAutopayRepo,
	)
	suite.ctx = context.Background()
	suite.userID = uuid.NewString()

	expectTx(&suite.mockLoanRepo.MockTxManager)
}

func (suite *ServicingServiceTestSuite) activeLoan(outstanding int64) *domain.LoanAccount {
	return &domain.LoanAccount{
		LoanID:             uuid.NewString(),
		LoanApplicationID:  uuid.NewString(),
		UserID:             suite.userID,
		PrincipalAmount:    decimal.NewFromInt(10000),
		OutstandingBalance: decimal.NewFromInt(outstanding),
		TermMonths:         24,
		Status:             domain.LoanActive,
	}
}

func (suite *ServicingServiceTestSuite) paymentAccount(balance int64) domain.Account {
	return domain.Account{
		AccountID:        uuid.NewString(),
		OwnerID:          suite.userID,
		AccountType:      domain.Checking,
		AccountNumber:    "110000004321",
		AvailableBalance: decimal.NewFromInt(balance),
		Status:           domain.AccountOpen,
	}
}

func (suite *ServicingServiceTestSuite) TestMakePayment_ReducesOutstandingBalance() {
	loan := suite.activeLoan(1000)
	account := suite.paymentAccount(5000)
	key := uuid.NewString()

	suite.mockTxnRepo.On("FindTransactionByIdempotencyKey", suite.ctx, key).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockLoanRepo.On("FindLoanByIDForUpdate", suite.ctx, mock.Anything, loan.LoanID).Return(loan, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDsForUpdate", suite.ctx, mock.Anything, []string{account.AccountID}).
		Return(map[string]domain.Account{account.AccountID: account}, nil).Once()

	var posted []domain.Transaction
	suite.mockTxnRepo.On("SaveTransactionsInTx", suite.ctx, mock.Anything, mock.AnythingOfType("[]domain.Transaction")).
		Run(func(args mock.Arguments) { posted = args.Get(2).([]domain.Transaction) }).
		Return(nil).Once()
	suite.mockAccountRepo.On("UpdateAccountBalancesInTx", suite.ctx, mock.Anything,
		map[string]decimal.Decimal{account.AccountID: decimal.NewFromInt(-250)}, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	var newOutstanding decimal.Decimal
	var newStatus domain.LoanAccountStatus
	var closedAt *time.Time
	suite.mockLoanRepo.On("UpdateLoanBalanceInTx", suite.ctx, mock.Anything, loan.LoanID,
		mock.AnythingOfType("decimal.Decimal"), mock.AnythingOfType("domain.LoanAccountStatus"), mock.Anything).
		Run(func(args mock.Arguments) {
			newOutstanding = args.Get(3).(decimal.Decimal)
			newStatus = args.Get(4).(domain.LoanAccountStatus)
			closedAt, _ = args.Get(5).(*time.Time)
		}).
		Return(nil).Once()
	suite.mockLoanRepo.On("SaveLoanTransactionInTx", suite.ctx, mock.Anything, mock.AnythingOfType("domain.LoanTransaction")).Return(nil).Once()

	loanTxn, err := suite.service.MakePayment(suite.ctx, loan.LoanID, dto.MakePaymentRequest{
		PaymentAccountID: account.AccountID,
		PaymentAmount:    decimal.NewFromInt(250),
	}, suite.userID, domain.InitiatedByCustomer, key)

	suite.Require().NoError(err)
	suite.Equal(domain.LoanTxnPayment, loanTxn.TransactionType)
	suite.Equal(domain.TxnPosted, loanTxn.Status)
	suite.Equal(domain.InitiatedByCustomer, loanTxn.InitiatedBy)
	suite.Require().NotNil(loanTxn.AccountTransactionID)

	suite.Require().Len(posted, 1)
	suite.Equal(domain.TypeLoanPayment, posted[0].TransactionType)
	suite.Equal(domain.Debit, posted[0].Direction)
	suite.Equal(posted[0].TransactionID, *loanTxn.AccountTransactionID)
	suite.Require().NotNil(posted[0].IdempotencyKey)
	suite.Equal(key, *posted[0].IdempotencyKey)

	suite.True(newOutstanding.Equal(decimal.NewFromInt(750)))
	suite.Equal(domain.LoanActive, newStatus)
	suite.Nil(closedAt)

	suite.mockLoanRepo.AssertExpectations(suite.T())
	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *ServicingServiceTestSuite) TestMakePayment_ExactPayoffClosesLoan() {
	loan := suite.activeLoan(400)
	account := suite.paymentAccount(5000)

	suite.mockLoanRepo.On("FindLoanByIDForUpdate", suite.ctx, mock.Anything, loan.LoanID).Return(loan, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDsForUpdate", suite.ctx, mock.Anything, []string{account.AccountID}).
		Return(map[string]domain.Account{account.AccountID: account}, nil).Once()
	suite.mockTxnRepo.On("SaveTransactionsInTx", suite.ctx, mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockAccountRepo.On("UpdateAccountBalancesInTx", suite.ctx, mock.Anything, mock.Anything, suite.userID, mock.Anything).Return(nil).Once()

	var newStatus domain.LoanAccountStatus
	var closedAt *time.Time
	suite.mockLoanRepo.On("UpdateLoanBalanceInTx", suite.ctx, mock.Anything, loan.LoanID,
		mock.AnythingOfType("decimal.Decimal"), mock.AnythingOfType("domain.LoanAccountStatus"), mock.Anything).
		Run(func(args mock.Arguments) {
			suite.True(args.Get(3).(decimal.Decimal).IsZero())
			newStatus = args.Get(4).(domain.LoanAccountStatus)
			closedAt, _ = args.Get(5).(*time.Time)
		}).
		Return(nil).Once()
	suite.mockLoanRepo.On("SaveLoanTransactionInTx", suite.ctx, mock.Anything, mock.Anything).Return(nil).Once()

	_, err := suite.service.MakePayment(suite.ctx, loan.LoanID, dto.MakePaymentRequest{
		PaymentAccountID: account.AccountID,
		PaymentAmount:    decimal.NewFromInt(400),
	}, suite.userID, domain.InitiatedByCustomer, "")

	suite.Require().NoError(err)
	suite.Equal(domain.LoanClosed, newStatus)
	suite.NotNil(closedAt)
}

func (suite *ServicingServiceTestSuite) TestMakePayment_Overpayment() {
	loan := suite.activeLoan(100)

	suite.mockLoanRepo.On("FindLoanByIDForUpdate", suite.ctx, mock.Anything, loan.LoanID).Return(loan, nil).Once()

	loanTxn, err := suite.service.MakePayment(suite.ctx, loan.LoanID, dto.MakePaymentRequest{
		PaymentAccountID: uuid.NewString(),
		PaymentAmount:    decimal.NewFromInt(500),
	}, suite.userID, domain.InitiatedByCustomer, "")

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(loanTxn)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransactionsInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ServicingServiceTestSuite) TestMakePayment_ClosedLoan() {
	loan := suite.activeLoan(0)
	loan.Status = domain.LoanClosed

	suite.mockLoanRepo.On("FindLoanByIDForUpdate", suite.ctx, mock.Anything, loan.LoanID).Return(loan, nil).Once()

	_, err := suite.service.MakePayment(suite.ctx, loan.LoanID, dto.MakePaymentRequest{
		PaymentAccountID: uuid.NewString(),
		PaymentAmount:    decimal.NewFromInt(50),
	}, suite.userID, domain.InitiatedByCustomer, "")

	suite.Require().ErrorIs(err, apperrors.ErrConflict)
}

func (suite *ServicingServiceTestSuite) TestMakePayment_InsufficientFunds() {
	loan := suite.activeLoan(1000)
	account := suite.paymentAccount(10)

	suite.mockLoanRepo.On("FindLoanByIDForUpdate", suite.ctx, mock.Anything, loan.LoanID).Return(loan, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDsForUpdate", suite.ctx, mock.Anything, []string{account.AccountID}).
		Return(map[string]domain.Account{account.AccountID: account}, nil).Once()

	_, err := suite.service.MakePayment(suite.ctx, loan.LoanID, dto.MakePaymentRequest{
		PaymentAccountID: account.AccountID,
		PaymentAmount:    decimal.NewFromInt(250),
	}, suite.userID, domain.InitiatedByCustomer, "")

	suite.Require().ErrorIs(err, apperrors.ErrInsufficientFunds)
}

func (suite *ServicingServiceTestSuite) TestMakePayment_IdempotentReplay() {
	loan := suite.activeLoan(1000)
	key := uuid.NewString()
	postingID := uuid.NewString()

	original := domain.LoanTransaction{
		ID:                   uuid.NewString(),
		LoanID:               loan.LoanID,
		UserID:               suite.userID,
		TransactionType:      domain.LoanTxnPayment,
		Amount:               decimal.NewFromInt(250),
		AccountTransactionID: &postingID,
		Status:               domain.TxnPosted,
		InitiatedBy:          domain.InitiatedByCustomer,
	}

	suite.mockTxnRepo.On("FindTransactionByIdempotencyKey", suite.ctx, key).
		Return(&domain.Transaction{TransactionID: postingID}, nil).Once()
	suite.mockLoanRepo.On("ListLoanTransactions", suite.ctx, loan.LoanID).
		Return([]domain.LoanTransaction{original}, nil).Once()

	loanTxn, err := suite.service.MakePayment(suite.ctx, loan.LoanID, dto.MakePaymentRequest{
		PaymentAccountID: uuid.NewString(),
		PaymentAmount:    decimal.NewFromInt(250),
	}, suite.userID, domain.InitiatedByCustomer, key)

	suite.Require().NoError(err)
	suite.Equal(original.ID, loanTxn.ID)
	suite.mockLoanRepo.AssertNotCalled(suite.T(), "FindLoanByIDForUpdate", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ServicingServiceTestSuite) TestConfigureAutopay_InvalidDayOfMonth() {
	schedule, err := suite.service.ConfigureAutopay(suite.ctx, uuid.NewString(), dto.ConfigureAutopayRequest{
		DayOfMonth:       31,
		PaymentAccountID: uuid.NewString(),
		PaymentAmount:    decimal.NewFromInt(100),
	}, suite.userID)

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(schedule)
	suite.mockAutopayRepo.AssertNotCalled(suite.T(), "UpsertSchedule", mock.Anything, mock.Anything)
}

func (suite *ServicingServiceTestSuite) TestConfigureAutopay_Success() {
	loan := suite.activeLoan(1000)
	account := suite.paymentAccount(5000)

	suite.mockLoanRepo.On("FindLoanByID", suite.ctx, loan.LoanID).Return(loan, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", suite.ctx, account.AccountID).Return(&account, nil).Once()

	var saved domain.AutopaySchedule
	suite.mockAutopayRepo.On("UpsertSchedule", suite.ctx, mock.AnythingOfType("domain.AutopaySchedule")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(domain.AutopaySchedule) }).
		Return(nil).Once()
	suite.mockAutopayRepo.On("FindScheduleByLoanID", suite.ctx, loan.LoanID).
		Return(&domain.AutopaySchedule{LoanID: loan.LoanID, DayOfMonth: 15}, nil).Once()

	schedule, err := suite.service.ConfigureAutopay(suite.ctx, loan.LoanID, dto.ConfigureAutopayRequest{
		DayOfMonth:       15,
		PaymentAccountID: account.AccountID,
		PaymentAmount:    decimal.NewFromInt(456),
	}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(15, schedule.DayOfMonth)
	suite.Equal(loan.LoanID, saved.LoanID)
	suite.Equal(15, saved.DayOfMonth)
	suite.True(saved.PaymentAmount.Equal(decimal.NewFromInt(456)))
	suite.Equal(suite.userID, saved.CreatedBy)
}

func (suite *ServicingServiceTestSuite) TestRunDueAutopays_SkipsNotDueAndPeriodTaken() {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	dueLoan := suite.activeLoan(1000)
	dueLoan.Status = domain.LoanClosed

	due := domain.AutopaySchedule{LoanID: dueLoan.LoanID, PaymentAccountID: uuid.NewString(), PaymentAmount: decimal.NewFromInt(100), DayOfMonth: 10}
	notDue := domain.AutopaySchedule{LoanID: uuid.NewString(), PaymentAccountID: uuid.NewString(), PaymentAmount: decimal.NewFromInt(100), DayOfMonth: 20}
	taken := domain.AutopaySchedule{LoanID: uuid.NewString(), PaymentAccountID: uuid.NewString(), PaymentAmount: decimal.NewFromInt(100), DayOfMonth: 5}

	suite.mockAutopayRepo.On("ListActiveSchedules", suite.ctx).
		Return([]domain.AutopaySchedule{due, notDue, taken}, nil).Once()
	suite.mockAutopayRepo.On("MarkRun", suite.ctx, due.LoanID, now, (*time.Time)(nil)).Return(nil).Once()
	suite.mockAutopayRepo.On("MarkRun", suite.ctx, taken.LoanID, now, (*time.Time)(nil)).Return(apperrors.ErrConflict).Once()
	suite.mockLoanRepo.On("FindLoanByID", suite.ctx, dueLoan.LoanID).Return(dueLoan, nil).Once()

	attempted, err := suite.service.RunDueAutopays(suite.ctx, now)

	suite.Require().NoError(err)
	suite.Equal(1, attempted)
	suite.mockAutopayRepo.AssertNotCalled(suite.T(), "MarkRun", suite.ctx, notDue.LoanID, mock.Anything, mock.Anything)
	suite.mockAutopayRepo.AssertExpectations(suite.T())
}

func (suite *ServicingServiceTestSuite) TestRunDueAutopays_RecordsFailedPayment() {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	loan := suite.activeLoan(80)
	account := suite.paymentAccount(5)

	schedule := domain.AutopaySchedule{
		LoanID:           loan.LoanID,
		PaymentAccountID: account.AccountID,
		PaymentAmount:    decimal.NewFromInt(250),
		DayOfMonth:       10,
	}

	suite.mockAutopayRepo.On("ListActiveSchedules", suite.ctx).Return([]domain.AutopaySchedule{schedule}, nil).Once()
	suite.mockAutopayRepo.On("MarkRun", suite.ctx, loan.LoanID, now, (*time.Time)(nil)).Return(nil).Once()
	suite.mockLoanRepo.On("FindLoanByID", suite.ctx, loan.LoanID).Return(loan, nil).Once()

	suite.mockTxnRepo.On("FindTransactionByIdempotencyKey", suite.ctx, "autopay-"+loan.LoanID+"-2026-03").
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockLoanRepo.On("FindLoanByIDForUpdate", suite.ctx, mock.Anything, loan.LoanID).Return(loan, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDsForUpdate", suite.ctx, mock.Anything, []string{account.AccountID}).
		Return(map[string]domain.Account{account.AccountID: account}, nil).Once()

	var failed domain.LoanTransaction
	suite.mockLoanRepo.On("SaveLoanTransaction", suite.ctx, mock.AnythingOfType("domain.LoanTransaction")).
		Run(func(args mock.Arguments) { failed = args.Get(1).(domain.LoanTransaction) }).
		Return(nil).Once()

	attempted, err := suite.service.RunDueAutopays(suite.ctx, now)

	suite.Require().NoError(err)
	suite.Equal(1, attempted)

	suite.Equal(domain.TxnFailed, failed.Status)
	suite.Equal(domain.InitiatedByAutopay, failed.InitiatedBy)
	suite.True(failed.Amount.Equal(decimal.NewFromInt(80)), "final installment is clamped to the balance")
	suite.Contains(failed.Description, "Autopay failed:")
	suite.mockLoanRepo.AssertExpectations(suite.T())
}

func (suite *ServicingServiceTestSuite) TestSetAutopayPaused_Resume() {
	loan := suite.activeLoan(1000)
	paused := &domain.AutopaySchedule{LoanID: loan.LoanID, Paused: true}
	resumed := &domain.AutopaySchedule{LoanID: loan.LoanID, Paused: false}

	suite.mockLoanRepo.On("FindLoanByID", suite.ctx, loan.LoanID).Return(loan, nil).Once()
	suite.mockAutopayRepo.On("FindScheduleByLoanID", suite.ctx, loan.LoanID).Return(paused, nil).Once()
	suite.mockAutopayRepo.On("SetPaused", suite.ctx, loan.LoanID, false, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockAutopayRepo.On("FindScheduleByLoanID", suite.ctx, loan.LoanID).Return(resumed, nil).Once()

	schedule, err := suite.service.SetAutopayPaused(suite.ctx, loan.LoanID, suite.userID, false)

	suite.Require().NoError(err)
	suite.False(schedule.Paused)
	suite.mockAutopayRepo.AssertExpectations(suite.T())
}

func TestServicingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServicingServiceTestSuite))
}
