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

type LedgerServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	mockTxnRepo     *MockTransactionRepository
	service         portssvc.AccountSvcFacade

	ctx    context.Context
	userID string
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.service = services.NewAccountService(suite.mockAccountRepo, suite.mockTxnRepo)
	suite.ctx = context.Background()
	suite.userID = uuid.NewString()

	expectTx(&suite.mockAccountRepo.MockTxManager)
	expectTx(&suite.mockTxnRepo.MockTxManager)
}

func (suite *LedgerServiceTestSuite) openAccount(balance decimal.Decimal) domain.Account {
	return domain.Account{
		AccountID:        uuid.NewString(),
		OwnerID:          suite.userID,
		Name:             "Primary Checking",
		AccountType:      domain.Checking,
		AccountNumber:    "110000001234",
		AvailableBalance: balance,
		Status:           domain.AccountOpen,
	}
}

// --- Deposit ---

func (suite *LedgerServiceTestSuite) TestDeposit_Success() {
	account := suite.openAccount(decimal.NewFromInt(50))
	key := uuid.NewString()

	suite.mockTxnRepo.On("FindTransactionByIdempotencyKey", suite.ctx, key).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockAccountRepo.On("FindAccountsByIDsForUpdate", suite.ctx, mock.Anything, []string{account.AccountID}).
		Return(map[string]domain.Account{account.AccountID: account}, nil).Once()

	var saved []domain.Transaction
	suite.mockTxnRepo.On("SaveTransactionsInTx", suite.ctx, mock.Anything, mock.AnythingOfType("[]domain.Transaction")).
		Run(func(args mock.Arguments) { saved = args.Get(2).([]domain.Transaction) }).
		Return(nil).Once()
	suite.mockAccountRepo.On("UpdateAccountBalancesInTx", suite.ctx, mock.Anything,
		map[string]decimal.Decimal{account.AccountID: decimal.NewFromInt(100)}, suite.userID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	txn, err := suite.service.Deposit(suite.ctx, account.AccountID, dto.DepositRequest{
		Amount:      decimal.NewFromInt(100),
		DepositType: domain.DepositCash,
	}, suite.userID, key)

	suite.Require().NoError(err)
	suite.Require().NotNil(txn)
	suite.Equal(domain.TypeDeposit, txn.TransactionType)
	suite.Equal(domain.Credit, txn.Direction)
	suite.Equal(domain.TxnPosted, txn.Status)
	suite.Equal("Deposit (cash)", txn.Description)
	suite.Require().NotNil(txn.IdempotencyKey)
	suite.Equal(key, *txn.IdempotencyKey)
	suite.Require().Len(saved, 1)
	suite.Equal(txn.TransactionID, saved[0].TransactionID)

	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestDeposit_NonPositiveAmount() {
	txn, err := suite.service.Deposit(suite.ctx, uuid.NewString(), dto.DepositRequest{
		Amount:      decimal.Zero,
		DepositType: domain.DepositCash,
	}, suite.userID, "")

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(txn)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransactionsInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestDeposit_IdempotentReplay() {
	key := uuid.NewString()
	original := &domain.Transaction{
		TransactionID:   uuid.NewString(),
		TransactionType: domain.TypeDeposit,
		Amount:          decimal.NewFromInt(100),
		Status:          domain.TxnPosted,
		IdempotencyKey:  &key,
	}

	suite.mockTxnRepo.On("FindTransactionByIdempotencyKey", suite.ctx, key).
		Return(original, nil).Once()

	txn, err := suite.service.Deposit(suite.ctx, uuid.NewString(), dto.DepositRequest{
		Amount:      decimal.NewFromInt(100),
		DepositType: domain.DepositCash,
	}, suite.userID, key)

	suite.Require().NoError(err)
	suite.Equal(original.TransactionID, txn.TransactionID)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransactionsInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateAccountBalancesInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- Withdraw ---

func (suite *LedgerServiceTestSuite) TestWithdraw_InsufficientFunds() {
	account := suite.openAccount(decimal.NewFromInt(20))

	suite.mockAccountRepo.On("FindAccountsByIDsForUpdate", suite.ctx, mock.Anything, []string{account.AccountID}).
		Return(map[string]domain.Account{account.AccountID: account}, nil).Once()

	txn, err := suite.service.Withdraw(suite.ctx, account.AccountID, dto.WithdrawRequest{
		Amount: decimal.NewFromInt(100),
	}, suite.userID, "")

	suite.Require().ErrorIs(err, apperrors.ErrInsufficientFunds)
	suite.Nil(txn)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransactionsInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestWithdraw_ClosedAccount() {
	account := suite.openAccount(decimal.NewFromInt(500))
	account.Status = domain.AccountClosed

	suite.mockAccountRepo.On("FindAccountsByIDsForUpdate", suite.ctx, mock.Anything, []string{account.AccountID}).
		Return(map[string]domain.Account{account.AccountID: account}, nil).Once()

	txn, err := suite.service.Withdraw(suite.ctx, account.AccountID, dto.WithdrawRequest{
		Amount: decimal.NewFromInt(100),
	}, suite.userID, "")

	suite.Require().ErrorIs(err, apperrors.ErrConflict)
	suite.Nil(txn)
}

func (suite *LedgerServiceTestSuite) TestWithdraw_NotOwner() {
	account := suite.openAccount(decimal.NewFromInt(500))
	account.OwnerID = uuid.NewString()

	suite.mockAccountRepo.On("FindAccountsByIDsForUpdate", suite.ctx, mock.Anything, []string{account.AccountID}).
		Return(map[string]domain.Account{account.AccountID: account}, nil).Once()

	txn, err := suite.service.Withdraw(suite.ctx, account.AccountID, dto.WithdrawRequest{
		Amount: decimal.NewFromInt(100),
	}, suite.userID, "")

	suite.Require().ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(txn)
}

// --- Internal transfer ---

func (suite *LedgerServiceTestSuite) TestInternalTransfer_SameAccount() {
	accountID := uuid.NewString()

	txns, err := suite.service.InternalTransfer(suite.ctx, dto.InternalTransferRequest{
		FromAccountID: accountID,
		ToAccountID:   accountID,
		Amount:        decimal.NewFromInt(10),
	}, suite.userID, "")

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(txns)
}

func (suite *LedgerServiceTestSuite) TestInternalTransfer_Success() {
	from := suite.openAccount(decimal.NewFromInt(300))
	to := suite.openAccount(decimal.NewFromInt(10))
	to.OwnerID = uuid.NewString() // crediting another customer is allowed
	amount := decimal.NewFromInt(75)

	suite.mockAccountRepo.On("FindAccountsByIDsForUpdate", suite.ctx, mock.Anything, []string{from.AccountID, to.AccountID}).
		Return(map[string]domain.Account{from.AccountID: from, to.AccountID: to}, nil).Once()
	suite.mockTxnRepo.On("SaveTransactionsInTx", suite.ctx, mock.Anything, mock.AnythingOfType("[]domain.Transaction")).
		Return(nil).Once()
	suite.mockAccountRepo.On("UpdateAccountBalancesInTx", suite.ctx, mock.Anything,
		map[string]decimal.Decimal{from.AccountID: amount.Neg(), to.AccountID: amount}, suite.userID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	txns, err := suite.service.InternalTransfer(suite.ctx, dto.InternalTransferRequest{
		FromAccountID: from.AccountID,
		ToAccountID:   to.AccountID,
		Amount:        amount,
	}, suite.userID, "")

	suite.Require().NoError(err)
	suite.Require().Len(txns, 2)

	debit, credit := txns[0], txns[1]
	suite.Equal(from.AccountID, debit.AccountID)
	suite.Equal(domain.Debit, debit.Direction)
	suite.Equal(to.AccountID, credit.AccountID)
	suite.Equal(domain.Credit, credit.Direction)
	suite.Require().NotNil(debit.TransferGroupID)
	suite.Require().NotNil(credit.TransferGroupID)
	suite.Equal(*debit.TransferGroupID, *credit.TransferGroupID)
	suite.Equal("Transfer to account ending 1234", debit.Description)
	suite.Equal("Transfer from account ending 1234", credit.Description)

	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestInternalTransfer_ReplayReturnsBothLegs() {
	key := uuid.NewString()
	groupID := uuid.NewString()
	legs := []domain.Transaction{
		{TransactionID: uuid.NewString(), Direction: domain.Debit, TransferGroupID: &groupID, IdempotencyKey: &key},
		{TransactionID: uuid.NewString(), Direction: domain.Credit, TransferGroupID: &groupID},
	}

	suite.mockTxnRepo.On("FindTransactionByIdempotencyKey", suite.ctx, key).
		Return(&legs[0], nil).Once()
	suite.mockTxnRepo.On("FindTransactionsByTransferGroup", suite.ctx, groupID).
		Return(legs, nil).Once()

	txns, err := suite.service.InternalTransfer(suite.ctx, dto.InternalTransferRequest{
		FromAccountID: uuid.NewString(),
		ToAccountID:   uuid.NewString(),
		Amount:        decimal.NewFromInt(75),
	}, suite.userID, key)

	suite.Require().NoError(err)
	suite.Len(txns, 2)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransactionsInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestInternalTransfer_DuplicateKeyHeldBySingleLegPosting() {
	from := suite.openAccount(decimal.NewFromInt(500))
	to := suite.openAccount(decimal.NewFromInt(0))
	to.OwnerID = uuid.NewString()
	key := uuid.NewString()

	// The key was consumed by a withdrawal racing this transfer, so the
	// recorded posting has no transfer group.
	original := &domain.Transaction{
		TransactionID:   uuid.NewString(),
		AccountID:       from.AccountID,
		TransactionType: domain.TypeWithdraw,
		Amount:          decimal.NewFromInt(75),
		Direction:       domain.Debit,
		Status:          domain.TxnPosted,
		IdempotencyKey:  &key,
	}

	suite.mockTxnRepo.On("FindTransactionByIdempotencyKey", suite.ctx, key).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockAccountRepo.On("FindAccountsByIDsForUpdate", suite.ctx, mock.Anything, []string{from.AccountID, to.AccountID}).
		Return(map[string]domain.Account{from.AccountID: from, to.AccountID: to}, nil).Once()
	suite.mockTxnRepo.On("SaveTransactionsInTx", suite.ctx, mock.Anything, mock.AnythingOfType("[]domain.Transaction")).
		Return(apperrors.ErrDuplicate).Once()
	suite.mockTxnRepo.On("FindTransactionByIdempotencyKey", suite.ctx, key).
		Return(original, nil).Once()

	txns, err := suite.service.InternalTransfer(suite.ctx, dto.InternalTransferRequest{
		FromAccountID: from.AccountID,
		ToAccountID:   to.AccountID,
		Amount:        decimal.NewFromInt(75),
	}, suite.userID, key)

	suite.Require().NoError(err)
	suite.Require().Len(txns, 1)
	suite.Equal(original.TransactionID, txns[0].TransactionID)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "FindTransactionsByTransferGroup", mock.Anything, mock.Anything)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateAccountBalancesInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- External transfer ---

func (suite *LedgerServiceTestSuite) TestExternalTransfer_RecordsPendingHold() {
	from := suite.openAccount(decimal.NewFromInt(1000))

	suite.mockAccountRepo.On("FindAccountsByIDsForUpdate", suite.ctx, mock.Anything, []string{from.AccountID}).
		Return(map[string]domain.Account{from.AccountID: from}, nil).Once()
	suite.mockTxnRepo.On("SaveTransactionsInTx", suite.ctx, mock.Anything, mock.AnythingOfType("[]domain.Transaction")).
		Return(nil).Once()
	suite.mockAccountRepo.On("UpdateAccountBalancesInTx", suite.ctx, mock.Anything,
		map[string]decimal.Decimal{from.AccountID: decimal.NewFromInt(200).Neg()}, suite.userID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	txn, err := suite.service.ExternalTransfer(suite.ctx, dto.ExternalTransferRequest{
		FromAccountID:          from.AccountID,
		RecipientRoutingNumber: "021000021",
		RecipientAccountNumber: "998877665544",
		Amount:                 decimal.NewFromInt(200),
	}, suite.userID, "")

	suite.Require().NoError(err)
	suite.Equal(domain.TxnPending, txn.Status)
	suite.Equal(domain.TypeExternalTransfer, txn.TransactionType)
	suite.Equal("5544", txn.RecipientAccountLast4)
	suite.Equal("021000021", txn.RecipientRoutingNumber)
	suite.Nil(txn.PostedAt)

	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestSettleExternalTransfer_AlreadySettledIsNoOp() {
	postedAt := time.Now().UTC()
	txn := &domain.Transaction{
		TransactionID:   uuid.NewString(),
		AccountID:       uuid.NewString(),
		TransactionType: domain.TypeExternalTransfer,
		Amount:          decimal.NewFromInt(200),
		Direction:       domain.Debit,
		Status:          domain.TxnPosted,
		PostedAt:        &postedAt,
	}

	suite.mockTxnRepo.On("FindTransactionByIDForUpdate", suite.ctx, mock.Anything, txn.TransactionID).
		Return(txn, nil).Once()

	settled, err := suite.service.SettleExternalTransfer(suite.ctx, txn.TransactionID, domain.TxnFailed)

	suite.Require().NoError(err)
	suite.Equal(domain.TxnPosted, settled.Status)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "UpdateTransactionStatusInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransactionsInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestSettleExternalTransfer_FailureRefundsHold() {
	groupID := uuid.NewString()
	txn := &domain.Transaction{
		TransactionID:   uuid.NewString(),
		AccountID:       uuid.NewString(),
		TransactionType: domain.TypeExternalTransfer,
		Amount:          decimal.NewFromInt(200),
		Direction:       domain.Debit,
		Status:          domain.TxnPending,
		Description:     "External transfer to account ending 5544",
		TransferGroupID: &groupID,
		CreatedBy:       suite.userID,
	}

	suite.mockTxnRepo.On("FindTransactionByIDForUpdate", suite.ctx, mock.Anything, txn.TransactionID).
		Return(txn, nil).Once()
	suite.mockTxnRepo.On("UpdateTransactionStatusInTx", suite.ctx, mock.Anything, txn.TransactionID, domain.TxnFailed, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	var refunds []domain.Transaction
	suite.mockTxnRepo.On("SaveTransactionsInTx", suite.ctx, mock.Anything, mock.AnythingOfType("[]domain.Transaction")).
		Run(func(args mock.Arguments) { refunds = args.Get(2).([]domain.Transaction) }).
		Return(nil).Once()
	suite.mockAccountRepo.On("UpdateAccountBalancesInTx", suite.ctx, mock.Anything,
		map[string]decimal.Decimal{txn.AccountID: txn.Amount}, suite.userID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	settled, err := suite.service.SettleExternalTransfer(suite.ctx, txn.TransactionID, domain.TxnFailed)

	suite.Require().NoError(err)
	suite.Equal(domain.TxnFailed, settled.Status)
	suite.Require().Len(refunds, 1)
	suite.Equal(domain.Credit, refunds[0].Direction)
	suite.Equal(txn.AccountID, refunds[0].AccountID)
	suite.Equal("Refund: External transfer to account ending 5544", refunds[0].Description)
	suite.Require().NotNil(refunds[0].TransferGroupID)
	suite.Equal(groupID, *refunds[0].TransferGroupID)

	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestSettleExternalTransfer_InvalidOutcome() {
	settled, err := suite.service.SettleExternalTransfer(suite.ctx, uuid.NewString(), domain.TxnPending)

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(settled)
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
