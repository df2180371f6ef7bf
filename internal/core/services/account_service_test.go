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

type AccountServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	mockTxnRepo     *MockTransactionRepository
	service         portssvc.AccountSvcFacade

	ctx    context.Context
	userID string
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.service = services.NewAccountService(suite.mockAccountRepo, suite.mockTxnRepo)
	suite.ctx = context.Background()
	suite.userID = uuid.NewString()
}

func (suite *AccountServiceTestSuite) TestCreateAccount_Success() {
	suite.mockAccountRepo.On("SaveAccount", suite.ctx, mock.AnythingOfType("domain.Account")).Return(nil).Once()

	account, err := suite.service.CreateAccount(suite.ctx, dto.CreateAccountRequest{
		Name:        "Vacation Savings",
		AccountType: domain.Savings,
	}, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(account)
	suite.NotEmpty(account.AccountID)
	suite.NotEmpty(account.AccountNumber)
	suite.Equal("Vacation Savings", account.Name)
	suite.Equal(domain.Savings, account.AccountType)
	suite.Equal(domain.AccountOpen, account.Status)
	suite.True(account.AvailableBalance.IsZero())
	suite.Equal(suite.userID, account.OwnerID)
	suite.Equal(suite.userID, account.CreatedBy)
	suite.WithinDuration(time.Now(), account.CreatedAt, time.Second)

	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCloseAccount_Success() {
	account := &domain.Account{
		AccountID:        uuid.NewString(),
		OwnerID:          suite.userID,
		AvailableBalance: decimal.Zero,
		Status:           domain.AccountOpen,
	}

	suite.mockAccountRepo.On("FindAccountByID", suite.ctx, account.AccountID).Return(account, nil).Once()
	suite.mockAccountRepo.On("CloseAccount", suite.ctx, account.AccountID, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	err := suite.service.CloseAccount(suite.ctx, account.AccountID, suite.userID)

	suite.Require().NoError(err)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCloseAccount_NonZeroBalance() {
	account := &domain.Account{
		AccountID:        uuid.NewString(),
		OwnerID:          suite.userID,
		AvailableBalance: decimal.NewFromInt(10),
		Status:           domain.AccountOpen,
	}

	suite.mockAccountRepo.On("FindAccountByID", suite.ctx, account.AccountID).Return(account, nil).Once()

	err := suite.service.CloseAccount(suite.ctx, account.AccountID, suite.userID)

	suite.Require().ErrorIs(err, apperrors.ErrConflict)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "CloseAccount", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestGetAccountByID_NotOwnerHidesAccount() {
	account := &domain.Account{
		AccountID: uuid.NewString(),
		OwnerID:   uuid.NewString(),
	}

	suite.mockAccountRepo.On("FindAccountByID", suite.ctx, account.AccountID).Return(account, nil).Once()

	got, err := suite.service.GetAccountByID(suite.ctx, account.AccountID, suite.userID)

	suite.Require().ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(got)
}

func (suite *AccountServiceTestSuite) TestListTransactions_ClampsLimit() {
	account := &domain.Account{
		AccountID: uuid.NewString(),
		OwnerID:   suite.userID,
	}

	suite.mockAccountRepo.On("FindAccountByID", suite.ctx, account.AccountID).Return(account, nil).Twice()
	suite.mockTxnRepo.On("ListTransactionsByAccountID", suite.ctx, account.AccountID, 20, (*string)(nil)).
		Return([]domain.Transaction{}, nil, nil).Once()
	suite.mockTxnRepo.On("ListTransactionsByAccountID", suite.ctx, account.AccountID, 100, (*string)(nil)).
		Return([]domain.Transaction{}, nil, nil).Once()

	_, _, err := suite.service.ListTransactions(suite.ctx, account.AccountID, suite.userID, 0, nil)
	suite.Require().NoError(err)

	_, _, err = suite.service.ListTransactions(suite.ctx, account.AccountID, suite.userID, 500, nil)
	suite.Require().NoError(err)

	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
