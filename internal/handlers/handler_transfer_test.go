package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/sekrobank/sekro_bank_api/internal/core/domain"
	"github.com/sekrobank/sekro_bank_api/internal/dto"
	"github.com/sekrobank/sekro_bank_api/internal/handlers"
	"github.com/sekrobank/sekro_bank_api/internal/middleware"
	"github.com/sekrobank/sekro_bank_api/internal/utils"
)

type TransferHandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockAccountService *MockAccountService
	jwtSecret          string
}

func (suite *TransferHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	suite.mockAccountService = new(MockAccountService)

	v1 := suite.router.Group("/api/v1", middleware.AuthMiddleware(suite.jwtSecret))
	handlers.RegisterTransferRoutes(v1, suite.mockAccountService)
}

func (suite *TransferHandlerTestSuite) tokenWithRole(userID string, role domain.UserRole) string {
	token, err := utils.GenerateJWT(userID, string(role), suite.jwtSecret, time.Hour, "sekro-bank-test")
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return token
}

func (suite *TransferHandlerTestSuite) doRequest(method, url string, body any, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, _ := http.NewRequest(method, url, reader)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *TransferHandlerTestSuite) TestInternalTransfer_Success() {
	userID := uuid.NewString()
	reqBody := dto.InternalTransferRequest{
		FromAccountID: uuid.NewString(),
		ToAccountID:   uuid.NewString(),
		Amount:        decimal.NewFromInt(75),
	}
	groupID := uuid.NewString()
	legs := []domain.Transaction{
		{TransactionID: uuid.NewString(), AccountID: reqBody.FromAccountID, Direction: domain.Debit, Status: domain.TxnPosted, TransferGroupID: &groupID},
		{TransactionID: uuid.NewString(), AccountID: reqBody.ToAccountID, Direction: domain.Credit, Status: domain.TxnPosted, TransferGroupID: &groupID},
	}

	suite.mockAccountService.On("InternalTransfer", mock.Anything, reqBody, userID, "").Return(legs, nil).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/transfers/internal", reqBody, suite.tokenWithRole(userID, domain.RoleCustomer))

	suite.Equal(http.StatusCreated, w.Code)
	var resp []dto.TransactionResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().Len(resp, 2)
	suite.Equal(legs[0].TransactionID, resp[0].TransactionID)
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *TransferHandlerTestSuite) TestSettleExternalTransfer_CustomerForbidden() {
	userID := uuid.NewString()
	transactionID := uuid.NewString()
	body := dto.SettleExternalTransferRequest{Outcome: "POSTED"}

	url := fmt.Sprintf("/api/v1/transfers/external/%s/settle", transactionID)
	w := suite.doRequest(http.MethodPost, url, body, suite.tokenWithRole(userID, domain.RoleCustomer))

	suite.Equal(http.StatusForbidden, w.Code)
	var resp handlers.ErrorResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("FORBIDDEN", resp.Code)
	suite.mockAccountService.AssertNotCalled(suite.T(), "SettleExternalTransfer", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransferHandlerTestSuite) TestSettleExternalTransfer_EmployeeAllowed() {
	employeeID := uuid.NewString()
	transactionID := uuid.NewString()
	body := dto.SettleExternalTransferRequest{Outcome: "FAILED"}

	now := time.Now().UTC()
	settled := &domain.Transaction{
		TransactionID:   transactionID,
		TransactionType: domain.TypeExternalTransfer,
		Amount:          decimal.NewFromInt(200),
		Direction:       domain.Debit,
		Status:          domain.TxnFailed,
		CreatedAt:       now,
		PostedAt:        &now,
	}

	suite.mockAccountService.On("SettleExternalTransfer", mock.Anything, transactionID, domain.TxnFailed).
		Return(settled, nil).Once()

	url := fmt.Sprintf("/api/v1/transfers/external/%s/settle", transactionID)
	w := suite.doRequest(http.MethodPost, url, body, suite.tokenWithRole(employeeID, domain.RoleEmployee))

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.TransactionResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(transactionID, resp.TransactionID)
	suite.Equal("FAILED", resp.Status)
	suite.mockAccountService.AssertExpectations(suite.T())
}

func TestTransferHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TransferHandlerTestSuite))
}
