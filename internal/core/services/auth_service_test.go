package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/sekrobank/sekro_bank_api/internal/apperrors"
	"github.com/sekrobank/sekro_bank_api/internal/core/domain"
	portssvc "github.com/sekrobank/sekro_bank_api/internal/core/ports/services"
	"github.com/sekrobank/sekro_bank_api/internal/core/services"
	"github.com/sekrobank/sekro_bank_api/internal/platform/config"
	"github.com/sekrobank/sekro_bank_api/internal/utils"
)

type TokenServiceTestSuite struct {
	suite.Suite
	mockUserRepo    *MockUserRepository
	mockAccountRepo *MockAccountRepository
	cfg             *config.Config
	service         portssvc.TokenSvcFacade

	ctx  context.Context
	user *domain.User
}

func (suite *TokenServiceTestSuite) SetupTest() {
	suite.mockUserRepo = new(MockUserRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.cfg = &config.Config{
		JWTSecret:                  "test-secret-for-token-service",
		JWTExpiryDuration:          15 * time.Minute,
		JWTIssuer:                  "sekro-bank-test",
		RefreshTokenExpiryDuration: 7 * 24 * time.Hour,
	}
	userSvc := services.NewUserService(suite.mockUserRepo, suite.mockAccountRepo)
	suite.service = services.NewTokenService(suite.cfg, userSvc)
	suite.ctx = context.Background()
	suite.user = &domain.User{
		UserID: uuid.NewString(),
		Email:  "maya.okafor@example.com",
		Role:   domain.RoleCustomer,
	}
}

func (suite *TokenServiceTestSuite) TestGenerateAccessToken_CarriesUserAndRole() {
	token, expiry, err := suite.service.GenerateAccessToken(suite.ctx, suite.user)

	suite.Require().NoError(err)
	suite.NotEmpty(token)
	suite.WithinDuration(time.Now().UTC().Add(suite.cfg.JWTExpiryDuration), expiry, 5*time.Second)

	claims, err := utils.ParseAndValidateJWT(token, suite.cfg.JWTSecret)
	suite.Require().NoError(err)
	suite.Equal(suite.user.UserID, claims.Subject)
	suite.Equal(string(domain.RoleCustomer), claims.Role)
	suite.Equal(suite.cfg.JWTIssuer, claims.Issuer)
}

func (suite *TokenServiceTestSuite) TestGenerateAccessToken_RejectsWrongSecret() {
	token, _, err := suite.service.GenerateAccessToken(suite.ctx, suite.user)
	suite.Require().NoError(err)

	_, err = utils.ParseAndValidateJWT(token, "some-other-secret")
	suite.Error(err)
}

func (suite *TokenServiceTestSuite) TestGenerateRefreshToken_StoresHashNotToken() {
	var storedHash *string
	var storedExpiry *time.Time
	suite.mockUserRepo.On("UpdateRefreshToken", suite.ctx, suite.user.UserID,
		mock.AnythingOfType("*string"), mock.AnythingOfType("*time.Time")).
		Run(func(args mock.Arguments) {
			storedHash = args.Get(2).(*string)
			storedExpiry = args.Get(3).(*time.Time)
		}).
		Return(nil).Once()

	token, expiry, err := suite.service.GenerateRefreshToken(suite.ctx, suite.user)

	suite.Require().NoError(err)
	suite.NotEmpty(token)
	suite.Require().NotNil(storedHash)
	suite.NotEqual(token, *storedHash)
	suite.True(utils.CompareRefreshTokenHash(token, *storedHash))
	suite.Require().NotNil(storedExpiry)
	suite.Equal(expiry, *storedExpiry)
	suite.WithinDuration(time.Now().UTC().Add(suite.cfg.RefreshTokenExpiryDuration), expiry, 5*time.Second)
}

func (suite *TokenServiceTestSuite) TestValidateRefreshToken_Success() {
	token := "opaque-refresh-token"
	hash := utils.HashRefreshToken(token)
	expiry := time.Now().UTC().Add(time.Hour)

	stored := *suite.user
	stored.RefreshTokenHash = hash
	stored.RefreshTokenExpiryTime = &expiry
	suite.mockUserRepo.On("FindUserByID", suite.ctx, suite.user.UserID).Return(&stored, nil).Once()

	user, err := suite.service.ValidateAndParseRefreshToken(suite.ctx, suite.user.UserID, token)

	suite.Require().NoError(err)
	suite.Equal(suite.user.UserID, user.UserID)
}

func (suite *TokenServiceTestSuite) TestValidateRefreshToken_Expired() {
	token := "opaque-refresh-token"
	expiry := time.Now().UTC().Add(-time.Minute)

	stored := *suite.user
	stored.RefreshTokenHash = utils.HashRefreshToken(token)
	stored.RefreshTokenExpiryTime = &expiry
	suite.mockUserRepo.On("FindUserByID", suite.ctx, suite.user.UserID).Return(&stored, nil).Once()

	user, err := suite.service.ValidateAndParseRefreshToken(suite.ctx, suite.user.UserID, token)

	suite.Require().ErrorIs(err, apperrors.ErrRefreshTokenExpired)
	suite.Nil(user)
}

func (suite *TokenServiceTestSuite) TestValidateRefreshToken_Mismatch() {
	expiry := time.Now().UTC().Add(time.Hour)

	stored := *suite.user
	stored.RefreshTokenHash = utils.HashRefreshToken("the-real-token")
	stored.RefreshTokenExpiryTime = &expiry
	suite.mockUserRepo.On("FindUserByID", suite.ctx, suite.user.UserID).Return(&stored, nil).Once()

	user, err := suite.service.ValidateAndParseRefreshToken(suite.ctx, suite.user.UserID, "a-stolen-guess")

	suite.Require().ErrorIs(err, apperrors.ErrUnauthorized)
	suite.Nil(user)
}

func (suite *TokenServiceTestSuite) TestValidateRefreshToken_NoneOnRecord() {
	suite.mockUserRepo.On("FindUserByID", suite.ctx, suite.user.UserID).Return(suite.user, nil).Once()

	user, err := suite.service.ValidateAndParseRefreshToken(suite.ctx, suite.user.UserID, "anything")

	suite.Require().ErrorIs(err, apperrors.ErrUnauthorized)
	suite.Nil(user)
}

func TestTokenServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TokenServiceTestSuite))
}
