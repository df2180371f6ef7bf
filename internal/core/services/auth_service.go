package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/sekrobank/sekro_bank_api/internal/apperrors"
	"github.com/sekrobank/sekro_bank_api/internal/core/domain"
	portssvc "github.com/sekrobank/sekro_bank_api/internal/core/ports/services"
	"github.com/sekrobank/sekro_bank_api/internal/middleware"
	"github.com/sekrobank/sekro_bank_api/internal/platform/config"
	"github.com/sekrobank/sekro_bank_api/internal/utils"
)

// tokenService issues access tokens and manages refresh token rotation.
type tokenService struct {
	cfg     *config.Config
	userSvc portssvc.UserSvcFacade
}

// NewTokenService creates a new token service.
func NewTokenService(cfg *config.Config, userSvc portssvc.UserSvcFacade) portssvc.TokenSvcFacade {
	return &tokenService{
		cfg:     cfg,
		userSvc: userSvc,
	}
}

// Ensure tokenService implements the portssvc.TokenSvcFacade interface
var _ portssvc.TokenSvcFacade = (*tokenService)(nil)

// GenerateAccessToken creates a short-lived JWT carrying the user's role.
func (s *tokenService) GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	expiryTime := time.Now().UTC().Add(s.cfg.JWTExpiryDuration)
	token, err := utils.GenerateJWT(user.UserID, string(user.Role), s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to generate access token", slog.String("user_id", user.UserID), slog.String("error", err.Error()))
		return "", time.Time{}, err
	}
	return token, expiryTime, nil
}

// GenerateRefreshToken creates an opaque refresh token and stores its hash
// against the user, rotating out any previous token.
func (s *tokenService) GenerateRefreshToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	refreshToken, err := utils.GenerateSecureRandomString(32)
	if err != nil {
		logger.Error("Failed to generate refresh token", slog.String("user_id", user.UserID), slog.String("error", err.Error()))
		return "", time.Time{}, err
	}

	hash := utils.HashRefreshToken(refreshToken)
	expiryTime := time.Now().UTC().Add(s.cfg.RefreshTokenExpiryDuration)

	if err := s.userSvc.UpdateRefreshToken(ctx, user.UserID, &hash, &expiryTime); err != nil {
		logger.Error("Failed to store refresh token", slog.String("user_id", user.UserID), slog.String("error", err.Error()))
		return "", time.Time{}, err
	}

	return refreshToken, expiryTime, nil
}

// ValidateAndParseRefreshToken validates a refresh token string against a
// user's stored token details.
func (s *tokenService) ValidateAndParseRefreshToken(ctx context.Context, userID string, refreshTokenString string) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userSvc.GetUserByID(ctx, userID)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}

	if user.RefreshTokenHash == "" || user.RefreshTokenExpiryTime == nil {
		logger.Warn("No refresh token on record", slog.String("user_id", userID))
		return nil, apperrors.ErrUnauthorized
	}

	if time.Now().UTC().After(*user.RefreshTokenExpiryTime) {
		logger.Warn("Refresh token expired", slog.String("user_id", userID))
		return nil, apperrors.ErrRefreshTokenExpired
	}

	if !utils.CompareRefreshTokenHash(refreshTokenString, user.RefreshTokenHash) {
		logger.Warn("Refresh token mismatch", slog.String("user_id", userID))
		return nil, apperrors.ErrUnauthorized
	}

	return user, nil
}
