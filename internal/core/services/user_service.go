package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sekrobank/sekro_bank_api/internal/apperrors"
	"github.com/sekrobank/sekro_bank_api/internal/core/domain"
	portsrepo "github.com/sekrobank/sekro_bank_api/internal/core/ports/repositories"
	portssvc "github.com/sekrobank/sekro_bank_api/internal/core/ports/services"
	"github.com/sekrobank/sekro_bank_api/internal/dto"
	"github.com/sekrobank/sekro_bank_api/internal/middleware"
	"github.com/sekrobank/sekro_bank_api/internal/utils"
)

// userService provides user registration and authentication operations.
type userService struct {
	userRepo    portsrepo.UserRepositoryFacade
	accountRepo portsrepo.AccountRepositoryWithTx
}

// NewUserService creates a new user service.
func NewUserService(userRepo portsrepo.UserRepositoryFacade, accountRepo portsrepo.AccountRepositoryWithTx) portssvc.UserSvcFacade {
	return &userService{
		userRepo:    userRepo,
		accountRepo: accountRepo,
	}
}

// Ensure userService implements the portssvc.UserSvcFacade interface
var _ portssvc.UserSvcFacade = (*userService)(nil)

// GetUserByID retrieves a specific user by its unique identifier.
func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.FindUserByID(ctx, userID)
}

// CreateUser registers a new customer and opens their first checking account.
func (s *userService) CreateUser(ctx context.Context, req dto.SignupRequest) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		logger.Error("Failed to hash password", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		UserID:       uuid.NewString(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         domain.RoleCustomer,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     "signup",
			LastUpdatedAt: now,
			LastUpdatedBy: "signup",
		},
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: email already registered", apperrors.ErrDuplicate)
		}
		logger.Error("Failed to save user", slog.String("error", err.Error()))
		return nil, err
	}

	accountNumber, err := utils.GenerateAccountNumber()
	if err != nil {
		logger.Error("Failed to generate account number for signup", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to generate account number: %w", err)
	}

	// Every customer starts with a checking account.
	account := domain.Account{
		AccountID:        uuid.NewString(),
		OwnerID:          user.UserID,
		Name:             "Primary Checking",
		AccountType:      domain.Checking,
		AccountNumber:    accountNumber,
		AvailableBalance: decimal.Zero,
		Status:           domain.AccountOpen,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     user.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: user.UserID,
		},
	}
	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		logger.Error("Failed to open initial checking account", slog.String("user_id", user.UserID), slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("User registered", slog.String("user_id", user.UserID))
	return &user, nil
}

// EnsureEmployee provisions an employee user with the given credentials if no
// user with that email exists yet. Review-queue routes require the EMPLOYEE
// role and signup only creates customers, so the first employee comes from
// configuration at boot.
func (s *userService) EnsureEmployee(ctx context.Context, email string, password string) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	existing, err := s.userRepo.FindUserByEmail(ctx, email)
	if err == nil {
		if existing.Role != domain.RoleEmployee {
			return nil, fmt.Errorf("%w: user %s exists but is not an employee", apperrors.ErrConflict, email)
		}
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	passwordHash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	employee := domain.User{
		UserID:       uuid.NewString(),
		FirstName:    "Operations",
		LastName:     "Reviewer",
		Email:        email,
		PasswordHash: passwordHash,
		Role:         domain.RoleEmployee,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     "bootstrap",
			LastUpdatedAt: now,
			LastUpdatedBy: "bootstrap",
		},
	}

	if err := s.userRepo.SaveUser(ctx, employee); err != nil {
		// Another instance may have provisioned the same employee first.
		if errors.Is(err, apperrors.ErrDuplicate) {
			return s.userRepo.FindUserByEmail(ctx, email)
		}
		return nil, err
	}

	logger.Info("Employee provisioned", slog.String("user_id", employee.UserID))
	return &employee, nil
}

// AuthenticateUser verifies credentials and returns the user on success.
func (s *userService) AuthenticateUser(ctx context.Context, email string, password string) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userRepo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Same failure as a bad password so callers cannot probe emails.
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		logger.Warn("Password mismatch", slog.String("user_id", user.UserID))
		return nil, apperrors.ErrUnauthorized
	}

	return user, nil
}

// UpdateRefreshToken stores the hash and expiry of the user's refresh token.
func (s *userService) UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash *string, expiryTime *time.Time) error {
	return s.userRepo.UpdateRefreshToken(ctx, userID, refreshTokenHash, expiryTime)
}
