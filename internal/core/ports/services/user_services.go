package services

import (
	"context"
	"time"

	"github.com/sekrobank/sekro_bank_api/internal/core/domain"
	"github.com/sekrobank/sekro_bank_api/internal/dto"
)

// UserReaderSvc defines read operations for user data
type UserReaderSvc interface {
	// GetUserByID retrieves a specific user by its unique identifier.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
}

// UserWriterSvc defines write operations for user data
type UserWriterSvc interface {
	// CreateUser registers a new customer and opens their first checking account.
	CreateUser(ctx context.Context, req dto.SignupRequest) (*domain.User, error)

	// EnsureEmployee provisions an employee user with the given credentials if
	// no user with that email exists yet. An existing user is returned as-is.
	EnsureEmployee(ctx context.Context, email string, password string) (*domain.User, error)
}

// UserAuthSvc defines authentication operations on user data
type UserAuthSvc interface {
	// AuthenticateUser verifies credentials and returns the user on success.
	AuthenticateUser(ctx context.Context, email string, password string) (*domain.User, error)

	// UpdateRefreshToken stores the hash and expiry of the user's refresh token.
	UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash *string, expiryTime *time.Time) error
}

// UserSvcFacade combines all user-related service interfaces
type UserSvcFacade interface {
	UserReaderSvc
	UserWriterSvc
	UserAuthSvc
}
