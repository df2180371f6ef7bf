package dto

import (
	"time"

	"github.com/sekrobank/sekro_bank_api/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to open a new deposit account.
type CreateAccountRequest struct {
	Name        string             `json:"name" binding:"required"`
	AccountType domain.AccountType `json:"account_type" binding:"required,oneof=CHECKING SAVINGS"`
}

// AccountResponse defines the data returned for an account.
// Mirrors domain.Account.
type AccountResponse struct {
	AccountID        string             `json:"account_id"`
	Name             string             `json:"name"`
	AccountType      domain.AccountType `json:"account_type"`
	AccountNumber    string             `json:"account_number"`
	AvailableBalance decimal.Decimal    `json:"available_balance"`
	Status           string             `json:"status"`
	CreatedAt        time.Time          `json:"created_at"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:        acc.AccountID,
		Name:             acc.Name,
		AccountType:      acc.AccountType,
		AccountNumber:    acc.AccountNumber,
		AvailableBalance: acc.AvailableBalance,
		Status:           string(acc.Status),
		CreatedAt:        acc.CreatedAt,
	}
}

// ToListAccountResponse converts a slice of domain.Account to a slice of AccountResponse DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i, acc := range accounts {
		res[i] = ToAccountResponse(&acc)
	}
	return res
}

// ListAccountsResponse wraps the list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}
