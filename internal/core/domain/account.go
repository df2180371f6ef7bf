package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType is the product type of a customer deposit account.
type AccountType string

const (
	Checking AccountType = "CHECKING"
	Savings  AccountType = "SAVINGS"
)

// AccountStatus is the lifecycle state of a deposit account.
// Accounts are never hard-deleted; closure is a status change.
type AccountStatus string

const (
	AccountOpen   AccountStatus = "OPEN"
	AccountClosed AccountStatus = "CLOSED"
)

// Account represents a customer deposit account within the core domain.
// This is the primary representation used by services.
type Account struct {
	AccountID        string          `json:"accountID"`     // Primary Key (UUID)
	OwnerID          string          `json:"ownerID"`       // FK -> users.user_id (NON-NULL)
	Name             string          `json:"name"`          // User-facing account name
	AccountType      AccountType     `json:"accountType"`   // CHECKING or SAVINGS
	AccountNumber    string          `json:"accountNumber"` // Full number; clients display only the last 4
	AvailableBalance decimal.Decimal `json:"availableBalance"`
	Status           AccountStatus   `json:"status"`
	AuditFields
}

// Last4 returns the last four digits of the account number for masked display.
func (a Account) Last4() string {
	if len(a.AccountNumber) < 4 {
		return a.AccountNumber
	}
	return a.AccountNumber[len(a.AccountNumber)-4:]
}

// IsOpen reports whether the account can accept new postings.
func (a Account) IsOpen() bool {
	return a.Status == AccountOpen
}
