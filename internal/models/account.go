package models

import (
	"github.com/shopspring/decimal"
)

// Account is the persistence shape of a customer deposit account.
type Account struct {
	AccountID        string          `db:"account_id"`
	OwnerID          string          `db:"owner_id"`
	Name             string          `db:"name"`
	AccountType      string          `db:"account_type"`
	AccountNumber    string          `db:"account_number"`
	AvailableBalance decimal.Decimal `db:"available_balance"`
	Status           string          `db:"status"`
	AuditFields
}
