package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the persistence shape of a ledger posting.
type Transaction struct {
	TransactionID          string          `db:"transaction_id"`
	AccountID              string          `db:"account_id"`
	TransactionType        string          `db:"transaction_type"`
	Amount                 decimal.Decimal `db:"amount"`
	Direction              string          `db:"direction"`
	Status                 string          `db:"status"`
	Description            string          `db:"description"`
	TransferGroupID        *string         `db:"transfer_group_id"`
	RecipientRoutingNumber string          `db:"recipient_routing_number"`
	RecipientAccountLast4  string          `db:"recipient_account_last4"`
	IdempotencyKey         *string         `db:"idempotency_key"`
	CreatedAt              time.Time       `db:"created_at"`
	CreatedBy              string          `db:"created_by"`
	PostedAt               *time.Time      `db:"posted_at"`
}
