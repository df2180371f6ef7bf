package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanTransactionType classifies entries on a loan's payoff ledger.
type LoanTransactionType string

const (
	LoanTxnPayment      LoanTransactionType = "PAYMENT"
	LoanTxnDisbursement LoanTransactionType = "DISBURSEMENT"
)

// LoanInitiator records who triggered a loan transaction.
type LoanInitiator string

const (
	InitiatedByCustomer LoanInitiator = "CUSTOMER"
	InitiatedByAutopay  LoanInitiator = "AUTOPAY"
)

// LoanTransaction is an entry on the payoff ledger of a loan account. Its
// status mirrors the underlying deposit-account posting: PENDING until the
// debit settles, POSTED on success, FAILED on failure (without mutating the
// loan balance).
type LoanTransaction struct {
	ID                   string              `json:"id"` // Primary Key (UUID)
	LoanID               string              `json:"loanID"`
	UserID               string              `json:"userID"`
	TransactionType      LoanTransactionType `json:"transactionType"`
	Amount               decimal.Decimal     `json:"amount"`
	PaymentAccountID     *string             `json:"paymentAccountID,omitempty"`
	AccountTransactionID *string             `json:"accountTransactionID,omitempty"` // Ledger posting, if any
	Status               TransactionStatus   `json:"status"`
	InitiatedBy          LoanInitiator       `json:"initiatedBy"`
	Description          string              `json:"description,omitempty"`
	CreatedAt            time.Time           `json:"createdAt"`
	PostedAt             *time.Time          `json:"postedAt,omitempty"`
}
