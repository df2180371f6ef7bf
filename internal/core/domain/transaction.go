package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies the business operation behind a posting.
type TransactionType string

const (
	TypeDeposit          TransactionType = "DEPOSIT"
	TypeWithdraw         TransactionType = "WITHDRAW"
	TypeTransfer         TransactionType = "TRANSFER"
	TypeExternalTransfer TransactionType = "EXTERNAL_TRANSFER"
	TypeLoanPayment      TransactionType = "LOAN_PAYMENT"
	TypeLoanDisbursement TransactionType = "LOAN_DISBURSEMENT"
)

// TransactionDirection indicates which side of the ledger a posting sits on.
// A posting's direction must match its effect on the account's available balance.
type TransactionDirection string

const (
	Credit TransactionDirection = "CREDIT"
	Debit  TransactionDirection = "DEBIT"
)

// TransactionStatus is the settlement state of a posting.
// POSTED and FAILED are terminal.
type TransactionStatus string

const (
	TxnPending TransactionStatus = "PENDING"
	TxnPosted  TransactionStatus = "POSTED"
	TxnFailed  TransactionStatus = "FAILED"
)

// IsTerminal reports whether a posting can no longer change state.
func (s TransactionStatus) IsTerminal() bool {
	return s == TxnPosted || s == TxnFailed
}

// DepositType is informational metadata on a deposit; it does not change the
// settlement rule.
type DepositType string

const (
	DepositCash   DepositType = "cash"
	DepositDirect DepositType = "direct_deposit"
	DepositCheck  DepositType = "check"
)

// Transaction is a single debit or credit posting against one account.
// An internal transfer is exactly two postings sharing a TransferGroupID
// that settle atomically.
type Transaction struct {
	TransactionID   string               `json:"transactionID"` // Primary Key (UUID)
	AccountID       string               `json:"accountID"`     // FK -> accounts.account_id (Not Null)
	TransactionType TransactionType      `json:"transactionType"`
	Amount          decimal.Decimal      `json:"amount"` // Always positive
	Direction       TransactionDirection `json:"direction"`
	Status          TransactionStatus    `json:"status"`
	Description     string               `json:"description"`

	// TransferGroupID links the two legs of an internal transfer, or the
	// original debit of an external transfer with its compensating credit.
	TransferGroupID *string `json:"transferGroupID,omitempty"`

	// External transfer metadata; empty for other transaction types.
	RecipientRoutingNumber string `json:"recipientRoutingNumber,omitempty"`
	RecipientAccountLast4  string `json:"recipientAccountLast4,omitempty"`

	// IdempotencyKey is the client-supplied key on mutating requests.
	// Replays of the same key are rejected as duplicates.
	IdempotencyKey *string `json:"idempotencyKey,omitempty"`

	CreatedAt time.Time  `json:"createdAt"`
	CreatedBy string     `json:"createdBy"`
	PostedAt  *time.Time `json:"postedAt,omitempty"`
}

// SignedAmount returns the balance delta this posting applies when it posts:
// positive for credits, negative for debits.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.Direction == Debit {
		return t.Amount.Neg()
	}
	return t.Amount
}
