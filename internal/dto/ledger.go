package dto

import (
	"time"

	"github.com/sekrobank/sekro_bank_api/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DepositRequest defines the data needed to deposit into an account.
type DepositRequest struct {
	Amount      decimal.Decimal    `json:"amount" binding:"required"`
	DepositType domain.DepositType `json:"deposit_type" binding:"required,oneof=cash direct_deposit check"`
	Description string             `json:"description"`
}

// WithdrawRequest defines the data needed to withdraw from an account.
type WithdrawRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description"`
}

// InternalTransferRequest defines the data needed to move money between two accounts at the bank.
type InternalTransferRequest struct {
	FromAccountID string          `json:"from_account_id" binding:"required"`
	ToAccountID   string          `json:"to_account_id" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Description   string          `json:"description"`
}

// ExternalTransferRequest defines the data needed to send money to another bank.
type ExternalTransferRequest struct {
	FromAccountID          string          `json:"from_account_id" binding:"required"`
	RecipientRoutingNumber string          `json:"recipient_routing_number" binding:"required,len=9,numeric"`
	RecipientAccountNumber string          `json:"recipient_account_number" binding:"required,min=4"`
	Amount                 decimal.Decimal `json:"amount" binding:"required"`
	Description            string          `json:"description"`
}

// SettleExternalTransferRequest records the terminal outcome reported by the external network.
type SettleExternalTransferRequest struct {
	Outcome string `json:"outcome" binding:"required,oneof=POSTED FAILED"`
}

// TransactionResponse defines the data returned for a ledger transaction.
type TransactionResponse struct {
	TransactionID         string          `json:"transaction_id"`
	AccountID             string          `json:"account_id"`
	TransactionType       string          `json:"transaction_type"`
	Amount                decimal.Decimal `json:"amount"`
	Direction             string          `json:"direction"`
	Status                string          `json:"status"`
	Description           string          `json:"description"`
	TransferGroupID       *string         `json:"transfer_group_id,omitempty"`
	RecipientAccountLast4 string          `json:"recipient_account_last4,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	PostedAt              *time.Time      `json:"posted_at,omitempty"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:         txn.TransactionID,
		AccountID:             txn.AccountID,
		TransactionType:       string(txn.TransactionType),
		Amount:                txn.Amount,
		Direction:             string(txn.Direction),
		Status:                string(txn.Status),
		Description:           txn.Description,
		TransferGroupID:       txn.TransferGroupID,
		RecipientAccountLast4: txn.RecipientAccountLast4,
		CreatedAt:             txn.CreatedAt,
		PostedAt:              txn.PostedAt,
	}
}

// ToListTransactionResponse converts a slice of domain.Transaction to TransactionResponse DTOs
func ToListTransactionResponse(txns []domain.Transaction) []TransactionResponse {
	res := make([]TransactionResponse, len(txns))
	for i, txn := range txns {
		res[i] = ToTransactionResponse(&txn)
	}
	return res
}

// ListTransactionsParams defines query parameters for listing transactions.
type ListTransactionsParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"next_token"`
}

// ListTransactionsResponse wraps a page of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"next_token,omitempty"`
}
