package dto

import (
	"time"

	"github.com/sekrobank/sekro_bank_api/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LoanResponse defines the data returned for a funded loan.
type LoanResponse struct {
	LoanID               string          `json:"loan_id"`
	LoanApplicationID    string          `json:"loan_application_id"`
	DestinationAccountID string          `json:"destination_account_id"`
	PrincipalAmount      decimal.Decimal `json:"principal_amount"`
	OutstandingBalance   decimal.Decimal `json:"outstanding_balance"`
	InterestRate         decimal.Decimal `json:"interest_rate"`
	TermMonths           int             `json:"term_months"`
	MonthlyPayment       decimal.Decimal `json:"monthly_payment"`
	TotalPayment         decimal.Decimal `json:"total_payment"`
	Status               string          `json:"status"`
	CreatedAt            time.Time       `json:"created_at"`
	ClosedAt             *time.Time      `json:"closed_at,omitempty"`
}

// ToLoanResponse converts a domain.LoanAccount to its DTO
func ToLoanResponse(loan *domain.LoanAccount) LoanResponse {
	return LoanResponse{
		LoanID:               loan.LoanID,
		LoanApplicationID:    loan.LoanApplicationID,
		DestinationAccountID: loan.DestinationAccountID,
		PrincipalAmount:      loan.PrincipalAmount,
		OutstandingBalance:   loan.OutstandingBalance,
		InterestRate:         loan.InterestRate,
		TermMonths:           loan.TermMonths,
		MonthlyPayment:       loan.MonthlyPayment,
		TotalPayment:         loan.TotalPayment,
		Status:               string(loan.Status),
		CreatedAt:            loan.CreatedAt,
		ClosedAt:             loan.ClosedAt,
	}
}

// ToListLoanResponse converts a slice of domain.LoanAccount to DTOs
func ToListLoanResponse(loans []domain.LoanAccount) []LoanResponse {
	res := make([]LoanResponse, len(loans))
	for i, loan := range loans {
		res[i] = ToLoanResponse(&loan)
	}
	return res
}

// LoanTransactionResponse defines the data returned for a loan transaction.
type LoanTransactionResponse struct {
	ID               string          `json:"id"`
	LoanID           string          `json:"loan_id"`
	TransactionType  string          `json:"transaction_type"`
	Amount           decimal.Decimal `json:"amount"`
	PaymentAccountID *string         `json:"payment_account_id,omitempty"`
	Status           string          `json:"status"`
	InitiatedBy      string          `json:"initiated_by"`
	Description      string          `json:"description"`
	CreatedAt        time.Time       `json:"created_at"`
	PostedAt         *time.Time      `json:"posted_at,omitempty"`
}

// ToLoanTransactionResponse converts a domain.LoanTransaction to its DTO
func ToLoanTransactionResponse(txn *domain.LoanTransaction) LoanTransactionResponse {
	return LoanTransactionResponse{
		ID:               txn.ID,
		LoanID:           txn.LoanID,
		TransactionType:  string(txn.TransactionType),
		Amount:           txn.Amount,
		PaymentAccountID: txn.PaymentAccountID,
		Status:           string(txn.Status),
		InitiatedBy:      string(txn.InitiatedBy),
		Description:      txn.Description,
		CreatedAt:        txn.CreatedAt,
		PostedAt:         txn.PostedAt,
	}
}

// ToListLoanTransactionResponse converts a slice of domain.LoanTransaction to DTOs
func ToListLoanTransactionResponse(txns []domain.LoanTransaction) []LoanTransactionResponse {
	res := make([]LoanTransactionResponse, len(txns))
	for i, txn := range txns {
		res[i] = ToLoanTransactionResponse(&txn)
	}
	return res
}

// MakePaymentRequest defines the data submitted for a manual loan payment.
type MakePaymentRequest struct {
	PaymentAccountID string          `json:"payment_account_id" binding:"required"`
	PaymentAmount    decimal.Decimal `json:"payment_amount" binding:"required"`
}

// ConfigureAutopayRequest defines the data submitted to create or replace an autopay schedule.
type ConfigureAutopayRequest struct {
	DayOfMonth       int             `json:"day_of_month" binding:"required,min=1,max=28"`
	PaymentAccountID string          `json:"payment_account_id" binding:"required"`
	PaymentAmount    decimal.Decimal `json:"payment_amount" binding:"required"`
}

// AutopayResponse defines the data returned for an autopay schedule.
type AutopayResponse struct {
	LoanID           string          `json:"loan_id"`
	PaymentAccountID string          `json:"payment_account_id"`
	PaymentAmount    decimal.Decimal `json:"payment_amount"`
	DayOfMonth       int             `json:"day_of_month"`
	Paused           bool            `json:"paused"`
	NextRuns         []time.Time     `json:"next_runs"`
}

// ToAutopayResponse converts a domain.AutopaySchedule to its DTO. NextRuns is
// computed from the given reference time.
func ToAutopayResponse(schedule *domain.AutopaySchedule, now time.Time) AutopayResponse {
	return AutopayResponse{
		LoanID:           schedule.LoanID,
		PaymentAccountID: schedule.PaymentAccountID,
		PaymentAmount:    schedule.PaymentAmount,
		DayOfMonth:       schedule.DayOfMonth,
		Paused:           schedule.Paused,
		NextRuns:         schedule.NextRuns(now, 3),
	}
}
