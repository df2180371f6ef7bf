package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanApplication is the persistence shape of an origination application.
type LoanApplication struct {
	ApplicationID        string          `db:"application_id"`
	UserID               string          `db:"user_id"`
	RequestedAmount      decimal.Decimal `db:"requested_amount"`
	Purpose              string          `db:"purpose"`
	EmploymentStatus     string          `db:"employment_status"`
	DeclaredIncome       decimal.Decimal `db:"declared_income"`
	DeclaredDebt         decimal.Decimal `db:"declared_debt"`
	DestinationAccountID string          `db:"destination_account_id"`
	Status               string          `db:"status"`
	DecisionReason       string          `db:"decision_reason"`
	SelectedOfferID      *string         `db:"selected_offer_id"`
	CreatedAt            time.Time       `db:"created_at"`
	DecidedAt            *time.Time      `db:"decided_at"`
	AcceptedAt           *time.Time      `db:"accepted_at"`
	FundedAt             *time.Time      `db:"funded_at"`
}

// LoanOffer is the persistence shape of a generated offer.
type LoanOffer struct {
	ID             string          `db:"id"`
	ApplicationID  string          `db:"application_id"`
	OfferID        string          `db:"offer_id"`
	TermMonths     int             `db:"term_months"`
	APR            decimal.Decimal `db:"apr"`
	LoanAmount     decimal.Decimal `db:"loan_amount"`
	MonthlyPayment decimal.Decimal `db:"monthly_payment"`
	TotalPayment   decimal.Decimal `db:"total_payment"`
	Void           bool            `db:"void"`
	Selected       bool            `db:"selected"`
	CreatedAt      time.Time       `db:"created_at"`
}

// LoanAccount is the persistence shape of a funded loan under servicing.
type LoanAccount struct {
	LoanID               string          `db:"loan_id"`
	LoanApplicationID    string          `db:"loan_application_id"`
	LoanOfferID          string          `db:"loan_offer_id"`
	UserID               string          `db:"user_id"`
	DestinationAccountID string          `db:"destination_account_id"`
	PrincipalAmount      decimal.Decimal `db:"principal_amount"`
	OutstandingBalance   decimal.Decimal `db:"outstanding_balance"`
	InterestRate         decimal.Decimal `db:"interest_rate"`
	TermMonths           int             `db:"term_months"`
	MonthlyPayment       decimal.Decimal `db:"monthly_payment"`
	TotalPayment         decimal.Decimal `db:"total_payment"`
	Status               string          `db:"status"`
	CreatedAt            time.Time       `db:"created_at"`
	ClosedAt             *time.Time      `db:"closed_at"`
}

// LoanTransaction is the persistence shape of a payoff-ledger entry.
type LoanTransaction struct {
	ID                   string          `db:"id"`
	LoanID               string          `db:"loan_id"`
	UserID               string          `db:"user_id"`
	TransactionType      string          `db:"transaction_type"`
	Amount               decimal.Decimal `db:"amount"`
	PaymentAccountID     *string         `db:"payment_account_id"`
	AccountTransactionID *string         `db:"account_transaction_id"`
	Status               string          `db:"status"`
	InitiatedBy          string          `db:"initiated_by"`
	Description          string          `db:"description"`
	CreatedAt            time.Time       `db:"created_at"`
	PostedAt             *time.Time      `db:"posted_at"`
}
