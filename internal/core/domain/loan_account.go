package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanAccountStatus is the servicing state of a funded loan.
type LoanAccountStatus string

const (
	LoanActive     LoanAccountStatus = "ACTIVE"
	LoanDelinquent LoanAccountStatus = "DELINQUENT"
	LoanClosed     LoanAccountStatus = "CLOSED"
	LoanDefault    LoanAccountStatus = "DEFAULT"
)

// LoanAccount is a funded loan under servicing. Created exactly once, when an
// offer is accepted and funds are disbursed. OutstandingBalance is bounded by
// [0, PrincipalAmount] and monotonically non-increasing.
type LoanAccount struct {
	LoanID               string            `json:"loanID"` // Primary Key (UUID)
	LoanApplicationID    string            `json:"loanApplicationID"`
	LoanOfferID          string            `json:"loanOfferID"`
	UserID               string            `json:"userID"`
	DestinationAccountID string            `json:"destinationAccountID"`
	PrincipalAmount      decimal.Decimal   `json:"principalAmount"`
	OutstandingBalance   decimal.Decimal   `json:"outstandingBalance"`
	InterestRate         decimal.Decimal   `json:"interestRate"`
	TermMonths           int               `json:"termMonths"`
	MonthlyPayment       decimal.Decimal   `json:"monthlyPayment"`
	TotalPayment         decimal.Decimal   `json:"totalPayment"`
	Status               LoanAccountStatus `json:"status"`
	CreatedAt            time.Time         `json:"createdAt"`
	ClosedAt             *time.Time        `json:"closedAt,omitempty"`
}
