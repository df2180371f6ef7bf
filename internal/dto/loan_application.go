package dto

import (
	"time"

	"github.com/sekrobank/sekro_bank_api/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ApplyLoanRequest defines the data submitted with a new loan application.
type ApplyLoanRequest struct {
	RequestedAmount      decimal.Decimal         `json:"requested_amount" binding:"required"`
	Purpose              string                  `json:"purpose"`
	CreditScore          int                     `json:"credit_score" binding:"required,min=300,max=850"`
	AnnualIncome         decimal.Decimal         `json:"annual_income" binding:"required"`
	ExistingDebt         decimal.Decimal         `json:"existing_debt"`
	EmploymentStatus     domain.EmploymentStatus `json:"employment_status" binding:"required,oneof=FULL_TIME PART_TIME SELF_EMPLOYED UNEMPLOYED RETIRED"`
	DestinationAccountID string                  `json:"destination_account_id" binding:"required"`
}

// LoanApplicationResponse defines the data returned for a loan application.
type LoanApplicationResponse struct {
	ApplicationID        string          `json:"application_id"`
	Status               string          `json:"status"`
	RequestedAmount      decimal.Decimal `json:"requested_amount"`
	Purpose              string          `json:"purpose"`
	DestinationAccountID string          `json:"destination_account_id"`
	DecisionReason       string          `json:"decision_reason,omitempty"`
	SelectedOfferID      *string         `json:"selected_offer_id,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	DecidedAt            *time.Time      `json:"decided_at,omitempty"`
	FundedAt             *time.Time      `json:"funded_at,omitempty"`
}

// ToLoanApplicationResponse converts a domain.LoanApplication to its DTO
func ToLoanApplicationResponse(app *domain.LoanApplication) LoanApplicationResponse {
	return LoanApplicationResponse{
		ApplicationID:        app.ApplicationID,
		Status:               string(app.Status),
		RequestedAmount:      app.RequestedAmount,
		Purpose:              app.Purpose,
		DestinationAccountID: app.DestinationAccountID,
		DecisionReason:       app.DecisionReason,
		SelectedOfferID:      app.SelectedOfferID,
		CreatedAt:            app.CreatedAt,
		DecidedAt:            app.DecidedAt,
		FundedAt:             app.FundedAt,
	}
}

// LoanOfferResponse defines the data returned for a single loan offer.
type LoanOfferResponse struct {
	ID             string          `json:"id"`
	OfferID        string          `json:"offer_id"`
	TermMonths     int             `json:"term_months"`
	APR            decimal.Decimal `json:"apr"`
	LoanAmount     decimal.Decimal `json:"loan_amount"`
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`
	TotalPayment   decimal.Decimal `json:"total_payment"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ToLoanOfferResponse converts a domain.LoanOffer to its DTO
func ToLoanOfferResponse(offer *domain.LoanOffer) LoanOfferResponse {
	return LoanOfferResponse{
		ID:             offer.ID,
		OfferID:        string(offer.OfferID),
		TermMonths:     offer.TermMonths,
		APR:            offer.APR,
		LoanAmount:     offer.LoanAmount,
		MonthlyPayment: offer.MonthlyPayment,
		TotalPayment:   offer.TotalPayment,
		CreatedAt:      offer.CreatedAt,
	}
}

// ToListLoanOfferResponse converts a slice of domain.LoanOffer to DTOs
func ToListLoanOfferResponse(offers []domain.LoanOffer) []LoanOfferResponse {
	res := make([]LoanOfferResponse, len(offers))
	for i, offer := range offers {
		res[i] = ToLoanOfferResponse(&offer)
	}
	return res
}

// ListLoanOffersResponse wraps the offers presented for an application.
type ListLoanOffersResponse struct {
	ApplicationID string              `json:"application_id"`
	Offers        []LoanOfferResponse `json:"offers"`
}

// AcceptOfferRequest defines the data submitted when a customer accepts an offer.
type AcceptOfferRequest struct {
	SelectedOfferID string `json:"selected_offer_id" binding:"required,oneof=OFFER_12 OFFER_24 OFFER_36"`
}
