package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanApplicationStatus is the state of an application in the origination flow.
type LoanApplicationStatus string

const (
	AppSubmitted       LoanApplicationStatus = "SUBMITTED"
	AppUnderReview     LoanApplicationStatus = "UNDER_REVIEW"
	AppApproved        LoanApplicationStatus = "APPROVED"
	AppRejected        LoanApplicationStatus = "REJECTED"
	AppOffersPresented LoanApplicationStatus = "OFFERS_PRESENTED"
	AppOfferAccepted   LoanApplicationStatus = "OFFER_ACCEPTED"
	AppDeclined        LoanApplicationStatus = "DECLINED"
	AppFunded          LoanApplicationStatus = "FUNDED"
)

// applicationTransitions is the authoritative transition table. Any transition
// not listed here is rejected, which also guarantees monotonicity: no state
// ever appears as a target of one of its own successors.
var applicationTransitions = map[LoanApplicationStatus][]LoanApplicationStatus{
	AppSubmitted:       {AppUnderReview},
	AppUnderReview:     {AppApproved, AppRejected},
	AppApproved:        {AppOffersPresented},
	AppOffersPresented: {AppOfferAccepted, AppDeclined},
	AppOfferAccepted:   {AppFunded},
	AppRejected:        {},
	AppDeclined:        {},
	AppFunded:          {},
}

// CanTransitionTo reports whether moving from s to next is a legal transition.
func (s LoanApplicationStatus) CanTransitionTo(next LoanApplicationStatus) bool {
	for _, allowed := range applicationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the application can change state again.
func (s LoanApplicationStatus) IsTerminal() bool {
	return len(applicationTransitions[s]) == 0
}

// EmploymentStatus is the applicant's declared employment situation.
type EmploymentStatus string

const (
	EmploymentFullTime     EmploymentStatus = "FULL_TIME"
	EmploymentPartTime     EmploymentStatus = "PART_TIME"
	EmploymentSelfEmployed EmploymentStatus = "SELF_EMPLOYED"
	EmploymentUnemployed   EmploymentStatus = "UNEMPLOYED"
	EmploymentRetired      EmploymentStatus = "RETIRED"
)

// LoanApplication is a customer's request for credit, driven through the
// origination state machine. Once in a terminal state it is immutable.
type LoanApplication struct {
	ApplicationID        string                `json:"applicationID"` // Primary Key (UUID)
	UserID               string                `json:"userID"`
	RequestedAmount      decimal.Decimal       `json:"requestedAmount"` // > 0
	Purpose              string                `json:"purpose"`
	EmploymentStatus     EmploymentStatus      `json:"employmentStatus"`
	DeclaredIncome       decimal.Decimal       `json:"declaredIncome"` // > 0, annual
	DeclaredDebt         decimal.Decimal       `json:"declaredDebt"`   // >= 0
	DestinationAccountID string                `json:"destinationAccountID"`
	Status               LoanApplicationStatus `json:"status"`
	DecisionReason       string                `json:"decisionReason,omitempty"`
	SelectedOfferID      *string               `json:"selectedOfferID,omitempty"`

	CreatedAt  time.Time  `json:"createdAt"`
	DecidedAt  *time.Time `json:"decidedAt,omitempty"`
	AcceptedAt *time.Time `json:"acceptedAt,omitempty"`
	FundedAt   *time.Time `json:"fundedAt,omitempty"`
}
