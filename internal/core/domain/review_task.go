package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReviewTaskState is the lifecycle state of a human review task. A task exists
// only while a decision is outstanding; completion finalizes it.
type ReviewTaskState string

const (
	TaskOpen      ReviewTaskState = "OPEN"
	TaskCompleted ReviewTaskState = "COMPLETED"
)

// ReviewDecision is the outcome an employee records on a review task.
type ReviewDecision string

const (
	DecisionApproved ReviewDecision = "APPROVED"
	DecisionRejected ReviewDecision = "REJECTED"
)

// CreditReport is the bureau snapshot captured when a task is opened.
// It is consumed read-only by reviewers.
type CreditReport struct {
	Score        int    `json:"score"`
	Band         string `json:"band"` // EXCELLENT / GOOD / FAIR / POOR
	OpenAccounts int    `json:"openAccounts"`
	Delinquent   bool   `json:"delinquent"`
}

// RiskAnalysis is the automated scoring snapshot captured when a task is opened.
type RiskAnalysis struct {
	DebtToIncome   decimal.Decimal `json:"debtToIncome"` // declared debt / declared income
	RiskBand       string          `json:"riskBand"`     // LOW / MEDIUM / HIGH
	Recommendation ReviewDecision  `json:"recommendation"`
}

// ReviewTaskInput is the immutable snapshot presented to the reviewer:
// the application as submitted plus the bureau and risk collaborator outputs.
type ReviewTaskInput struct {
	Application  LoanApplication `json:"application"`
	CreditReport CreditReport    `json:"creditReport"`
	RiskAnalysis RiskAnalysis    `json:"riskAnalysis"`
}

// HumanReviewTask is the claim/release/decide unit of work for bank staff.
// ClaimantID is a weak reference to the reviewing employee, not ownership of
// the underlying application.
type HumanReviewTask struct {
	TaskID      string          `json:"taskID"` // Primary Key (UUID)
	WorkflowID  string          `json:"workflowID"` // The application driving this task
	State       ReviewTaskState `json:"state"`
	ClaimantID  *string         `json:"claimantID,omitempty"`
	Input       ReviewTaskInput `json:"input"`
	Decision    *ReviewDecision `json:"decision,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

// IsClaimedBy reports whether employeeID currently holds the claim.
func (t HumanReviewTask) IsClaimedBy(employeeID string) bool {
	return t.ClaimantID != nil && *t.ClaimantID == employeeID
}
