package dto

import (
	"time"

	"github.com/sekrobank/sekro_bank_api/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReviewTaskResponse defines the data returned for a human review task.
type ReviewTaskResponse struct {
	TaskID      string          `json:"task_id"`
	WorkflowID  string          `json:"workflow_id"`
	State       string          `json:"state"`
	ClaimantID  *string         `json:"claimant_id,omitempty"`
	Input       ReviewTaskInput `json:"input"`
	Decision    *string         `json:"decision,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// ReviewTaskInput is the decision package shown to the reviewer.
type ReviewTaskInput struct {
	Application  LoanApplicationResponse `json:"application"`
	CreditReport CreditReportDTO         `json:"credit_report"`
	RiskAnalysis RiskAnalysisDTO         `json:"risk_analysis"`
}

// CreditReportDTO mirrors the stub bureau report captured at submission time.
type CreditReportDTO struct {
	Score        int    `json:"score"`
	Band         string `json:"band"`
	OpenAccounts int    `json:"open_accounts"`
	Delinquent   bool   `json:"delinquent"`
}

// RiskAnalysisDTO mirrors the computed risk metrics captured at submission time.
type RiskAnalysisDTO struct {
	DebtToIncome   decimal.Decimal `json:"debt_to_income"`
	RiskBand       string          `json:"risk_band"`
	Recommendation string          `json:"recommendation"`
}

// ToReviewTaskResponse converts a domain.HumanReviewTask to its DTO
func ToReviewTaskResponse(task *domain.HumanReviewTask) ReviewTaskResponse {
	app := task.Input.Application
	resp := ReviewTaskResponse{
		TaskID:     task.TaskID,
		WorkflowID: task.WorkflowID,
		State:      string(task.State),
		ClaimantID: task.ClaimantID,
		Input: ReviewTaskInput{
			Application: ToLoanApplicationResponse(&app),
			CreditReport: CreditReportDTO{
				Score:        task.Input.CreditReport.Score,
				Band:         task.Input.CreditReport.Band,
				OpenAccounts: task.Input.CreditReport.OpenAccounts,
				Delinquent:   task.Input.CreditReport.Delinquent,
			},
			RiskAnalysis: RiskAnalysisDTO{
				DebtToIncome:   task.Input.RiskAnalysis.DebtToIncome,
				RiskBand:       task.Input.RiskAnalysis.RiskBand,
				Recommendation: string(task.Input.RiskAnalysis.Recommendation),
			},
		},
		Notes:       task.Notes,
		CreatedAt:   task.CreatedAt,
		CompletedAt: task.CompletedAt,
	}
	if task.Decision != nil {
		dec := string(*task.Decision)
		resp.Decision = &dec
	}
	return resp
}

// ToListReviewTaskResponse converts a slice of review tasks to DTOs
func ToListReviewTaskResponse(tasks []domain.HumanReviewTask) []ReviewTaskResponse {
	res := make([]ReviewTaskResponse, len(tasks))
	for i, task := range tasks {
		res[i] = ToReviewTaskResponse(&task)
	}
	return res
}

// CompleteReviewRequest defines the data submitted when a reviewer decides an application.
type CompleteReviewRequest struct {
	Decision string `json:"decision" binding:"required,oneof=APPROVED REJECTED"`
	Notes    string `json:"notes"`
}

// CustomerTaskResponse is the customer-facing view of their application's review task.
type CustomerTaskResponse struct {
	Found bool                `json:"found"`
	Task  *ReviewTaskResponse `json:"task,omitempty"`
}
