package services

import (
	"context"

	"github.com/sekrobank/sekro_bank_api/internal/core/domain"
	"github.com/sekrobank/sekro_bank_api/internal/dto"
)

// OriginationSvcFacade drives a loan application from submission to funding.
type OriginationSvcFacade interface {
	// SubmitApplication validates and persists a new application, runs the
	// automated checks and either decides it or queues it for human review.
	SubmitApplication(ctx context.Context, req dto.ApplyLoanRequest, userID string, idempotencyKey string) (*domain.LoanApplication, error)

	// GetApplication retrieves an application, enforcing ownership for customers.
	GetApplication(ctx context.Context, applicationID string, userID string) (*domain.LoanApplication, error)

	// ListApplications retrieves the user's applications, newest first.
	ListApplications(ctx context.Context, userID string) ([]domain.LoanApplication, error)

	// GetOffers retrieves the offers presented for an approved application.
	GetOffers(ctx context.Context, applicationID string, userID string) ([]domain.LoanOffer, error)

	// AcceptOffer records the customer's offer choice and funds the loan:
	// the loan account opens, the principal lands in the destination account
	// and the sibling offers are voided, all atomically.
	AcceptOffer(ctx context.Context, applicationID string, offerID string, userID string, idempotencyKey string) (*domain.LoanAccount, error)

	// DeclineOffers records the customer walking away from the presented
	// offers. The application moves to its terminal DECLINED state and every
	// offer is voided.
	DeclineOffers(ctx context.Context, applicationID string, userID string) (*domain.LoanApplication, error)

	// GetCustomerTask retrieves the customer-facing view of the application's
	// review task, if one exists.
	GetCustomerTask(ctx context.Context, applicationID string, userID string) (*domain.HumanReviewTask, error)
}

// RiskSvc produces the decision package attached to review tasks.
type RiskSvc interface {
	// PullCreditReport fetches the stub bureau report for an applicant.
	PullCreditReport(ctx context.Context, userID string, declaredScore int) (domain.CreditReport, error)

	// Analyze computes debt-to-income and a risk band from the application and report.
	Analyze(ctx context.Context, application domain.LoanApplication, report domain.CreditReport) domain.RiskAnalysis
}
