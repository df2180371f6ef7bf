package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sekrobank/sekro_bank_api/internal/apperrors"
	"github.com/sekrobank/sekro_bank_api/internal/core/domain"
	portsrepo "github.com/sekrobank/sekro_bank_api/internal/core/ports/repositories"
	portssvc "github.com/sekrobank/sekro_bank_api/internal/core/ports/services"
	"github.com/sekrobank/sekro_bank_api/internal/dto"
	"github.com/sekrobank/sekro_bank_api/internal/middleware"
)

var (
	ErrActiveApplication = errors.New("an application is already in progress")
	ErrOfferNotAvailable = errors.New("offer is not available for selection")
)

// Automated screening thresholds. Applications failing either are rejected
// without reaching the review queue.
var (
	minCreditScore  = 450
	maxDebtToIncome = decimal.NewFromFloat(0.85)
)

// originationService drives loan applications from submission to funding.
type originationService struct {
	loanRepo    portsrepo.LoanRepositoryWithTx
	accountRepo portsrepo.AccountRepositoryWithTx
	txnRepo     portsrepo.TransactionRepositoryWithTx
	taskRepo    portsrepo.ReviewTaskRepositoryWithTx
	riskSvc     portssvc.RiskSvc
}

// NewOriginationService creates a new origination service.
func NewOriginationService(
	loanRepo portsrepo.LoanRepositoryWithTx,
	accountRepo portsrepo.AccountRepositoryWithTx,
	txnRepo portsrepo.TransactionRepositoryWithTx,
	taskRepo portsrepo.ReviewTaskRepositoryWithTx,
	riskSvc portssvc.RiskSvc,
) portssvc.OriginationSvcFacade {
	return &originationService{
		loanRepo:    loanRepo,
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		taskRepo:    taskRepo,
		riskSvc:     riskSvc,
	}
}

// Ensure originationService implements the portssvc.OriginationSvcFacade interface
var _ portssvc.OriginationSvcFacade = (*originationService)(nil)

// SubmitApplication validates and persists a new application, runs the
// automated checks and either decides it or queues it for human review.
func (s *originationService) SubmitApplication(ctx context.Context, req dto.ApplyLoanRequest, userID string, idempotencyKey string) (*domain.LoanApplication, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.RequestedAmount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: requested amount must be positive", apperrors.ErrValidation)
	}
	if req.AnnualIncome.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: annual income must be positive", apperrors.ErrValidation)
	}
	if req.ExistingDebt.IsNegative() {
		return nil, fmt.Errorf("%w: existing debt cannot be negative", apperrors.ErrValidation)
	}

	// The disbursement target must be the applicant's own open account.
	destination, err := s.accountRepo.FindAccountByID(ctx, req.DestinationAccountID)
	if err != nil {
		return nil, err
	}
	if destination.OwnerID != userID {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("account %s not found", req.DestinationAccountID))
	}
	if !destination.IsOpen() {
		return nil, fmt.Errorf("%w: destination account is closed", apperrors.ErrConflict)
	}

	// One live application per customer.
	if existing, err := s.loanRepo.FindActiveApplicationByUser(ctx, userID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
	} else if existing != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrDuplicate, ErrActiveApplication)
	}

	// The bureau pull happens before anything is written so a failed pull
	// leaves no half-submitted application behind.
	report, err := s.riskSvc.PullCreditReport(ctx, userID, req.CreditScore)
	if err != nil {
		return nil, fmt.Errorf("failed to pull credit report: %w", err)
	}

	now := time.Now().UTC()
	application := domain.LoanApplication{
		ApplicationID:        uuid.NewString(),
		UserID:               userID,
		RequestedAmount:      req.RequestedAmount,
		Purpose:              req.Purpose,
		EmploymentStatus:     req.EmploymentStatus,
		DeclaredIncome:       req.AnnualIncome,
		DeclaredDebt:         req.ExistingDebt,
		DestinationAccountID: req.DestinationAccountID,
		Status:               domain.AppSubmitted,
		CreatedAt:            now,
	}
	analysis := s.riskSvc.Analyze(ctx, application, report)

	// Application insert, screening outcome and task creation commit as one
	// unit. A failure anywhere rolls the whole submission back instead of
	// stranding the application mid-workflow.
	tx, err := s.loanRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.loanRepo.Rollback(ctx, tx)

	if err := s.loanRepo.SaveApplicationInTx(ctx, tx, application); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// A concurrent submission won the active-application slot.
			return nil, fmt.Errorf("%w: %s", apperrors.ErrDuplicate, ErrActiveApplication)
		}
		return nil, err
	}

	if err := s.loanRepo.TransitionApplicationStatusInTx(ctx, tx, application.ApplicationID, domain.AppSubmitted, domain.AppUnderReview, "", now); err != nil {
		return nil, err
	}
	application.Status = domain.AppUnderReview

	// Hard automated screening: clearly unqualified applications are
	// rejected without occupying the review queue.
	if report.Score < minCreditScore || analysis.DebtToIncome.GreaterThan(maxDebtToIncome) {
		reason := "Automated screening: application does not meet minimum lending criteria"
		decidedAt := time.Now().UTC()
		if err := s.loanRepo.TransitionApplicationStatusInTx(ctx, tx, application.ApplicationID, domain.AppUnderReview, domain.AppRejected, reason, decidedAt); err != nil {
			return nil, err
		}
		if err := s.loanRepo.Commit(ctx, tx); err != nil {
			return nil, err
		}
		application.Status = domain.AppRejected
		application.DecisionReason = reason
		application.DecidedAt = &decidedAt
		logger.Info("Application auto-rejected", slog.String("application_id", application.ApplicationID))
		return &application, nil
	}

	task := domain.HumanReviewTask{
		TaskID:     uuid.NewString(),
		WorkflowID: application.ApplicationID,
		State:      domain.TaskOpen,
		Input: domain.ReviewTaskInput{
			Application:  application,
			CreditReport: report,
			RiskAnalysis: analysis,
		},
		CreatedAt: now,
	}
	if err := s.taskRepo.SaveTaskInTx(ctx, tx, task); err != nil {
		logger.Error("Failed to create review task", slog.String("application_id", application.ApplicationID), slog.String("error", err.Error()))
		return nil, err
	}

	if err := s.loanRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	logger.Info("Application queued for review",
		slog.String("application_id", application.ApplicationID),
		slog.String("task_id", task.TaskID),
		slog.String("risk_band", analysis.RiskBand),
	)
	return &application, nil
}

// GetApplication retrieves an application, enforcing ownership.
func (s *originationService) GetApplication(ctx context.Context, applicationID string, userID string) (*domain.LoanApplication, error) {
	application, err := s.loanRepo.FindApplicationByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if application.UserID != userID {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("application %s not found", applicationID))
	}
	return application, nil
}

// ListApplications retrieves the user's applications, newest first.
func (s *originationService) ListApplications(ctx context.Context, userID string) ([]domain.LoanApplication, error) {
	return s.loanRepo.ListApplicationsByUser(ctx, userID)
}

// GetOffers retrieves the offers presented for an approved application.
func (s *originationService) GetOffers(ctx context.Context, applicationID string, userID string) ([]domain.LoanOffer, error) {
	application, err := s.GetApplication(ctx, applicationID, userID)
	if err != nil {
		return nil, err
	}
	switch application.Status {
	case domain.AppOffersPresented, domain.AppOfferAccepted, domain.AppFunded:
		return s.loanRepo.FindOffersByApplicationID(ctx, applicationID)
	default:
		return nil, fmt.Errorf("%w: application %s has no offers in status %s", apperrors.ErrConflict, applicationID, application.Status)
	}
}

// AcceptOffer records the customer's offer choice and funds the loan.
func (s *originationService) AcceptOffer(ctx context.Context, applicationID string, offerID string, userID string, idempotencyKey string) (*domain.LoanAccount, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	application, err := s.GetApplication(ctx, applicationID, userID)
	if err != nil {
		return nil, err
	}

	// Replaying an accept after funding returns the existing loan.
	if application.Status == domain.AppFunded {
		return s.findLoanByApplication(ctx, applicationID, userID)
	}
	if application.Status != domain.AppOffersPresented {
		return nil, fmt.Errorf("%w: application %s is in status %s", apperrors.ErrConflict, applicationID, application.Status)
	}

	offers, err := s.loanRepo.FindOffersByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	var selected *domain.LoanOffer
	for i := range offers {
		if string(offers[i].OfferID) == offerID {
			selected = &offers[i]
			break
		}
	}
	if selected == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("offer %s not found for application %s", offerID, applicationID))
	}
	if selected.Void {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrConflict, ErrOfferNotAvailable)
	}

	now := time.Now().UTC()

	tx, err := s.loanRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.loanRepo.Rollback(ctx, tx)

	if err := s.loanRepo.TransitionApplicationStatusInTx(ctx, tx, applicationID, domain.AppOffersPresented, domain.AppOfferAccepted, "", now); err != nil {
		return nil, err
	}
	if err := s.loanRepo.SetSelectedOfferInTx(ctx, tx, applicationID, string(selected.OfferID), now); err != nil {
		return nil, err
	}
	if err := s.loanRepo.SelectOfferInTx(ctx, tx, applicationID, selected.ID); err != nil {
		return nil, err
	}

	loan := domain.LoanAccount{
		LoanID:               uuid.NewString(),
		LoanApplicationID:    applicationID,
		LoanOfferID:          selected.ID,
		UserID:               userID,
		DestinationAccountID: application.DestinationAccountID,
		PrincipalAmount:      selected.LoanAmount,
		OutstandingBalance:   selected.LoanAmount,
		InterestRate:         selected.APR,
		TermMonths:           selected.TermMonths,
		MonthlyPayment:       selected.MonthlyPayment,
		TotalPayment:         selected.TotalPayment,
		Status:               domain.LoanActive,
		CreatedAt:            now,
	}
	if err := s.loanRepo.SaveLoanAccountInTx(ctx, tx, loan); err != nil {
		return nil, err
	}

	// Disburse the principal to the destination account.
	accounts, err := s.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, []string{application.DestinationAccountID})
	if err != nil {
		return nil, err
	}
	destination := accounts[application.DestinationAccountID]
	if !destination.IsOpen() {
		return nil, fmt.Errorf("%w: destination account is closed", apperrors.ErrConflict)
	}

	disbursement := domain.Transaction{
		TransactionID:   uuid.NewString(),
		AccountID:       application.DestinationAccountID,
		TransactionType: domain.TypeLoanDisbursement,
		Amount:          selected.LoanAmount,
		Direction:       domain.Credit,
		Status:          domain.TxnPosted,
		Description:     fmt.Sprintf("Loan disbursement (%d months)", selected.TermMonths),
		CreatedAt:       now,
		CreatedBy:       userID,
		PostedAt:        &now,
	}
	if idempotencyKey != "" {
		disbursement.IdempotencyKey = &idempotencyKey
	}
	if err := s.txnRepo.SaveTransactionsInTx(ctx, tx, []domain.Transaction{disbursement}); err != nil {
		return nil, err
	}
	changes := map[string]decimal.Decimal{application.DestinationAccountID: selected.LoanAmount}
	if err := s.accountRepo.UpdateAccountBalancesInTx(ctx, tx, changes, userID, now); err != nil {
		return nil, err
	}

	loanTxn := domain.LoanTransaction{
		ID:                   uuid.NewString(),
		LoanID:               loan.LoanID,
		UserID:               userID,
		TransactionType:      domain.LoanTxnDisbursement,
		Amount:               selected.LoanAmount,
		AccountTransactionID: &disbursement.TransactionID,
		Status:               domain.TxnPosted,
		InitiatedBy:          domain.InitiatedByCustomer,
		Description:          "Principal disbursement",
		CreatedAt:            now,
		PostedAt:             &now,
	}
	if err := s.loanRepo.SaveLoanTransactionInTx(ctx, tx, loanTxn); err != nil {
		return nil, err
	}

	if err := s.loanRepo.TransitionApplicationStatusInTx(ctx, tx, applicationID, domain.AppOfferAccepted, domain.AppFunded, "", now); err != nil {
		return nil, err
	}
	if err := s.loanRepo.SetFundedInTx(ctx, tx, applicationID, now); err != nil {
		return nil, err
	}

	if err := s.loanRepo.Commit(ctx, tx); err != nil {
		logger.Error("Failed to commit loan funding", slog.String("application_id", applicationID), slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Loan funded",
		slog.String("loan_id", loan.LoanID),
		slog.String("application_id", applicationID),
		slog.String("offer_id", string(selected.OfferID)),
	)
	return &loan, nil
}

// DeclineOffers records the customer walking away from the presented offers.
func (s *originationService) DeclineOffers(ctx context.Context, applicationID string, userID string) (*domain.LoanApplication, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	application, err := s.GetApplication(ctx, applicationID, userID)
	if err != nil {
		return nil, err
	}

	// Declining an already declined application is a no-op replay.
	if application.Status == domain.AppDeclined {
		return application, nil
	}
	if application.Status != domain.AppOffersPresented {
		return nil, fmt.Errorf("%w: application %s is in status %s", apperrors.ErrConflict, applicationID, application.Status)
	}

	now := time.Now().UTC()

	tx, err := s.loanRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.loanRepo.Rollback(ctx, tx)

	if err := s.loanRepo.TransitionApplicationStatusInTx(ctx, tx, applicationID, domain.AppOffersPresented, domain.AppDeclined, "Customer declined the presented offers", now); err != nil {
		return nil, err
	}
	if err := s.loanRepo.VoidOffersInTx(ctx, tx, applicationID); err != nil {
		return nil, err
	}

	if err := s.loanRepo.Commit(ctx, tx); err != nil {
		logger.Error("Failed to commit offer decline", slog.String("application_id", applicationID), slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Offers declined", slog.String("application_id", applicationID))
	return s.loanRepo.FindApplicationByID(ctx, applicationID)
}

// findLoanByApplication locates the loan funded from an application.
func (s *originationService) findLoanByApplication(ctx context.Context, applicationID string, userID string) (*domain.LoanAccount, error) {
	loans, err := s.loanRepo.ListLoansByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range loans {
		if loans[i].LoanApplicationID == applicationID {
			return &loans[i], nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("loan for application %s not found", applicationID))
}

// GetCustomerTask retrieves the customer-facing view of the application's
// review task. It returns (nil, nil) when no task exists.
func (s *originationService) GetCustomerTask(ctx context.Context, applicationID string, userID string) (*domain.HumanReviewTask, error) {
	if _, err := s.GetApplication(ctx, applicationID, userID); err != nil {
		return nil, err
	}
	task, err := s.taskRepo.FindTaskByWorkflowID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return task, nil
}
