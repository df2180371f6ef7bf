package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sekrobank/sekro_bank_api/internal/apperrors"
	"github.com/sekrobank/sekro_bank_api/internal/core/domain"
	portsrepo "github.com/sekrobank/sekro_bank_api/internal/core/ports/repositories"
	portssvc "github.com/sekrobank/sekro_bank_api/internal/core/ports/services"
	"github.com/sekrobank/sekro_bank_api/internal/middleware"
	"github.com/sekrobank/sekro_bank_api/internal/utils/lending"
)

var (
	ErrNotesRequired  = errors.New("rejection requires explanatory notes")
	ErrTaskNotClaimed = errors.New("task must be claimed before completion")
)

// baseAPRByTerm is the rate card for the fixed offer catalog.
var baseAPRByTerm = map[int]decimal.Decimal{
	12: decimal.RequireFromString("8.49"),
	24: decimal.RequireFromString("9.99"),
	36: decimal.RequireFromString("11.49"),
}

// aprAdjustmentByRiskBand prices the applicant's risk into the rate card.
var aprAdjustmentByRiskBand = map[string]decimal.Decimal{
	"LOW":    decimal.RequireFromString("-1.00"),
	"MEDIUM": decimal.Zero,
	"HIGH":   decimal.RequireFromString("2.00"),
}

// reviewService implements the employee review task protocol.
type reviewService struct {
	taskRepo portsrepo.ReviewTaskRepositoryWithTx
	loanRepo portsrepo.LoanRepositoryWithTx
}

// NewReviewService creates a new review service.
func NewReviewService(taskRepo portsrepo.ReviewTaskRepositoryWithTx, loanRepo portsrepo.LoanRepositoryWithTx) portssvc.ReviewSvcFacade {
	return &reviewService{
		taskRepo: taskRepo,
		loanRepo: loanRepo,
	}
}

// Ensure reviewService implements the portssvc.ReviewSvcFacade interface
var _ portssvc.ReviewSvcFacade = (*reviewService)(nil)

// ListOpenTasks retrieves the review queue, oldest first.
func (s *reviewService) ListOpenTasks(ctx context.Context) ([]domain.HumanReviewTask, error) {
	return s.taskRepo.ListOpenTasks(ctx)
}

// GetTask retrieves a single task by ID.
func (s *reviewService) GetTask(ctx context.Context, taskID string) (*domain.HumanReviewTask, error) {
	return s.taskRepo.FindTaskByID(ctx, taskID)
}

// ClaimTask assigns an unclaimed task to the reviewer. Re-claiming a task the
// reviewer already holds is a no-op.
func (s *reviewService) ClaimTask(ctx context.Context, taskID string, reviewerID string) (*domain.HumanReviewTask, error) {
	if err := s.taskRepo.ClaimTask(ctx, taskID, reviewerID); err != nil {
		return nil, err
	}
	return s.taskRepo.FindTaskByID(ctx, taskID)
}

// ReleaseTask returns the reviewer's claimed task to the queue.
func (s *reviewService) ReleaseTask(ctx context.Context, taskID string, reviewerID string) (*domain.HumanReviewTask, error) {
	if err := s.taskRepo.ReleaseTask(ctx, taskID, reviewerID); err != nil {
		return nil, err
	}
	return s.taskRepo.FindTaskByID(ctx, taskID)
}

// CompleteTask records the reviewer's decision and advances the application.
// An APPROVED decision also generates the offer set, atomically.
func (s *reviewService) CompleteTask(ctx context.Context, taskID string, reviewerID string, decision domain.ReviewDecision, notes string, idempotencyKey string) (*domain.HumanReviewTask, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if decision != domain.DecisionApproved && decision != domain.DecisionRejected {
		return nil, fmt.Errorf("%w: decision must be APPROVED or REJECTED", apperrors.ErrValidation)
	}
	if decision == domain.DecisionRejected && len(strings.TrimSpace(notes)) < 5 {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrNotesRequired)
	}

	task, err := s.taskRepo.FindTaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.State == domain.TaskCompleted {
		return nil, fmt.Errorf("%w: task %s is already completed", apperrors.ErrConflict, taskID)
	}
	if !task.IsClaimedBy(reviewerID) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrTaskNotClaimed)
	}

	now := time.Now().UTC()
	applicationID := task.WorkflowID

	tx, err := s.taskRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.taskRepo.Rollback(ctx, tx)

	if err := s.taskRepo.CompleteTaskInTx(ctx, tx, taskID, reviewerID, decision, notes, now); err != nil {
		return nil, err
	}

	switch decision {
	case domain.DecisionApproved:
		if err := s.loanRepo.TransitionApplicationStatusInTx(ctx, tx, applicationID, domain.AppUnderReview, domain.AppApproved, notes, now); err != nil {
			return nil, err
		}
		offers, err := s.generateOffers(task.Input, now)
		if err != nil {
			return nil, err
		}
		if err := s.loanRepo.SaveOffersInTx(ctx, tx, offers); err != nil {
			return nil, err
		}
		if err := s.loanRepo.TransitionApplicationStatusInTx(ctx, tx, applicationID, domain.AppApproved, domain.AppOffersPresented, "", now); err != nil {
			return nil, err
		}
	case domain.DecisionRejected:
		if err := s.loanRepo.TransitionApplicationStatusInTx(ctx, tx, applicationID, domain.AppUnderReview, domain.AppRejected, notes, now); err != nil {
			return nil, err
		}
	}

	if err := s.taskRepo.Commit(ctx, tx); err != nil {
		logger.Error("Failed to commit review decision", slog.String("task_id", taskID), slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Review task completed",
		slog.String("task_id", taskID),
		slog.String("application_id", applicationID),
		slog.String("decision", string(decision)),
	)
	return s.taskRepo.FindTaskByID(ctx, taskID)
}

// generateOffers prices the fixed term catalog for the application using the
// risk band captured on the task.
func (s *reviewService) generateOffers(input domain.ReviewTaskInput, now time.Time) ([]domain.LoanOffer, error) {
	amount := input.Application.RequestedAmount
	adjustment := aprAdjustmentByRiskBand[input.RiskAnalysis.RiskBand]

	offers := make([]domain.LoanOffer, 0, len(domain.OfferCatalog))
	for _, entry := range domain.OfferCatalog {
		apr := baseAPRByTerm[entry.TermMonths].Add(adjustment)
		monthly, err := lending.MonthlyPayment(amount, apr, entry.TermMonths)
		if err != nil {
			return nil, fmt.Errorf("failed to price offer %s: %w", entry.OfferID, err)
		}
		offers = append(offers, domain.LoanOffer{
			ID:             uuid.NewString(),
			ApplicationID:  input.Application.ApplicationID,
			OfferID:        entry.OfferID,
			TermMonths:     entry.TermMonths,
			APR:            apr,
			LoanAmount:     amount,
			MonthlyPayment: monthly,
			TotalPayment:   lending.TotalPayment(monthly, entry.TermMonths),
			CreatedAt:      now,
		})
	}
	return offers, nil
}
