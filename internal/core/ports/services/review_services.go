package services

import (
	"context"

	"github.com/sekrobank/sekro_bank_api/internal/core/domain"
)

// ReviewSvcFacade implements the employee review task protocol.
type ReviewSvcFacade interface {
	// ListOpenTasks retrieves the review queue, oldest first.
	ListOpenTasks(ctx context.Context) ([]domain.HumanReviewTask, error)

	// GetTask retrieves a single task by ID.
	GetTask(ctx context.Context, taskID string) (*domain.HumanReviewTask, error)

	// ClaimTask assigns an unclaimed task to the reviewer. Claiming a task
	// someone else holds fails with ErrConflict.
	ClaimTask(ctx context.Context, taskID string, reviewerID string) (*domain.HumanReviewTask, error)

	// ReleaseTask returns the reviewer's claimed task to the queue.
	ReleaseTask(ctx context.Context, taskID string, reviewerID string) (*domain.HumanReviewTask, error)

	// CompleteTask records the reviewer's decision and advances the
	// application to APPROVED (presenting offers) or REJECTED. A REJECTED
	// decision requires explanatory notes. Completing an already completed
	// task fails with ErrConflict.
	CompleteTask(ctx context.Context, taskID string, reviewerID string, decision domain.ReviewDecision, notes string, idempotencyKey string) (*domain.HumanReviewTask, error)
}
