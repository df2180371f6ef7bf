package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sekrobank/sekro_bank_api/internal/core/domain"
)

// ReviewTaskReader defines read operations for human review tasks
type ReviewTaskReader interface {
	// FindTaskByID retrieves a specific task by its unique identifier.
	FindTaskByID(ctx context.Context, taskID string) (*domain.HumanReviewTask, error)

	// FindTaskByWorkflowID retrieves the task created for a loan application workflow, if any.
	FindTaskByWorkflowID(ctx context.Context, workflowID string) (*domain.HumanReviewTask, error)

	// ListOpenTasks retrieves all tasks not yet completed, oldest first.
	ListOpenTasks(ctx context.Context) ([]domain.HumanReviewTask, error)
}

// ReviewTaskWriter defines write operations for human review tasks
type ReviewTaskWriter interface {
	// SaveTaskInTx persists a new review task within a caller-managed transaction,
	// so task creation commits or rolls back with the application it tracks.
	SaveTaskInTx(ctx context.Context, tx pgx.Tx, task domain.HumanReviewTask) error

	// ClaimTask atomically assigns an open, unclaimed task to a reviewer.
	// It returns apperrors.ErrConflict when the task is already claimed or completed.
	ClaimTask(ctx context.Context, taskID string, reviewerID string) error

	// ReleaseTask clears the claim held by the given reviewer.
	// It returns apperrors.ErrForbidden when a different reviewer holds the claim.
	ReleaseTask(ctx context.Context, taskID string, reviewerID string) error

	// CompleteTaskInTx records the decision and completes the task within a transaction.
	// It returns apperrors.ErrConflict when the task is already completed.
	CompleteTaskInTx(ctx context.Context, tx pgx.Tx, taskID string, reviewerID string, decision domain.ReviewDecision, notes string, now time.Time) error
}

// ReviewTaskRepositoryFacade combines all review-task repository interfaces
type ReviewTaskRepositoryFacade interface {
	ReviewTaskReader
	ReviewTaskWriter
}

// ReviewTaskRepositoryWithTx extends ReviewTaskRepositoryFacade with transaction capabilities
type ReviewTaskRepositoryWithTx interface {
	ReviewTaskRepositoryFacade
	TransactionManager
}
