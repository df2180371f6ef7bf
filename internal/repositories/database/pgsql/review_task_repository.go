package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sekrobank/sekro_bank_api/internal/apperrors"
	"github.com/sekrobank/sekro_bank_api/internal/core/domain"
	portsrepo "github.com/sekrobank/sekro_bank_api/internal/core/ports/repositories"
	"github.com/sekrobank/sekro_bank_api/internal/models"
	"github.com/sekrobank/sekro_bank_api/internal/utils/mapping"
)

const reviewTaskColumns = `task_id, workflow_id, state, claimant_id, input, decision, notes, created_at, completed_at`

type PgxReviewTaskRepository struct {
	BaseRepository
}

// newPgxReviewTaskRepository creates a new repository for human review tasks.
func newPgxReviewTaskRepository(pool *pgxpool.Pool) portsrepo.ReviewTaskRepositoryWithTx {
	return &PgxReviewTaskRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxReviewTaskRepository implements portsrepo.ReviewTaskRepositoryWithTx
var _ portsrepo.ReviewTaskRepositoryWithTx = (*PgxReviewTaskRepository)(nil)

func scanReviewTask(row pgx.Row) (models.ReviewTask, error) {
	var m models.ReviewTask
	err := row.Scan(
		&m.TaskID,
		&m.WorkflowID,
		&m.State,
		&m.ClaimantID,
		&m.Input,
		&m.Decision,
		&m.Notes,
		&m.CreatedAt,
		&m.CompletedAt,
	)
	return m, err
}

// SaveTaskInTx persists a new review task within a caller-managed transaction.
func (r *PgxReviewTaskRepository) SaveTaskInTx(ctx context.Context, tx pgx.Tx, task domain.HumanReviewTask) error {
	m, err := mapping.ToModelReviewTask(task)
	if err != nil {
		return fmt.Errorf("failed to encode review task input: %w", err)
	}

	query := `
		INSERT INTO review_tasks (` + reviewTaskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err = tx.Exec(ctx, query,
		m.TaskID,
		m.WorkflowID,
		m.State,
		m.ClaimantID,
		m.Input,
		m.Decision,
		m.Notes,
		m.CreatedAt,
		m.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save review task %s: %w", m.TaskID, err)
	}
	return nil
}

// FindTaskByID retrieves a task by its ID.
func (r *PgxReviewTaskRepository) FindTaskByID(ctx context.Context, taskID string) (*domain.HumanReviewTask, error) {
	query := `
		SELECT ` + reviewTaskColumns + `
		FROM review_tasks
		WHERE task_id = $1;
	`
	m, err := scanReviewTask(r.Pool.QueryRow(ctx, query, taskID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find review task by ID %s: %w", taskID, err)
	}
	d, err := mapping.ToDomainReviewTask(m)
	if err != nil {
		return nil, fmt.Errorf("failed to decode review task %s: %w", taskID, err)
	}
	return &d, nil
}

// FindTaskByWorkflowID retrieves the task created for a loan application workflow, if any.
func (r *PgxReviewTaskRepository) FindTaskByWorkflowID(ctx context.Context, workflowID string) (*domain.HumanReviewTask, error) {
	query := `
		SELECT ` + reviewTaskColumns + `
		FROM review_tasks
		WHERE workflow_id = $1
		ORDER BY created_at DESC
		LIMIT 1;
	`
	m, err := scanReviewTask(r.Pool.QueryRow(ctx, query, workflowID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find review task by workflow %s: %w", workflowID, err)
	}
	d, err := mapping.ToDomainReviewTask(m)
	if err != nil {
		return nil, fmt.Errorf("failed to decode review task for workflow %s: %w", workflowID, err)
	}
	return &d, nil
}

// ListOpenTasks retrieves all tasks not yet completed, oldest first.
func (r *PgxReviewTaskRepository) ListOpenTasks(ctx context.Context) ([]domain.HumanReviewTask, error) {
	query := `
		SELECT ` + reviewTaskColumns + `
		FROM review_tasks
		WHERE state = $1
		ORDER BY created_at;
	`
	rows, err := r.Pool.Query(ctx, query, domain.TaskOpen)
	if err != nil {
		return nil, fmt.Errorf("failed to query open review tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.ReviewTask{}
	for rows.Next() {
		m, err := scanReviewTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review task row: %w", err)
		}
		tasks = append(tasks, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating review task rows: %w", err)
	}

	return mapping.ToDomainReviewTaskSlice(tasks)
}

// ClaimTask atomically assigns an open, unclaimed task to a reviewer.
// The claim is a compare-and-set on claimant_id so two reviewers racing for
// the same task cannot both win.
func (r *PgxReviewTaskRepository) ClaimTask(ctx context.Context, taskID string, reviewerID string) error {
	query := `
		UPDATE review_tasks
		SET claimant_id = $2
		WHERE task_id = $1 AND state = $3 AND (claimant_id IS NULL OR claimant_id = $2);
	`
	cmdTag, err := r.Pool.Exec(ctx, query, taskID, reviewerID, domain.TaskOpen)
	if err != nil {
		return fmt.Errorf("failed to claim review task %s: %w", taskID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		if _, findErr := r.FindTaskByID(ctx, taskID); errors.Is(findErr, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("%w: review task %s is already claimed or completed", apperrors.ErrConflict, taskID)
	}
	return nil
}

// ReleaseTask clears the claim held by the given reviewer.
func (r *PgxReviewTaskRepository) ReleaseTask(ctx context.Context, taskID string, reviewerID string) error {
	query := `
		UPDATE review_tasks
		SET claimant_id = NULL
		WHERE task_id = $1 AND state = $2 AND claimant_id = $3;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, taskID, domain.TaskOpen, reviewerID)
	if err != nil {
		return fmt.Errorf("failed to release review task %s: %w", taskID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		task, findErr := r.FindTaskByID(ctx, taskID)
		if errors.Is(findErr, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		} else if findErr != nil {
			return findErr
		}
		if task.State == domain.TaskCompleted {
			return fmt.Errorf("%w: review task %s is already completed", apperrors.ErrConflict, taskID)
		}
		return fmt.Errorf("%w: review task %s is not claimed by this reviewer", apperrors.ErrForbidden, taskID)
	}
	return nil
}

// CompleteTaskInTx records the decision and completes the task within a transaction.
func (r *PgxReviewTaskRepository) CompleteTaskInTx(ctx context.Context, tx pgx.Tx, taskID string, reviewerID string, decision domain.ReviewDecision, notes string, now time.Time) error {
	query := `
		UPDATE review_tasks
		SET state = $2, decision = $3, notes = $4, completed_at = $5
		WHERE task_id = $1 AND state = $6 AND claimant_id = $7;
	`
	cmdTag, err := tx.Exec(ctx, query, taskID, domain.TaskCompleted, decision, notes, now, domain.TaskOpen, reviewerID)
	if err != nil {
		return fmt.Errorf("failed to complete review task %s: %w", taskID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		task, findErr := r.FindTaskByID(ctx, taskID)
		if errors.Is(findErr, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		} else if findErr != nil {
			return findErr
		}
		if task.State == domain.TaskCompleted {
			return fmt.Errorf("%w: review task %s is already completed", apperrors.ErrConflict, taskID)
		}
		return fmt.Errorf("%w: review task %s is not claimed by this reviewer", apperrors.ErrForbidden, taskID)
	}
	return nil
}
