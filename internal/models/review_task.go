package models

import "time"

// ReviewTask is the persistence shape of a human review task. Input is the
// JSON-encoded snapshot (application + credit report + risk analysis).
type ReviewTask struct {
	TaskID      string     `db:"task_id"`
	WorkflowID  string     `db:"workflow_id"`
	State       string     `db:"state"`
	ClaimantID  *string    `db:"claimant_id"`
	Input       []byte     `db:"input"` // JSONB
	Decision    *string    `db:"decision"`
	Notes       string     `db:"notes"`
	CreatedAt   time.Time  `db:"created_at"`
	CompletedAt *time.Time `db:"completed_at"`
}
