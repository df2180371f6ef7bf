package repositories

import (
	"context"
	"time"

	"github.com/sekrobank/sekro_bank_api/internal/core/domain"
)

// AutopayReader defines read operations for autopay schedules
type AutopayReader interface {
	// FindScheduleByLoanID retrieves the schedule configured for a loan, if any.
	FindScheduleByLoanID(ctx context.Context, loanID string) (*domain.AutopaySchedule, error)

	// ListActiveSchedules retrieves all schedules that are not paused.
	ListActiveSchedules(ctx context.Context) ([]domain.AutopaySchedule, error)
}

// AutopayWriter defines write operations for autopay schedules
type AutopayWriter interface {
	// UpsertSchedule creates or replaces the schedule for a loan.
	UpsertSchedule(ctx context.Context, schedule domain.AutopaySchedule) error

	// SetPaused pauses or resumes the schedule for a loan.
	SetPaused(ctx context.Context, loanID string, paused bool, userID string, now time.Time) error

	// DeleteSchedule removes the schedule for a loan.
	DeleteSchedule(ctx context.Context, loanID string) error

	// MarkRun records a scheduler run, guarding against a concurrent run for the
	// same period. It returns apperrors.ErrConflict when another run already
	// advanced the schedule past lastRunBefore.
	MarkRun(ctx context.Context, loanID string, ranAt time.Time, lastRunBefore *time.Time) error
}

// AutopayRepositoryFacade combines all autopay repository interfaces
type AutopayRepositoryFacade interface {
	AutopayReader
	AutopayWriter
}
