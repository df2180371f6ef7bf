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

const autopayColumns = `loan_id, payment_account_id, payment_amount, day_of_month, paused, last_run_at, created_at, created_by, last_updated_at, last_updated_by`

type PgxAutopayRepository struct {
	BaseRepository
}

// newPgxAutopayRepository creates a new repository for autopay schedules.
func newPgxAutopayRepository(pool *pgxpool.Pool) portsrepo.AutopayRepositoryFacade {
	return &PgxAutopayRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxAutopayRepository implements portsrepo.AutopayRepositoryFacade
var _ portsrepo.AutopayRepositoryFacade = (*PgxAutopayRepository)(nil)

func scanAutopay(row pgx.Row) (models.AutopaySchedule, error) {
	var m models.AutopaySchedule
	err := row.Scan(
		&m.LoanID,
		&m.PaymentAccountID,
		&m.PaymentAmount,
		&m.DayOfMonth,
		&m.Paused,
		&m.LastRunAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// UpsertSchedule creates or replaces the schedule for a loan. Replacing keeps
// last_run_at so a reconfigured schedule cannot double-fire within a period.
func (r *PgxAutopayRepository) UpsertSchedule(ctx context.Context, schedule domain.AutopaySchedule) error {
	m := mapping.ToModelAutopaySchedule(schedule)
	query := `
		INSERT INTO autopay_schedules (` + autopayColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (loan_id) DO UPDATE
		SET payment_account_id = EXCLUDED.payment_account_id,
		    payment_amount = EXCLUDED.payment_amount,
		    day_of_month = EXCLUDED.day_of_month,
		    paused = EXCLUDED.paused,
		    last_updated_at = EXCLUDED.last_updated_at,
		    last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err := r.Pool.Exec(ctx, query,
		m.LoanID,
		m.PaymentAccountID,
		m.PaymentAmount,
		m.DayOfMonth,
		m.Paused,
		m.LastRunAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert autopay schedule for loan %s: %w", m.LoanID, err)
	}
	return nil
}

// FindScheduleByLoanID retrieves the schedule configured for a loan, if any.
func (r *PgxAutopayRepository) FindScheduleByLoanID(ctx context.Context, loanID string) (*domain.AutopaySchedule, error) {
	query := `
		SELECT ` + autopayColumns + `
		FROM autopay_schedules
		WHERE loan_id = $1;
	`
	m, err := scanAutopay(r.Pool.QueryRow(ctx, query, loanID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find autopay schedule for loan %s: %w", loanID, err)
	}
	d := mapping.ToDomainAutopaySchedule(m)
	return &d, nil
}

// ListActiveSchedules retrieves all schedules that are not paused.
func (r *PgxAutopayRepository) ListActiveSchedules(ctx context.Context) ([]domain.AutopaySchedule, error) {
	query := `
		SELECT ` + autopayColumns + `
		FROM autopay_schedules
		WHERE paused = FALSE
		ORDER BY loan_id;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active autopay schedules: %w", err)
	}
	defer rows.Close()

	schedules := []models.AutopaySchedule{}
	for rows.Next() {
		m, err := scanAutopay(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan autopay schedule row: %w", err)
		}
		schedules = append(schedules, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating autopay schedule rows: %w", err)
	}

	return mapping.ToDomainAutopayScheduleSlice(schedules), nil
}

// SetPaused pauses or resumes the schedule for a loan.
func (r *PgxAutopayRepository) SetPaused(ctx context.Context, loanID string, paused bool, userID string, now time.Time) error {
	query := `
		UPDATE autopay_schedules
		SET paused = $2, last_updated_at = $3, last_updated_by = $4
		WHERE loan_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, loanID, paused, now, userID)
	if err != nil {
		return fmt.Errorf("failed to set paused on autopay schedule for loan %s: %w", loanID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteSchedule removes the schedule for a loan.
func (r *PgxAutopayRepository) DeleteSchedule(ctx context.Context, loanID string) error {
	query := `
		DELETE FROM autopay_schedules
		WHERE loan_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, loanID)
	if err != nil {
		return fmt.Errorf("failed to delete autopay schedule for loan %s: %w", loanID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// MarkRun records a scheduler run. The WHERE clause is a compare-and-set on
// last_run_at so overlapping scheduler passes attempt each period once.
func (r *PgxAutopayRepository) MarkRun(ctx context.Context, loanID string, ranAt time.Time, lastRunBefore *time.Time) error {
	query := `
		UPDATE autopay_schedules
		SET last_run_at = $2
		WHERE loan_id = $1 AND last_run_at IS NOT DISTINCT FROM $3;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, loanID, ranAt, lastRunBefore)
	if err != nil {
		return fmt.Errorf("failed to mark autopay run for loan %s: %w", loanID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		if _, findErr := r.FindScheduleByLoanID(ctx, loanID); errors.Is(findErr, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("%w: autopay schedule for loan %s was already run", apperrors.ErrConflict, loanID)
	}
	return nil
}
