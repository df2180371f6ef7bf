package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sekrobank/sekro_bank_api/internal/apperrors"
	"github.com/sekrobank/sekro_bank_api/internal/core/domain"
	portsrepo "github.com/sekrobank/sekro_bank_api/internal/core/ports/repositories"
	"github.com/sekrobank/sekro_bank_api/internal/models"
	"github.com/sekrobank/sekro_bank_api/internal/utils/mapping"
	"github.com/shopspring/decimal"
)

const (
	applicationColumns = `application_id, user_id, requested_amount, purpose, employment_status, declared_income, declared_debt, destination_account_id, status, decision_reason, selected_offer_id, created_at, decided_at, accepted_at, funded_at`
	offerColumns       = `id, application_id, offer_id, term_months, apr, loan_amount, monthly_payment, total_payment, void, selected, created_at`
	loanColumns        = `loan_id, loan_application_id, loan_offer_id, user_id, destination_account_id, principal_amount, outstanding_balance, interest_rate, term_months, monthly_payment, total_payment, status, created_at, closed_at`
	loanTxnColumns     = `id, loan_id, user_id, transaction_type, amount, payment_account_id, account_transaction_id, status, initiated_by, description, created_at, posted_at`
)

type PgxLoanRepository struct {
	BaseRepository
}

// newPgxLoanRepository creates a new repository for loan origination and servicing data.
func newPgxLoanRepository(pool *pgxpool.Pool) portsrepo.LoanRepositoryWithTx {
	return &PgxLoanRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxLoanRepository implements portsrepo.LoanRepositoryWithTx
var _ portsrepo.LoanRepositoryWithTx = (*PgxLoanRepository)(nil)

func scanApplication(row pgx.Row) (models.LoanApplication, error) {
	var m models.LoanApplication
	err := row.Scan(
		&m.ApplicationID,
		&m.UserID,
		&m.RequestedAmount,
		&m.Purpose,
		&m.EmploymentStatus,
		&m.DeclaredIncome,
		&m.DeclaredDebt,
		&m.DestinationAccountID,
		&m.Status,
		&m.DecisionReason,
		&m.SelectedOfferID,
		&m.CreatedAt,
		&m.DecidedAt,
		&m.AcceptedAt,
		&m.FundedAt,
	)
	return m, err
}

func scanOffer(row pgx.Row) (models.LoanOffer, error) {
	var m models.LoanOffer
	err := row.Scan(
		&m.ID,
		&m.ApplicationID,
		&m.OfferID,
		&m.TermMonths,
		&m.APR,
		&m.LoanAmount,
		&m.MonthlyPayment,
		&m.TotalPayment,
		&m.Void,
		&m.Selected,
		&m.CreatedAt,
	)
	return m, err
}

func scanLoan(row pgx.Row) (models.LoanAccount, error) {
	var m models.LoanAccount
	err := row.Scan(
		&m.LoanID,
		&m.LoanApplicationID,
		&m.LoanOfferID,
		&m.UserID,
		&m.DestinationAccountID,
		&m.PrincipalAmount,
		&m.OutstandingBalance,
		&m.InterestRate,
		&m.TermMonths,
		&m.MonthlyPayment,
		&m.TotalPayment,
		&m.Status,
		&m.CreatedAt,
		&m.ClosedAt,
	)
	return m, err
}

func scanLoanTxn(row pgx.Row) (models.LoanTransaction, error) {
	var m models.LoanTransaction
	err := row.Scan(
		&m.ID,
		&m.LoanID,
		&m.UserID,
		&m.TransactionType,
		&m.Amount,
		&m.PaymentAccountID,
		&m.AccountTransactionID,
		&m.Status,
		&m.InitiatedBy,
		&m.Description,
		&m.CreatedAt,
		&m.PostedAt,
	)
	return m, err
}

// SaveApplicationInTx persists a new application within a caller-managed transaction.
func (r *PgxLoanRepository) SaveApplicationInTx(ctx context.Context, tx pgx.Tx, application domain.LoanApplication) error {
	m := mapping.ToModelLoanApplication(application)
	query := `
		INSERT INTO loan_applications (` + applicationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := tx.Exec(ctx, query,
		m.ApplicationID,
		m.UserID,
		m.RequestedAmount,
		m.Purpose,
		m.EmploymentStatus,
		m.DeclaredIncome,
		m.DeclaredDebt,
		m.DestinationAccountID,
		m.Status,
		m.DecisionReason,
		m.SelectedOfferID,
		m.CreatedAt,
		m.DecidedAt,
		m.AcceptedAt,
		m.FundedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: user %s already has an active application", apperrors.ErrDuplicate, m.UserID)
		}
		return fmt.Errorf("failed to save loan application %s: %w", m.ApplicationID, err)
	}
	return nil
}

// FindApplicationByID retrieves an application by its ID.
func (r *PgxLoanRepository) FindApplicationByID(ctx context.Context, applicationID string) (*domain.LoanApplication, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM loan_applications
		WHERE application_id = $1;
	`
	m, err := scanApplication(r.Pool.QueryRow(ctx, query, applicationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find loan application by ID %s: %w", applicationID, err)
	}
	d := mapping.ToDomainLoanApplication(m)
	return &d, nil
}

// FindActiveApplicationByUser retrieves the user's non-terminal application, if any.
func (r *PgxLoanRepository) FindActiveApplicationByUser(ctx context.Context, userID string) (*domain.LoanApplication, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM loan_applications
		WHERE user_id = $1 AND status NOT IN ($2, $3, $4)
		ORDER BY created_at DESC
		LIMIT 1;
	`
	m, err := scanApplication(r.Pool.QueryRow(ctx, query, userID,
		domain.AppRejected, domain.AppDeclined, domain.AppFunded))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find active application for user %s: %w", userID, err)
	}
	d := mapping.ToDomainLoanApplication(m)
	return &d, nil
}

// ListApplicationsByUser retrieves all applications submitted by a user, newest first.
func (r *PgxLoanRepository) ListApplicationsByUser(ctx context.Context, userID string) ([]domain.LoanApplication, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM loan_applications
		WHERE user_id = $1
		ORDER BY created_at DESC;
	`
	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications for user %s: %w", userID, err)
	}
	defer rows.Close()

	apps := []domain.LoanApplication{}
	for rows.Next() {
		m, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application row for user %s: %w", userID, err)
		}
		apps = append(apps, mapping.ToDomainLoanApplication(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating application rows for user %s: %w", userID, err)
	}

	return apps, nil
}

func (r *PgxLoanRepository) transitionApplication(ctx context.Context, exec execer, applicationID string, from, to domain.LoanApplicationStatus, reason string, now time.Time) error {
	query := `
		UPDATE loan_applications
		SET status = $3,
		    decision_reason = CASE WHEN $4 = '' THEN decision_reason ELSE $4 END,
		    decided_at = CASE WHEN $3 IN ($5, $6, $7) THEN $8 ELSE decided_at END
		WHERE application_id = $1 AND status = $2;
	`
	cmdTag, err := exec.Exec(ctx, query, applicationID, from, to, reason,
		domain.AppApproved, domain.AppRejected, domain.AppDeclined, now)
	if err != nil {
		return fmt.Errorf("failed to transition application %s to %s: %w", applicationID, to, err)
	}
	if cmdTag.RowsAffected() == 0 {
		// Either the application doesn't exist or it moved out from under us.
		if _, findErr := r.FindApplicationByID(ctx, applicationID); errors.Is(findErr, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("%w: application %s is no longer %s", apperrors.ErrConflict, applicationID, from)
	}
	return nil
}

// TransitionApplicationStatusInTx moves an application from an expected status
// to a new one within a caller-managed transaction.
func (r *PgxLoanRepository) TransitionApplicationStatusInTx(ctx context.Context, tx pgx.Tx, applicationID string, from, to domain.LoanApplicationStatus, reason string, now time.Time) error {
	return r.transitionApplication(ctx, tx, applicationID, from, to, reason, now)
}

// SetSelectedOfferInTx records the accepted offer on the application within a transaction.
func (r *PgxLoanRepository) SetSelectedOfferInTx(ctx context.Context, tx pgx.Tx, applicationID string, offerID string, now time.Time) error {
	query := `
		UPDATE loan_applications
		SET selected_offer_id = $2, accepted_at = $3
		WHERE application_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query, applicationID, offerID, now)
	if err != nil {
		return fmt.Errorf("failed to set selected offer on application %s: %w", applicationID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SetFundedInTx stamps the application funded within a transaction.
func (r *PgxLoanRepository) SetFundedInTx(ctx context.Context, tx pgx.Tx, applicationID string, now time.Time) error {
	query := `
		UPDATE loan_applications
		SET funded_at = $2
		WHERE application_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query, applicationID, now)
	if err != nil {
		return fmt.Errorf("failed to stamp application %s funded: %w", applicationID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SaveOffersInTx persists the generated offer set within a transaction.
func (r *PgxLoanRepository) SaveOffersInTx(ctx context.Context, tx pgx.Tx, offers []domain.LoanOffer) error {
	query := `
		INSERT INTO loan_offers (` + offerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	batch := &pgx.Batch{}
	for _, offer := range offers {
		m := mapping.ToModelLoanOffer(offer)
		batch.Queue(query,
			m.ID,
			m.ApplicationID,
			m.OfferID,
			m.TermMonths,
			m.APR,
			m.LoanAmount,
			m.MonthlyPayment,
			m.TotalPayment,
			m.Void,
			m.Selected,
			m.CreatedAt,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to execute offer insert batch: %w", err)
	}
	return nil
}

// FindOfferByID retrieves an offer row by its unique identifier.
func (r *PgxLoanRepository) FindOfferByID(ctx context.Context, id string) (*domain.LoanOffer, error) {
	query := `
		SELECT ` + offerColumns + `
		FROM loan_offers
		WHERE id = $1;
	`
	m, err := scanOffer(r.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find offer by ID %s: %w", id, err)
	}
	d := mapping.ToDomainLoanOffer(m)
	return &d, nil
}

// FindOffersByApplicationID retrieves all offers generated for an application.
func (r *PgxLoanRepository) FindOffersByApplicationID(ctx context.Context, applicationID string) ([]domain.LoanOffer, error) {
	query := `
		SELECT ` + offerColumns + `
		FROM loan_offers
		WHERE application_id = $1
		ORDER BY term_months;
	`
	rows, err := r.Pool.Query(ctx, query, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query offers for application %s: %w", applicationID, err)
	}
	defer rows.Close()

	offers := []models.LoanOffer{}
	for rows.Next() {
		m, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan offer row for application %s: %w", applicationID, err)
		}
		offers = append(offers, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating offer rows for application %s: %w", applicationID, err)
	}

	return mapping.ToDomainLoanOfferSlice(offers), nil
}

// SelectOfferInTx marks one offer selected and voids its siblings within a transaction.
func (r *PgxLoanRepository) SelectOfferInTx(ctx context.Context, tx pgx.Tx, applicationID string, offerRowID string) error {
	selectQuery := `
		UPDATE loan_offers
		SET selected = TRUE
		WHERE id = $1 AND application_id = $2 AND void = FALSE;
	`
	cmdTag, err := tx.Exec(ctx, selectQuery, offerRowID, applicationID)
	if err != nil {
		return fmt.Errorf("failed to select offer %s: %w", offerRowID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: offer %s is not available for application %s", apperrors.ErrConflict, offerRowID, applicationID)
	}

	voidQuery := `
		UPDATE loan_offers
		SET void = TRUE
		WHERE application_id = $1 AND id <> $2;
	`
	if _, err := tx.Exec(ctx, voidQuery, applicationID, offerRowID); err != nil {
		return fmt.Errorf("failed to void sibling offers for application %s: %w", applicationID, err)
	}
	return nil
}

// VoidOffersInTx voids every offer of an application within a transaction.
func (r *PgxLoanRepository) VoidOffersInTx(ctx context.Context, tx pgx.Tx, applicationID string) error {
	query := `
		UPDATE loan_offers
		SET void = TRUE
		WHERE application_id = $1;
	`
	if _, err := tx.Exec(ctx, query, applicationID); err != nil {
		return fmt.Errorf("failed to void offers for application %s: %w", applicationID, err)
	}
	return nil
}

// SaveLoanAccountInTx persists a newly funded loan within a transaction.
func (r *PgxLoanRepository) SaveLoanAccountInTx(ctx context.Context, tx pgx.Tx, loan domain.LoanAccount) error {
	m := mapping.ToModelLoanAccount(loan)
	query := `
		INSERT INTO loan_accounts (` + loanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := tx.Exec(ctx, query,
		m.LoanID,
		m.LoanApplicationID,
		m.LoanOfferID,
		m.UserID,
		m.DestinationAccountID,
		m.PrincipalAmount,
		m.OutstandingBalance,
		m.InterestRate,
		m.TermMonths,
		m.MonthlyPayment,
		m.TotalPayment,
		m.Status,
		m.CreatedAt,
		m.ClosedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: application %s is already funded", apperrors.ErrDuplicate, m.LoanApplicationID)
		}
		return fmt.Errorf("failed to save loan account %s: %w", m.LoanID, err)
	}
	return nil
}

// FindLoanByID retrieves a loan by its ID.
func (r *PgxLoanRepository) FindLoanByID(ctx context.Context, loanID string) (*domain.LoanAccount, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loan_accounts
		WHERE loan_id = $1;
	`
	m, err := scanLoan(r.Pool.QueryRow(ctx, query, loanID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find loan by ID %s: %w", loanID, err)
	}
	d := mapping.ToDomainLoanAccount(m)
	return &d, nil
}

// ListLoansByUser retrieves all loans belonging to a user, newest first.
func (r *PgxLoanRepository) ListLoansByUser(ctx context.Context, userID string) ([]domain.LoanAccount, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loan_accounts
		WHERE user_id = $1
		ORDER BY created_at DESC;
	`
	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query loans for user %s: %w", userID, err)
	}
	defer rows.Close()

	loans := []models.LoanAccount{}
	for rows.Next() {
		m, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan row for user %s: %w", userID, err)
		}
		loans = append(loans, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating loan rows for user %s: %w", userID, err)
	}

	return mapping.ToDomainLoanAccountSlice(loans), nil
}

// FindLoanByIDForUpdate selects a loan and locks it within a transaction.
func (r *PgxLoanRepository) FindLoanByIDForUpdate(ctx context.Context, tx pgx.Tx, loanID string) (*domain.LoanAccount, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loan_accounts
		WHERE loan_id = $1
		FOR UPDATE;
	`
	m, err := scanLoan(tx.QueryRow(ctx, query, loanID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock loan %s: %w", loanID, err)
	}
	d := mapping.ToDomainLoanAccount(m)
	return &d, nil
}

// UpdateLoanBalanceInTx sets the outstanding balance and status within a transaction.
func (r *PgxLoanRepository) UpdateLoanBalanceInTx(ctx context.Context, tx pgx.Tx, loanID string, outstanding decimal.Decimal, status domain.LoanAccountStatus, closedAt *time.Time) error {
	query := `
		UPDATE loan_accounts
		SET outstanding_balance = $2, status = $3, closed_at = $4
		WHERE loan_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query, loanID, outstanding, status, closedAt)
	if err != nil {
		return fmt.Errorf("failed to update balance for loan %s: %w", loanID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ListLoanTransactions retrieves all loan transactions for a loan, newest first.
func (r *PgxLoanRepository) ListLoanTransactions(ctx context.Context, loanID string) ([]domain.LoanTransaction, error) {
	query := `
		SELECT ` + loanTxnColumns + `
		FROM loan_transactions
		WHERE loan_id = $1
		ORDER BY created_at DESC, id DESC;
	`
	rows, err := r.Pool.Query(ctx, query, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to query loan transactions for loan %s: %w", loanID, err)
	}
	defer rows.Close()

	txns := []models.LoanTransaction{}
	for rows.Next() {
		m, err := scanLoanTxn(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan transaction row for loan %s: %w", loanID, err)
		}
		txns = append(txns, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating loan transaction rows for loan %s: %w", loanID, err)
	}

	return mapping.ToDomainLoanTransactionSlice(txns), nil
}

func (r *PgxLoanRepository) saveLoanTxn(ctx context.Context, exec execer, loanTxn domain.LoanTransaction) error {
	m := mapping.ToModelLoanTransaction(loanTxn)
	query := `
		INSERT INTO loan_transactions (` + loanTxnColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := exec.Exec(ctx, query,
		m.ID,
		m.LoanID,
		m.UserID,
		m.TransactionType,
		m.Amount,
		m.PaymentAccountID,
		m.AccountTransactionID,
		m.Status,
		m.InitiatedBy,
		m.Description,
		m.CreatedAt,
		m.PostedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save loan transaction %s: %w", m.ID, err)
	}
	return nil
}

// SaveLoanTransaction persists a loan transaction outside of any caller transaction.
func (r *PgxLoanRepository) SaveLoanTransaction(ctx context.Context, loanTxn domain.LoanTransaction) error {
	return r.saveLoanTxn(ctx, r.Pool, loanTxn)
}

// SaveLoanTransactionInTx persists a loan transaction within a transaction.
func (r *PgxLoanRepository) SaveLoanTransactionInTx(ctx context.Context, tx pgx.Tx, loanTxn domain.LoanTransaction) error {
	return r.saveLoanTxn(ctx, tx, loanTxn)
}
