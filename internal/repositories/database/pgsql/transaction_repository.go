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
	"github.com/sekrobank/sekro_bank_api/internal/utils/pagination"
)

const transactionColumns = `transaction_id, account_id, transaction_type, amount, direction, status, description, transfer_group_id, recipient_routing_number, recipient_account_last4, idempotency_key, created_at, created_by, posted_at`

type PgxTransactionRepository struct {
	BaseRepository
}

// newPgxTransactionRepository creates a new repository for ledger transaction data.
func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryWithTx {
	return &PgxTransactionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxTransactionRepository implements portsrepo.TransactionRepositoryWithTx
var _ portsrepo.TransactionRepositoryWithTx = (*PgxTransactionRepository)(nil)

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.AccountID,
		&m.TransactionType,
		&m.Amount,
		&m.Direction,
		&m.Status,
		&m.Description,
		&m.TransferGroupID,
		&m.RecipientRoutingNumber,
		&m.RecipientAccountLast4,
		&m.IdempotencyKey,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.PostedAt,
	)
	return m, err
}

// SaveTransactionsInTx persists one or more transaction rows within a given transaction.
func (r *PgxTransactionRepository) SaveTransactionsInTx(ctx context.Context, tx pgx.Tx, transactions []domain.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	batch := &pgx.Batch{}
	for _, txn := range transactions {
		m := mapping.ToModelTransaction(txn)
		batch.Queue(query,
			m.TransactionID,
			m.AccountID,
			m.TransactionType,
			m.Amount,
			m.Direction,
			m.Status,
			m.Description,
			m.TransferGroupID,
			m.RecipientRoutingNumber,
			m.RecipientAccountLast4,
			m.IdempotencyKey,
			m.CreatedAt,
			m.CreatedBy,
			m.PostedAt,
		)
	}

	br := tx.SendBatch(ctx, batch)
	err := br.Close()
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: transaction already recorded", apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to execute transaction insert batch: %w", err)
	}
	return nil
}

// FindTransactionByID retrieves a transaction by its ID.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE transaction_id = $1;
	`
	m, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction by ID %s: %w", transactionID, err)
	}
	d := mapping.ToDomainTransaction(m)
	return &d, nil
}

// FindTransactionByIdempotencyKey retrieves the transaction recorded under a key, if any.
func (r *PgxTransactionRepository) FindTransactionByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE idempotency_key = $1
		ORDER BY created_at
		LIMIT 1;
	`
	m, err := scanTransaction(r.Pool.QueryRow(ctx, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction by idempotency key: %w", err)
	}
	d := mapping.ToDomainTransaction(m)
	return &d, nil
}

// FindTransactionsByTransferGroup retrieves all legs recorded under a transfer group ID.
func (r *PgxTransactionRepository) FindTransactionsByTransferGroup(ctx context.Context, transferGroupID string) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE transfer_group_id = $1
		ORDER BY transaction_id;
	`
	rows, err := r.Pool.Query(ctx, query, transferGroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for transfer group %s: %w", transferGroupID, err)
	}
	defer rows.Close()

	txns := []models.Transaction{}
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row for transfer group %s: %w", transferGroupID, err)
		}
		txns = append(txns, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows for transfer group %s: %w", transferGroupID, err)
	}

	return mapping.ToDomainTransactionSlice(txns), nil
}

// ListTransactionsByAccountID retrieves a page of an account's transactions,
// newest first, using (created_at, transaction_id) keyset pagination.
func (r *PgxTransactionRepository) ListTransactionsByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}

	args := []interface{}{accountID, limit + 1}
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1
	`
	if nextToken != nil && *nextToken != "" {
		cursorCreatedAt, cursorID, err := pagination.DecodeCursorToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		query += ` AND (created_at, transaction_id) < ($3, $4)`
		args = append(args, cursorCreatedAt, cursorID)
	}
	query += `
		ORDER BY created_at DESC, transaction_id DESC
		LIMIT $2;
	`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query transactions for account %s: %w", accountID, err)
	}
	defer rows.Close()

	txns := []models.Transaction{}
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan transaction row for account %s: %w", accountID, err)
		}
		txns = append(txns, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating transaction rows for account %s: %w", accountID, err)
	}

	var newNextToken *string
	if len(txns) > limit {
		txns = txns[:limit]
		last := txns[len(txns)-1]
		token := pagination.EncodeCursorToken(last.CreatedAt, last.TransactionID)
		newNextToken = &token
	}

	return mapping.ToDomainTransactionSlice(txns), newNextToken, nil
}

// FindTransactionByIDForUpdate selects a transaction and locks it within a transaction.
func (r *PgxTransactionRepository) FindTransactionByIDForUpdate(ctx context.Context, tx pgx.Tx, transactionID string) (*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE transaction_id = $1
		FOR UPDATE;
	`
	m, err := scanTransaction(tx.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock transaction %s: %w", transactionID, err)
	}
	d := mapping.ToDomainTransaction(m)
	return &d, nil
}

// UpdateTransactionStatusInTx moves a transaction to a terminal status within a transaction.
// Only PENDING transactions can be moved; a settled row is left untouched and
// reported as a conflict.
func (r *PgxTransactionRepository) UpdateTransactionStatusInTx(ctx context.Context, tx pgx.Tx, transactionID string, status domain.TransactionStatus, postedAt time.Time) error {
	query := `
		UPDATE transactions
		SET status = $2, posted_at = $3
		WHERE transaction_id = $1 AND status = $4;
	`
	cmdTag, err := tx.Exec(ctx, query, transactionID, status, postedAt, domain.TxnPending)
	if err != nil {
		return fmt.Errorf("failed to update status for transaction %s: %w", transactionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: transaction %s is not pending", apperrors.ErrConflict, transactionID)
	}
	return nil
}
