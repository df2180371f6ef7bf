package mapping

import (
	"github.com/sekrobank/sekro_bank_api/internal/core/domain"
	"github.com/sekrobank/sekro_bank_api/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:          d.TransactionID,
		AccountID:              d.AccountID,
		TransactionType:        string(d.TransactionType),
		Amount:                 d.Amount,
		Direction:              string(d.Direction),
		Status:                 string(d.Status),
		Description:            d.Description,
		TransferGroupID:        d.TransferGroupID,
		RecipientRoutingNumber: d.RecipientRoutingNumber,
		RecipientAccountLast4:  d.RecipientAccountLast4,
		IdempotencyKey:         d.IdempotencyKey,
		CreatedAt:              d.CreatedAt,
		CreatedBy:              d.CreatedBy,
		PostedAt:               d.PostedAt,
	}
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:          m.TransactionID,
		AccountID:              m.AccountID,
		TransactionType:        domain.TransactionType(m.TransactionType),
		Amount:                 m.Amount,
		Direction:              domain.TransactionDirection(m.Direction),
		Status:                 domain.TransactionStatus(m.Status),
		Description:            m.Description,
		TransferGroupID:        m.TransferGroupID,
		RecipientRoutingNumber: m.RecipientRoutingNumber,
		RecipientAccountLast4:  m.RecipientAccountLast4,
		IdempotencyKey:         m.IdempotencyKey,
		CreatedAt:              m.CreatedAt,
		CreatedBy:              m.CreatedBy,
		PostedAt:               m.PostedAt,
	}
}

// ToDomainTransactionSlice converts a slice of model Transactions to a slice of domain Transactions
func ToDomainTransactionSlice(ms []models.Transaction) []domain.Transaction {
	ds := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}
