package mapping

import (
	"github.com/sekrobank/sekro_bank_api/internal/core/domain"
	"github.com/sekrobank/sekro_bank_api/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:        d.AccountID,
		OwnerID:          d.OwnerID,
		Name:             d.Name,
		AccountType:      string(d.AccountType),
		AccountNumber:    d.AccountNumber,
		AvailableBalance: d.AvailableBalance,
		Status:           string(d.Status),
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:        m.AccountID,
		OwnerID:          m.OwnerID,
		Name:             m.Name,
		AccountType:      domain.AccountType(m.AccountType),
		AccountNumber:    m.AccountNumber,
		AvailableBalance: m.AvailableBalance,
		Status:           domain.AccountStatus(m.Status),
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAccountSlice converts a slice of model Accounts to a slice of domain Accounts
func ToDomainAccountSlice(ms []models.Account) []domain.Account {
	ds := make([]domain.Account, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAccount(m)
	}
	return ds
}
