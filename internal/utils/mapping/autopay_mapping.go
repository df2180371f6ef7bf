package mapping

import (
	"github.com/sekrobank/sekro_bank_api/internal/core/domain"
	"github.com/sekrobank/sekro_bank_api/internal/models"
)

// ToModelAutopaySchedule converts a domain AutopaySchedule to a model AutopaySchedule
func ToModelAutopaySchedule(d domain.AutopaySchedule) models.AutopaySchedule {
	return models.AutopaySchedule{
		LoanID:           d.LoanID,
		PaymentAccountID: d.PaymentAccountID,
		PaymentAmount:    d.PaymentAmount,
		DayOfMonth:       d.DayOfMonth,
		Paused:           d.Paused,
		LastRunAt:        d.LastRunAt,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAutopaySchedule converts a model AutopaySchedule to a domain AutopaySchedule
func ToDomainAutopaySchedule(m models.AutopaySchedule) domain.AutopaySchedule {
	return domain.AutopaySchedule{
		LoanID:           m.LoanID,
		PaymentAccountID: m.PaymentAccountID,
		PaymentAmount:    m.PaymentAmount,
		DayOfMonth:       m.DayOfMonth,
		Paused:           m.Paused,
		LastRunAt:        m.LastRunAt,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAutopayScheduleSlice converts a slice of model AutopaySchedules to domain schedules
func ToDomainAutopayScheduleSlice(ms []models.AutopaySchedule) []domain.AutopaySchedule {
	ds := make([]domain.AutopaySchedule, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAutopaySchedule(m)
	}
	return ds
}
