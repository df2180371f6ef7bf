package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AutopaySchedule is the persistence shape of a loan's recurring payment.
type AutopaySchedule struct {
	LoanID           string          `db:"loan_id"`
	PaymentAccountID string          `db:"payment_account_id"`
	PaymentAmount    decimal.Decimal `db:"payment_amount"`
	DayOfMonth       int             `db:"day_of_month"`
	Paused           bool            `db:"paused"`
	LastRunAt        *time.Time      `db:"last_run_at"`
	AuditFields
}
