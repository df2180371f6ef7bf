package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AutopaySchedule is the single recurring payment configuration of a loan.
// At most one exists per loan; deletion is explicit and independent of the
// paused flag.
type AutopaySchedule struct {
	LoanID           string          `json:"loanID"` // 1:1 owner, also the key
	PaymentAccountID string          `json:"paymentAccountID"`
	PaymentAmount    decimal.Decimal `json:"paymentAmount"`
	DayOfMonth       int             `json:"dayOfMonth"` // 1..28, avoids month-length ambiguity
	Paused           bool            `json:"paused"`
	LastRunAt        *time.Time      `json:"lastRunAt,omitempty"`
	AuditFields
}

// NextRuns derives the next n run times strictly after `from`, in UTC.
// The schedule fires at 09:00 UTC on its day of month. Paused schedules
// produce no runs. The result is deterministic: it depends only on the
// schedule configuration and `from`.
func (s AutopaySchedule) NextRuns(from time.Time, n int) []time.Time {
	if s.Paused || n <= 0 {
		return nil
	}
	from = from.UTC()
	runs := make([]time.Time, 0, n)
	candidate := time.Date(from.Year(), from.Month(), s.DayOfMonth, 9, 0, 0, 0, time.UTC)
	for len(runs) < n {
		if candidate.After(from) {
			runs = append(runs, candidate)
		}
		candidate = time.Date(candidate.Year(), candidate.Month()+1, s.DayOfMonth, 9, 0, 0, 0, time.UTC)
	}
	return runs
}

// DueAt reports whether the schedule should fire at `now`: the current
// period's run time has passed and no run has been recorded for this period.
func (s AutopaySchedule) DueAt(now time.Time) bool {
	if s.Paused {
		return false
	}
	now = now.UTC()
	runTime := time.Date(now.Year(), now.Month(), s.DayOfMonth, 9, 0, 0, 0, time.UTC)
	if now.Before(runTime) {
		return false
	}
	// At most one attempt per period.
	if s.LastRunAt != nil && !s.LastRunAt.UTC().Before(runTime) {
		return false
	}
	return true
}
