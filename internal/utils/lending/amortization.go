package lending

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	hundred      = decimal.NewFromInt(100)
	monthsInYear = decimal.NewFromInt(12)
)

// MonthlyPayment computes the level (annuity) monthly payment for a loan of
// the given principal, APR (as a percentage, e.g. 8.49) and term in months.
// The result is rounded to cents.
func MonthlyPayment(principal decimal.Decimal, apr decimal.Decimal, termMonths int) (decimal.Decimal, error) {
	if termMonths <= 0 {
		return decimal.Zero, fmt.Errorf("term must be positive, got %d", termMonths)
	}
	if principal.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("principal must be positive, got %s", principal.String())
	}
	if apr.IsNegative() {
		return decimal.Zero, fmt.Errorf("apr must not be negative, got %s", apr.String())
	}

	n := decimal.NewFromInt(int64(termMonths))
	if apr.IsZero() {
		return principal.Div(n).Round(2), nil
	}

	// monthly rate r = APR / 100 / 12; payment = P * r * (1+r)^n / ((1+r)^n - 1)
	r := apr.Div(hundred).Div(monthsInYear)
	factor := decimal.NewFromInt(1).Add(r).Pow(n)
	payment := principal.Mul(r).Mul(factor).Div(factor.Sub(decimal.NewFromInt(1)))
	return payment.Round(2), nil
}

// TotalPayment returns the sum of all scheduled payments for the term.
func TotalPayment(monthlyPayment decimal.Decimal, termMonths int) decimal.Decimal {
	return monthlyPayment.Mul(decimal.NewFromInt(int64(termMonths))).Round(2)
}
