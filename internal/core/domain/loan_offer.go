package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OfferID identifies an entry in the fixed term catalog.
type OfferID string

const (
	Offer12 OfferID = "OFFER_12"
	Offer24 OfferID = "OFFER_24"
	Offer36 OfferID = "OFFER_36"
)

// OfferCatalog lists the fixed terms generated for every approved application.
var OfferCatalog = []struct {
	OfferID    OfferID
	TermMonths int
}{
	{Offer12, 12},
	{Offer24, 24},
	{Offer36, 36},
}

// LoanOffer is an immutable proposed loan term generated while the parent
// application is in OFFERS_PRESENTED. Exactly one may be selected; selection
// voids all siblings.
type LoanOffer struct {
	ID             string          `json:"id"` // Primary Key (UUID)
	ApplicationID  string          `json:"applicationID"`
	OfferID        OfferID         `json:"offerID"`
	TermMonths     int             `json:"termMonths"`
	APR            decimal.Decimal `json:"apr"` // Annual percentage rate, e.g. 9.49
	LoanAmount     decimal.Decimal `json:"loanAmount"`
	MonthlyPayment decimal.Decimal `json:"monthlyPayment"`
	TotalPayment   decimal.Decimal `json:"totalPayment"`
	Void           bool            `json:"void"`
	Selected       bool            `json:"selected"`
	CreatedAt      time.Time       `json:"createdAt"`
}
