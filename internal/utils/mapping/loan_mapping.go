package mapping

import (
	"github.com/sekrobank/sekro_bank_api/internal/core/domain"
	"github.com/sekrobank/sekro_bank_api/internal/models"
)

// ToModelLoanApplication converts a domain LoanApplication to a model LoanApplication
func ToModelLoanApplication(d domain.LoanApplication) models.LoanApplication {
	return models.LoanApplication{
		ApplicationID:        d.ApplicationID,
		UserID:               d.UserID,
		RequestedAmount:      d.RequestedAmount,
		Purpose:              d.Purpose,
		EmploymentStatus:     string(d.EmploymentStatus),
		DeclaredIncome:       d.DeclaredIncome,
		DeclaredDebt:         d.DeclaredDebt,
		DestinationAccountID: d.DestinationAccountID,
		Status:               string(d.Status),
		DecisionReason:       d.DecisionReason,
		SelectedOfferID:      d.SelectedOfferID,
		CreatedAt:            d.CreatedAt,
		DecidedAt:            d.DecidedAt,
		AcceptedAt:           d.AcceptedAt,
		FundedAt:             d.FundedAt,
	}
}

// ToDomainLoanApplication converts a model LoanApplication to a domain LoanApplication
func ToDomainLoanApplication(m models.LoanApplication) domain.LoanApplication {
	return domain.LoanApplication{
		ApplicationID:        m.ApplicationID,
		UserID:               m.UserID,
		RequestedAmount:      m.RequestedAmount,
		Purpose:              m.Purpose,
		EmploymentStatus:     domain.EmploymentStatus(m.EmploymentStatus),
		DeclaredIncome:       m.DeclaredIncome,
		DeclaredDebt:         m.DeclaredDebt,
		DestinationAccountID: m.DestinationAccountID,
		Status:               domain.LoanApplicationStatus(m.Status),
		DecisionReason:       m.DecisionReason,
		SelectedOfferID:      m.SelectedOfferID,
		CreatedAt:            m.CreatedAt,
		DecidedAt:            m.DecidedAt,
		AcceptedAt:           m.AcceptedAt,
		FundedAt:             m.FundedAt,
	}
}

// ToModelLoanOffer converts a domain LoanOffer to a model LoanOffer
func ToModelLoanOffer(d domain.LoanOffer) models.LoanOffer {
	return models.LoanOffer{
		ID:             d.ID,
		ApplicationID:  d.ApplicationID,
		OfferID:        string(d.OfferID),
		TermMonths:     d.TermMonths,
		APR:            d.APR,
		LoanAmount:     d.LoanAmount,
		MonthlyPayment: d.MonthlyPayment,
		TotalPayment:   d.TotalPayment,
		Void:           d.Void,
		Selected:       d.Selected,
		CreatedAt:      d.CreatedAt,
	}
}

// ToDomainLoanOffer converts a model LoanOffer to a domain LoanOffer
func ToDomainLoanOffer(m models.LoanOffer) domain.LoanOffer {
	return domain.LoanOffer{
		ID:             m.ID,
		ApplicationID:  m.ApplicationID,
		OfferID:        domain.OfferID(m.OfferID),
		TermMonths:     m.TermMonths,
		APR:            m.APR,
		LoanAmount:     m.LoanAmount,
		MonthlyPayment: m.MonthlyPayment,
		TotalPayment:   m.TotalPayment,
		Void:           m.Void,
		Selected:       m.Selected,
		CreatedAt:      m.CreatedAt,
	}
}

// ToDomainLoanOfferSlice converts a slice of model LoanOffers to a slice of domain LoanOffers
func ToDomainLoanOfferSlice(ms []models.LoanOffer) []domain.LoanOffer {
	ds := make([]domain.LoanOffer, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainLoanOffer(m)
	}
	return ds
}

// ToModelLoanAccount converts a domain LoanAccount to a model LoanAccount
func ToModelLoanAccount(d domain.LoanAccount) models.LoanAccount {
	return models.LoanAccount{
		LoanID:               d.LoanID,
		LoanApplicationID:    d.LoanApplicationID,
		LoanOfferID:          d.LoanOfferID,
		UserID:               d.UserID,
		DestinationAccountID: d.DestinationAccountID,
		PrincipalAmount:      d.PrincipalAmount,
		OutstandingBalance:   d.OutstandingBalance,
		InterestRate:         d.InterestRate,
		TermMonths:           d.TermMonths,
		MonthlyPayment:       d.MonthlyPayment,
		TotalPayment:         d.TotalPayment,
		Status:               string(d.Status),
		CreatedAt:            d.CreatedAt,
		ClosedAt:             d.ClosedAt,
	}
}

// ToDomainLoanAccount converts a model LoanAccount to a domain LoanAccount
func ToDomainLoanAccount(m models.LoanAccount) domain.LoanAccount {
	return domain.LoanAccount{
		LoanID:               m.LoanID,
		LoanApplicationID:    m.LoanApplicationID,
		LoanOfferID:          m.LoanOfferID,
		UserID:               m.UserID,
		DestinationAccountID: m.DestinationAccountID,
		PrincipalAmount:      m.PrincipalAmount,
		OutstandingBalance:   m.OutstandingBalance,
		InterestRate:         m.InterestRate,
		TermMonths:           m.TermMonths,
		MonthlyPayment:       m.MonthlyPayment,
		TotalPayment:         m.TotalPayment,
		Status:               domain.LoanAccountStatus(m.Status),
		CreatedAt:            m.CreatedAt,
		ClosedAt:             m.ClosedAt,
	}
}

// ToDomainLoanAccountSlice converts a slice of model LoanAccounts to a slice of domain LoanAccounts
func ToDomainLoanAccountSlice(ms []models.LoanAccount) []domain.LoanAccount {
	ds := make([]domain.LoanAccount, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainLoanAccount(m)
	}
	return ds
}

// ToModelLoanTransaction converts a domain LoanTransaction to a model LoanTransaction
func ToModelLoanTransaction(d domain.LoanTransaction) models.LoanTransaction {
	return models.LoanTransaction{
		ID:                   d.ID,
		LoanID:               d.LoanID,
		UserID:               d.UserID,
		TransactionType:      string(d.TransactionType),
		Amount:               d.Amount,
		PaymentAccountID:     d.PaymentAccountID,
		AccountTransactionID: d.AccountTransactionID,
		Status:               string(d.Status),
		InitiatedBy:          string(d.InitiatedBy),
		Description:          d.Description,
		CreatedAt:            d.CreatedAt,
		PostedAt:             d.PostedAt,
	}
}

// ToDomainLoanTransaction converts a model LoanTransaction to a domain LoanTransaction
func ToDomainLoanTransaction(m models.LoanTransaction) domain.LoanTransaction {
	return domain.LoanTransaction{
		ID:                   m.ID,
		LoanID:               m.LoanID,
		UserID:               m.UserID,
		TransactionType:      domain.LoanTransactionType(m.TransactionType),
		Amount:               m.Amount,
		PaymentAccountID:     m.PaymentAccountID,
		AccountTransactionID: m.AccountTransactionID,
		Status:               domain.TransactionStatus(m.Status),
		InitiatedBy:          domain.LoanInitiator(m.InitiatedBy),
		Description:          m.Description,
		CreatedAt:            m.CreatedAt,
		PostedAt:             m.PostedAt,
	}
}

// ToDomainLoanTransactionSlice converts a slice of model LoanTransactions to a slice of domain LoanTransactions
func ToDomainLoanTransactionSlice(ms []models.LoanTransaction) []domain.LoanTransaction {
	ds := make([]domain.LoanTransaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainLoanTransaction(m)
	}
	return ds
}
