package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/sekrobank/sekro_bank_api/internal/core/domain"
	portssvc "github.com/sekrobank/sekro_bank_api/internal/core/ports/services"
)

// riskService produces the credit report and risk analysis attached to
// review tasks. The bureau pull is a stub that trusts the declared score;
// a real integration would replace PullCreditReport only.
type riskService struct{}

// NewRiskService creates a new risk service.
func NewRiskService() portssvc.RiskSvc {
	return &riskService{}
}

// Ensure riskService implements the portssvc.RiskSvc interface
var _ portssvc.RiskSvc = (*riskService)(nil)

// PullCreditReport fetches the stub bureau report for an applicant.
func (s *riskService) PullCreditReport(ctx context.Context, userID string, declaredScore int) (domain.CreditReport, error) {
	return domain.CreditReport{
		Score:        declaredScore,
		Band:         creditBand(declaredScore),
		OpenAccounts: 3,
		Delinquent:   declaredScore < 500,
	}, nil
}

func creditBand(score int) string {
	switch {
	case score >= 750:
		return "EXCELLENT"
	case score >= 650:
		return "GOOD"
	case score >= 550:
		return "FAIR"
	default:
		return "POOR"
	}
}

// Analyze computes debt-to-income and a risk band from the application and report.
func (s *riskService) Analyze(ctx context.Context, application domain.LoanApplication, report domain.CreditReport) domain.RiskAnalysis {
	dti := decimal.NewFromInt(1)
	if application.DeclaredIncome.IsPositive() {
		dti = application.DeclaredDebt.Div(application.DeclaredIncome).Round(4)
	}

	riskBand := "HIGH"
	switch {
	case report.Score >= 700 && dti.LessThan(decimal.NewFromFloat(0.3)):
		riskBand = "LOW"
	case report.Score >= 600 && dti.LessThan(decimal.NewFromFloat(0.5)):
		riskBand = "MEDIUM"
	}

	recommendation := domain.DecisionRejected
	if report.Score >= 650 && dti.LessThan(decimal.NewFromFloat(0.4)) && !report.Delinquent {
		recommendation = domain.DecisionApproved
	}

	return domain.RiskAnalysis{
		DebtToIncome:   dti,
		RiskBand:       riskBand,
		Recommendation: recommendation,
	}
}
