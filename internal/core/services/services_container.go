package services

import (
	portsrepo "github.com/sekrobank/sekro_bank_api/internal/core/ports/repositories"
	portssvc "github.com/sekrobank/sekro_bank_api/internal/core/ports/services"
	"github.com/sekrobank/sekro_bank_api/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Account = NewAccountService(repos.AccountRepo, repos.TransactionRepo)
	container.User = NewUserService(repos.UserRepo, repos.AccountRepo)
	container.Token = NewTokenService(cfg, container.User)

	riskSvc := NewRiskService()
	container.Origination = NewOriginationService(repos.LoanRepo, repos.AccountRepo, repos.TransactionRepo, repos.ReviewTaskRepo, riskSvc)
	container.Review = NewReviewService(repos.ReviewTaskRepo, repos.LoanRepo)
	container.Servicing = NewServicingService(repos.LoanRepo, repos.AccountRepo, repos.TransactionRepo, repos.AutopayRepo)

	return container
}
