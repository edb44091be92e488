package services

import (
	portsrepo "github.com/sahelimmo/lotissement_app/internal/core/ports/repositories"
	portssvc "github.com/sahelimmo/lotissement_app/internal/core/ports/services"
	"github.com/sahelimmo/lotissement_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, notifier portssvc.Notifier) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Agency goes first since every tenant-scoped service authorizes through it
	container.Agency = NewAgencyService(repos.AgencyRepo, repos.UserRepo)

	container.User = NewUserService(repos.UserRepo)
	container.Subdivision = NewSubdivisionService(repos.SubdivisionRepo, container.Agency)
	container.Unit = NewUnitService(repos.UnitRepo, repos.SubdivisionRepo, container.Agency)
	container.Buyer = NewBuyerService(repos.BuyerRepo, container.Agency)
	container.Sale = NewSaleService(repos.SaleRepo, repos.UnitRepo, repos.BuyerRepo, container.Agency, notifier)
	container.Reconciliation = NewReconciliationService(repos.SaleRepo, repos.UnitRepo, container.Agency, notifier)
	container.Reporting = NewReportingService(repos.ReportingRepo, container.Agency)

	container.Token = NewTokenService(cfg, container.User)
	container.APIToken = NewAPITokenService(repos.APITokenRepo, container.User)

	return container
}

// Compile-time interface checks for the service implementations.
var (
	_ portssvc.AgencySvcFacade         = (*agencyService)(nil)
	_ portssvc.UserSvcFacade           = (*userService)(nil)
	_ portssvc.SubdivisionSvcFacade    = (*subdivisionService)(nil)
	_ portssvc.UnitSvcFacade           = (*unitService)(nil)
	_ portssvc.BuyerSvcFacade          = (*buyerService)(nil)
	_ portssvc.SaleSvcFacade           = (*saleService)(nil)
	_ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)
	_ portssvc.ReportingService        = (*reportingService)(nil)
	_ portssvc.TokenSvcFacade          = (*tokenService)(nil)
	_ portssvc.APITokenSvc             = (*apiTokenService)(nil)
)
