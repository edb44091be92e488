package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Agency         AgencySvcFacade
	User           UserSvcFacade
	Subdivision    SubdivisionSvcFacade
	Unit           UnitSvcFacade
	Buyer          BuyerSvcFacade
	Sale           SaleSvcFacade
	Reconciliation ReconciliationSvcFacade
	Reporting      ReportingService
	Token          TokenSvcFacade
	APIToken       APITokenSvc
}
