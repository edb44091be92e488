package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	AgencyRepo      AgencyRepositoryFacade
	UserRepo        UserRepositoryFacade
	SubdivisionRepo SubdivisionRepositoryWithTx
	UnitRepo        UnitRepositoryWithTx
	BuyerRepo       BuyerRepositoryFacade
	SaleRepo        SaleRepositoryWithTx
	ReportingRepo   ReportingRepository
	APITokenRepo    APITokenRepository
}
