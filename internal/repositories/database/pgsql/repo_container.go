package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/sahelimmo/lotissement_app/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	agencyRepo := newPgxAgencyRepository(dbPool)
	userRepo := newPgxUserRepository(dbPool)
	subdivisionRepo := newPgxSubdivisionRepository(dbPool)
	unitRepo := newPgxUnitRepository(dbPool)
	buyerRepo := newPgxBuyerRepository(dbPool)
	saleRepo := newPgxSaleRepository(dbPool, unitRepo)
	reportingRepo := newReportingRepository(dbPool)
	apiTokenRepo := newPgxAPITokenRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AgencyRepo:      agencyRepo,
		UserRepo:        userRepo,
		SubdivisionRepo: subdivisionRepo,
		UnitRepo:        unitRepo,
		BuyerRepo:       buyerRepo,
		SaleRepo:        saleRepo,
		ReportingRepo:   reportingRepo,
		APITokenRepo:    apiTokenRepo,
	}
}
