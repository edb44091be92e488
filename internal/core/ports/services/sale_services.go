package services

import (
	"context"

	"github.com/sahelimmo/lotissement_app/internal/core/domain"
	"github.com/sahelimmo/lotissement_app/internal/dto"
)

// SaleReaderSvc defines read operations for sale data
type SaleReaderSvc interface {
	// GetSaleByID retrieves a specific sale by its ID, with its installments.
	GetSaleByID(ctx context.Context, agencyID string, saleID string, requestingUserID string) (*domain.Sale, error)

	// ListSales retrieves a paginated list of sales in an agency.
	ListSales(ctx context.Context, agencyID string, requestingUserID string, params dto.ListSalesParams) (*dto.ListSalesResponse, error)

	// GetSaleProgress recomputes the settlement position of a sale.
	GetSaleProgress(ctx context.Context, agencyID string, saleID string, requestingUserID string) (*domain.SaleProgress, error)

	// GetSaleSnapshot assembles the read-only bundle consumed by document generation.
	GetSaleSnapshot(ctx context.Context, agencyID string, saleID string, requestingUserID string) (*domain.SaleSnapshot, error)
}

// SaleWriterSvc defines write operations for sale data
type SaleWriterSvc interface {
	// CreateSale persists a new sale together with its generated installment
	// schedule and marks the unit sold, atomically.
	CreateSale(ctx context.Context, agencyID string, req dto.CreateSaleRequest, creatorUserID string) (*domain.Sale, error)

	// CancelSale cancels a sale and returns the unit to available. The
	// installment schedule is kept for audit. Completed sales cannot be
	// cancelled.
	CancelSale(ctx context.Context, agencyID string, saleID string, requestingUserID string) error

	// FinalizeSale marks a sale complete. A sale with unsettled installments is
	// only finalized when the request explicitly accepts the outstanding
	// balance; the accepted amount is recorded on the sale.
	FinalizeSale(ctx context.Context, agencyID string, saleID string, req dto.FinalizeSaleRequest, requestingUserID string) (*domain.Sale, error)
}

// SaleSvcFacade combines all sale-related service interfaces
// This is a facade for clients that need access to all operations
type SaleSvcFacade interface {
	SaleReaderSvc
	SaleWriterSvc
}
