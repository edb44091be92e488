package services

import (
	"context"

	"github.com/sahelimmo/lotissement_app/internal/core/domain"
	"github.com/sahelimmo/lotissement_app/internal/dto"
)

// BuyerReaderSvc defines read operations for buyer data
type BuyerReaderSvc interface {
	// GetBuyerByID retrieves a specific buyer by its ID.
	GetBuyerByID(ctx context.Context, agencyID string, buyerID string, requestingUserID string) (*domain.Buyer, error)

	// ListBuyers retrieves a paginated list of buyers in an agency.
	ListBuyers(ctx context.Context, agencyID string, requestingUserID string, limit, offset int) ([]domain.Buyer, error)
}

// BuyerWriterSvc defines write operations for buyer data
type BuyerWriterSvc interface {
	// CreateBuyer persists a new buyer.
	CreateBuyer(ctx context.Context, agencyID string, req dto.CreateBuyerRequest, creatorUserID string) (*domain.Buyer, error)

	// UpdateBuyer updates an existing buyer's details.
	UpdateBuyer(ctx context.Context, agencyID string, buyerID string, req dto.UpdateBuyerRequest, requestingUserID string) (*domain.Buyer, error)
}

// BuyerSvcFacade combines all buyer-related service interfaces
type BuyerSvcFacade interface {
	BuyerReaderSvc
	BuyerWriterSvc
}
