package repositories

import (
	"context"

	"github.com/sahelimmo/lotissement_app/internal/core/domain"
)

// BuyerReader defines read operations for buyer data
type BuyerReader interface {
	// FindBuyerByID retrieves a specific buyer by its ID.
	FindBuyerByID(ctx context.Context, buyerID string) (*domain.Buyer, error)

	// ListBuyersByAgency retrieves a paginated list of buyers for a given agency.
	ListBuyersByAgency(ctx context.Context, agencyID string, limit int, offset int) ([]domain.Buyer, error)
}

// BuyerWriter defines write operations for buyer data
type BuyerWriter interface {
	// SaveBuyer persists a new buyer.
	SaveBuyer(ctx context.Context, buyer domain.Buyer) error

	// UpdateBuyer updates an existing buyer's details.
	UpdateBuyer(ctx context.Context, buyer domain.Buyer) error
}

// BuyerRepositoryFacade combines all buyer-related repository interfaces
// This is a facade for clients that need access to all operations
type BuyerRepositoryFacade interface {
	BuyerReader
	BuyerWriter
}

// BuyerRepositoryWithTx extends BuyerRepositoryFacade with transaction capabilities
type BuyerRepositoryWithTx interface {
	BuyerRepositoryFacade
	TransactionManager
}
