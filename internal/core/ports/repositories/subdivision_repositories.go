package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/sahelimmo/lotissement_app/internal/core/domain"
)

// SubdivisionReader defines read operations for subdivision data
type SubdivisionReader interface {
	// FindSubdivisionByID retrieves a specific subdivision by its ID.
	FindSubdivisionByID(ctx context.Context, subdivisionID string) (*domain.Subdivision, error)

	// ListSubdivisionsByAgency retrieves a paginated list of subdivisions for a given agency.
	ListSubdivisionsByAgency(ctx context.Context, agencyID string, limit int, offset int) ([]domain.Subdivision, error)
}

// SubdivisionWriter defines write operations for subdivision data
type SubdivisionWriter interface {
	// SaveSubdivision persists a new subdivision.
	SaveSubdivision(ctx context.Context, subdivision domain.Subdivision) error

	// UpdateSubdivision updates an existing subdivision's details.
	UpdateSubdivision(ctx context.Context, subdivision domain.Subdivision) error
}

// BlockReader defines read operations for block data
type BlockReader interface {
	// FindBlockByID retrieves a specific block by its ID.
	FindBlockByID(ctx context.Context, blockID string) (*domain.Block, error)

	// ListBlocksBySubdivision retrieves all blocks of a subdivision.
	ListBlocksBySubdivision(ctx context.Context, subdivisionID string) ([]domain.Block, error)
}

// BlockWriter defines write operations for block data
type BlockWriter interface {
	// SaveBlock persists a new block.
	SaveBlock(ctx context.Context, block domain.Block) error

	// UpdateBlock updates an existing block's details.
	UpdateBlock(ctx context.Context, block domain.Block) error
}

// BlockCapacitySupport defines operations that support capacity-checked unit assignment
type BlockCapacitySupport interface {
	// FindBlockByIDForUpdate selects a block and locks it for update within a transaction.
	FindBlockByIDForUpdate(ctx context.Context, tx pgx.Tx, blockID string) (*domain.Block, error)

	// CountUnitsInBlockInTx counts the units currently assigned to a block within a transaction.
	CountUnitsInBlockInTx(ctx context.Context, tx pgx.Tx, blockID string) (int, error)

	// UpdateBlockInTx updates a block's details within a transaction, typically
	// one that already holds the block's row lock.
	UpdateBlockInTx(ctx context.Context, tx pgx.Tx, block domain.Block) error
}

// SubdivisionRepositoryFacade combines all subdivision-related repository interfaces
// This is a facade for clients that need access to all operations
type SubdivisionRepositoryFacade interface {
	SubdivisionReader
	SubdivisionWriter
	BlockReader
	BlockWriter
	BlockCapacitySupport
}

// SubdivisionRepositoryWithTx extends SubdivisionRepositoryFacade with transaction capabilities
type SubdivisionRepositoryWithTx interface {
	SubdivisionRepositoryFacade
	TransactionManager
}
