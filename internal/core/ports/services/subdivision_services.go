package services

import (
	"context"

	"github.com/sahelimmo/lotissement_app/internal/core/domain"
	"github.com/sahelimmo/lotissement_app/internal/dto"
)

// SubdivisionReaderSvc defines read operations for subdivision data
type SubdivisionReaderSvc interface {
	// GetSubdivisionByID retrieves a specific subdivision by its ID.
	GetSubdivisionByID(ctx context.Context, agencyID string, subdivisionID string, requestingUserID string) (*domain.Subdivision, error)

	// ListSubdivisions retrieves a paginated list of subdivisions in an agency.
	ListSubdivisions(ctx context.Context, agencyID string, requestingUserID string, limit, offset int) ([]domain.Subdivision, error)

	// ListBlocks retrieves all blocks of a subdivision.
	ListBlocks(ctx context.Context, agencyID string, subdivisionID string, requestingUserID string) ([]domain.Block, error)
}

// SubdivisionWriterSvc defines write operations for subdivision data
type SubdivisionWriterSvc interface {
	// CreateSubdivision persists a new subdivision.
	CreateSubdivision(ctx context.Context, agencyID string, req dto.CreateSubdivisionRequest, creatorUserID string) (*domain.Subdivision, error)

	// UpdateSubdivision updates an existing subdivision's details.
	UpdateSubdivision(ctx context.Context, agencyID string, subdivisionID string, req dto.UpdateSubdivisionRequest, requestingUserID string) (*domain.Subdivision, error)

	// CreateBlock persists a new block in a subdivision.
	CreateBlock(ctx context.Context, agencyID string, subdivisionID string, req dto.CreateBlockRequest, creatorUserID string) (*domain.Block, error)

	// UpdateBlock updates an existing block. Lowering the cap below the current
	// unit count is rejected.
	UpdateBlock(ctx context.Context, agencyID string, blockID string, req dto.UpdateBlockRequest, requestingUserID string) (*domain.Block, error)
}

// SubdivisionSvcFacade combines all subdivision-related service interfaces
// This is a facade for clients that need access to all operations
type SubdivisionSvcFacade interface {
	SubdivisionReaderSvc
	SubdivisionWriterSvc
}
