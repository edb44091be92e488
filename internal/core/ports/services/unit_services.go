package services

import (
	"context"

	"github.com/sahelimmo/lotissement_app/internal/core/domain"
	"github.com/sahelimmo/lotissement_app/internal/dto"
)

// UnitReaderSvc defines read operations for unit data
type UnitReaderSvc interface {
	// GetUnitByID retrieves a specific unit by its ID.
	GetUnitByID(ctx context.Context, agencyID string, unitID string, requestingUserID string) (*domain.Unit, error)

	// ListUnits retrieves a paginated list of units for a subdivision,
	// optionally filtered by status.
	ListUnits(ctx context.Context, agencyID string, subdivisionID string, requestingUserID string, params dto.ListUnitsParams) ([]domain.Unit, error)
}

// UnitWriterSvc defines write operations for unit data
type UnitWriterSvc interface {
	// CreateUnit persists a new unit. When a block is given, the block's
	// capacity is checked atomically with the assignment.
	CreateUnit(ctx context.Context, agencyID string, req dto.CreateUnitRequest, creatorUserID string) (*domain.Unit, error)

	// UpdateUnit updates an existing unit's details. Status changes of sold
	// units are rejected; sold status only moves through sale operations.
	UpdateUnit(ctx context.Context, agencyID string, unitID string, req dto.UpdateUnitRequest, requestingUserID string) (*domain.Unit, error)

	// AssignUnitToBlock moves a unit into a block, enforcing the block's
	// capacity inside the assignment transaction. A nil blockID detaches
	// the unit from its block.
	AssignUnitToBlock(ctx context.Context, agencyID string, unitID string, blockID *string, requestingUserID string) error
}

// UnitSvcFacade combines all unit-related service interfaces
// This is a facade for clients that need access to all operations
type UnitSvcFacade interface {
	UnitReaderSvc
	UnitWriterSvc
}
