package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/sahelimmo/lotissement_app/internal/core/domain"
)

// UnitReader defines read operations for unit data
type UnitReader interface {
	// FindUnitByID retrieves a specific unit by its ID.
	FindUnitByID(ctx context.Context, unitID string) (*domain.Unit, error)

	// FindUnitByReference retrieves a unit by its parcel reference within a subdivision.
	FindUnitByReference(ctx context.Context, subdivisionID string, reference string) (*domain.Unit, error)

	// ListUnitsBySubdivision retrieves a paginated list of units for a subdivision,
	// optionally filtered by status.
	ListUnitsBySubdivision(ctx context.Context, subdivisionID string, status *domain.UnitStatus, limit int, offset int) ([]domain.Unit, error)
}

// UnitWriter defines write operations for unit data
type UnitWriter interface {
	// SaveUnit persists a new unit.
	SaveUnit(ctx context.Context, unit domain.Unit) error

	// UpdateUnit updates an existing unit's details.
	UpdateUnit(ctx context.Context, unit domain.Unit) error
}

// UnitTransactionSupport defines operations that support sale transactions
type UnitTransactionSupport interface {
	// FindUnitByIDForUpdate selects a unit and locks it for update within a transaction.
	FindUnitByIDForUpdate(ctx context.Context, tx pgx.Tx, unitID string) (*domain.Unit, error)

	// SaveUnitInTx persists a new unit within a given transaction.
	SaveUnitInTx(ctx context.Context, tx pgx.Tx, unit domain.Unit) error

	// UpdateUnitStatusInTx updates a unit's status within a given transaction.
	UpdateUnitStatusInTx(ctx context.Context, tx pgx.Tx, unitID string, status domain.UnitStatus, userID string, now time.Time) error

	// AssignUnitToBlockInTx sets a unit's block within a given transaction.
	AssignUnitToBlockInTx(ctx context.Context, tx pgx.Tx, unitID string, blockID *string, userID string, now time.Time) error
}

// UnitRepositoryFacade combines all unit-related repository interfaces
// This is a facade for clients that need access to all operations
type UnitRepositoryFacade interface {
	UnitReader
	UnitWriter
	UnitTransactionSupport
}

// UnitRepositoryWithTx extends UnitRepositoryFacade with transaction capabilities
type UnitRepositoryWithTx interface {
	UnitRepositoryFacade
	TransactionManager
}
