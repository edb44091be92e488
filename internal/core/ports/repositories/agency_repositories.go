package repositories

import (
	"context"

	"github.com/sahelimmo/lotissement_app/internal/core/domain"
)

// AgencyReader defines read operations for agency data
type AgencyReader interface {
	// FindAgencyByID retrieves a specific agency by its ID.
	FindAgencyByID(ctx context.Context, agencyID string) (*domain.Agency, error)

	// ListAgenciesByUserID retrieves all agencies a user belongs to.
	ListAgenciesByUserID(ctx context.Context, userID string) ([]domain.Agency, error)
}

// AgencyWriter defines write operations for agency data
type AgencyWriter interface {
	// SaveAgency persists a new agency.
	SaveAgency(ctx context.Context, agency domain.Agency) error

	// UpdateAgency updates an existing agency's details.
	UpdateAgency(ctx context.Context, agency domain.Agency) error
}

// AgencyMembershipManager defines operations for managing agency memberships
type AgencyMembershipManager interface {
	// AddUserToAgency adds a user to an agency with a specific role.
	AddUserToAgency(ctx context.Context, membership domain.UserAgency) error

	// FindUserAgencyRole retrieves the role of a user in an agency.
	FindUserAgencyRole(ctx context.Context, userID, agencyID string) (*domain.UserAgency, error)

	// UpdateUserAgencyRole changes the role of a user in an agency.
	UpdateUserAgencyRole(ctx context.Context, userID, agencyID string, role domain.UserAgencyRole) error

	// ListAgencyMembers retrieves all memberships of an agency.
	ListAgencyMembers(ctx context.Context, agencyID string) ([]domain.UserAgency, error)
}

// AgencyRepositoryFacade combines all agency-related repository interfaces
// This is a facade for clients that need access to all operations
type AgencyRepositoryFacade interface {
	AgencyReader
	AgencyWriter
	AgencyMembershipManager
}

// AgencyRepositoryWithTx extends AgencyRepositoryFacade with transaction capabilities
type AgencyRepositoryWithTx interface {
	AgencyRepositoryFacade
	TransactionManager
}
