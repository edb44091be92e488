package services

import (
	"context"

	"github.com/sahelimmo/lotissement_app/internal/core/domain"
)

// AgencyReaderSvc defines read operations for agency data
type AgencyReaderSvc interface {
	// FindAgencyByID retrieves a specific agency by its ID.
	FindAgencyByID(ctx context.Context, agencyID string) (*domain.Agency, error)

	// ListUserAgencies retrieves agencies a user belongs to.
	// If includeDisabled is true, it includes inactive agencies.
	ListUserAgencies(ctx context.Context, userID string, includeDisabled bool) ([]domain.Agency, error)

	// ListAgencyUsers retrieves all users and their roles for a specific agency.
	// Only members of the agency can access this data.
	ListAgencyUsers(ctx context.Context, agencyID string, requestingUserID string) ([]domain.UserAgency, error)
}

// AgencyWriterSvc defines write operations for agency data
type AgencyWriterSvc interface {
	// CreateAgency persists a new agency with the creator as admin.
	CreateAgency(ctx context.Context, name, description, phone, email, creatorUserID string) (*domain.Agency, error)

	// DeactivateAgency marks an agency as inactive.
	DeactivateAgency(ctx context.Context, agencyID string, requestingUserID string) error

	// ActivateAgency marks an agency as active.
	ActivateAgency(ctx context.Context, agencyID string, requestingUserID string) error
}

// AgencyMembershipSvc defines operations for managing agency membership
type AgencyMembershipSvc interface {
	// AddUserToAgency adds a user to an agency with a specific role.
	AddUserToAgency(ctx context.Context, addingUserID, targetUserID, agencyID string, role domain.UserAgencyRole) error

	// RemoveUserFromAgency removes a user from an agency.
	// Only agency admins can remove users.
	RemoveUserFromAgency(ctx context.Context, requestingUserID, targetUserID, agencyID string) error

	// UpdateUserAgencyRole updates a user's role in an agency.
	// Only agency admins can update user roles.
	UpdateUserAgencyRole(ctx context.Context, requestingUserID, targetUserID, agencyID string, newRole domain.UserAgencyRole) error
}

// AgencyAuthorizerSvc defines operations for agency authorization
type AgencyAuthorizerSvc interface {
	// AuthorizeUserAction checks if a user has required permissions for an agency.
	AuthorizeUserAction(ctx context.Context, userID, agencyID string, requiredRole domain.UserAgencyRole) error
}

// AgencySvcFacade combines all agency-related service interfaces
// This is a facade for clients that need access to all operations
type AgencySvcFacade interface {
	AgencyReaderSvc
	AgencyWriterSvc
	AgencyMembershipSvc
	AgencyAuthorizerSvc
}
