package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sahelimmo/lotissement_app/internal/apperrors"
	"github.com/sahelimmo/lotissement_app/internal/core/domain"
	portsrepo "github.com/sahelimmo/lotissement_app/internal/core/ports/repositories"
	portssvc "github.com/sahelimmo/lotissement_app/internal/core/ports/services"
	"github.com/sahelimmo/lotissement_app/internal/middleware"
)

// agencyService handles business logic related to agencies and memberships.
type agencyService struct {
	agencyRepo portsrepo.AgencyRepositoryFacade
	userRepo   portsrepo.UserRepositoryFacade
}

// NewAgencyService creates a new agency service.
func NewAgencyService(ar portsrepo.AgencyRepositoryFacade, ur portsrepo.UserRepositoryFacade) portssvc.AgencySvcFacade {
	return &agencyService{
		agencyRepo: ar,
		userRepo:   ur,
	}
}

// Ensure agencyService implements the portssvc.AgencySvcFacade interface
var _ portssvc.AgencySvcFacade = (*agencyService)(nil)

// roleRank orders roles for authorization checks; higher covers lower.
func roleRank(role domain.UserAgencyRole) int {
	switch role {
	case domain.RoleAdmin:
		return 3
	case domain.RoleMember:
		return 2
	case domain.RoleReadOnly:
		return 1
	default:
		return 0
	}
}

// CreateAgency creates a new agency and makes the creator the initial admin.
func (s *agencyService) CreateAgency(ctx context.Context, name, description, phone, email, creatorUserID string) (*domain.Agency, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if name == "" {
		return nil, fmt.Errorf("%w: agency name is required", apperrors.ErrValidation)
	}

	now := time.Now()
	newAgencyID := uuid.NewString()

	agency := domain.Agency{
		AgencyID:    newAgencyID,
		Name:        name,
		Description: description,
		Phone:       phone,
		Email:       email,
		IsActive:    true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.agencyRepo.SaveAgency(ctx, agency); err != nil {
		logger.Error("Failed to save agency in repository", slog.String("error", err.Error()), slog.String("agency_name", name))
		return nil, fmt.Errorf("failed to create agency: %w", err)
	}

	// Add the creator as the initial admin
	membership := domain.UserAgency{
		UserID:   creatorUserID,
		AgencyID: newAgencyID,
		Role:     domain.RoleAdmin,
		JoinedAt: now,
	}
	if err := s.agencyRepo.AddUserToAgency(ctx, membership); err != nil {
		logger.Error("Failed to add creator as admin to new agency", slog.String("error", err.Error()), slog.String("agency_id", newAgencyID), slog.String("user_id", creatorUserID))
	}

	logger.Info("Agency created successfully", slog.String("agency_id", newAgencyID), slog.String("creator_user_id", creatorUserID))
	return &agency, nil
}

// FindAgencyByID retrieves an agency by its ID.
func (s *agencyService) FindAgencyByID(ctx context.Context, agencyID string) (*domain.Agency, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	agency, err := s.agencyRepo.FindAgencyByID(ctx, agencyID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find agency by ID in repository", slog.String("error", err.Error()), slog.String("agency_id", agencyID))
		}
		return nil, err
	}
	return agency, nil
}

// ListUserAgencies retrieves the list of agencies a given user belongs to.
func (s *agencyService) ListUserAgencies(ctx context.Context, userID string, includeDisabled bool) ([]domain.Agency, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	agencies, err := s.agencyRepo.ListAgenciesByUserID(ctx, userID)
	if err != nil {
		logger.Error("Failed to list agencies for user from repository", slog.String("error", err.Error()), slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to list agencies for user %s: %w", userID, err)
	}

	if !includeDisabled {
		active := make([]domain.Agency, 0, len(agencies))
		for _, a := range agencies {
			if a.IsActive {
				active = append(active, a)
			}
		}
		agencies = active
	}

	if agencies == nil {
		return []domain.Agency{}, nil
	}
	return agencies, nil
}

// ListAgencyUsers retrieves all memberships of an agency. Only members may see this.
func (s *agencyService) ListAgencyUsers(ctx context.Context, agencyID string, requestingUserID string) ([]domain.UserAgency, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.AuthorizeUserAction(ctx, requestingUserID, agencyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	members, err := s.agencyRepo.ListAgencyMembers(ctx, agencyID)
	if err != nil {
		logger.Error("Failed to list agency members from repository", slog.String("error", err.Error()), slog.String("agency_id", agencyID))
		return nil, fmt.Errorf("failed to list members of agency %s: %w", agencyID, err)
	}
	if members == nil {
		return []domain.UserAgency{}, nil
	}
	return members, nil
}

// DeactivateAgency marks an agency as inactive. Admin only.
func (s *agencyService) DeactivateAgency(ctx context.Context, agencyID string, requestingUserID string) error {
	return s.setAgencyActive(ctx, agencyID, requestingUserID, false)
}

// ActivateAgency marks an agency as active. Admin only.
func (s *agencyService) ActivateAgency(ctx context.Context, agencyID string, requestingUserID string) error {
	return s.setAgencyActive(ctx, agencyID, requestingUserID, true)
}

func (s *agencyService) setAgencyActive(ctx context.Context, agencyID string, requestingUserID string, active bool) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.AuthorizeUserAction(ctx, requestingUserID, agencyID, domain.RoleAdmin); err != nil {
		return err
	}

	agency, err := s.agencyRepo.FindAgencyByID(ctx, agencyID)
	if err != nil {
		return err
	}

	agency.IsActive = active
	agency.LastUpdatedAt = time.Now()
	agency.LastUpdatedBy = requestingUserID

	if err := s.agencyRepo.UpdateAgency(ctx, *agency); err != nil {
		logger.Error("Failed to update agency active flag", slog.String("error", err.Error()), slog.String("agency_id", agencyID))
		return fmt.Errorf("failed to update agency %s: %w", agencyID, err)
	}

	logger.Info("Agency active flag updated", slog.String("agency_id", agencyID), slog.Bool("is_active", active))
	return nil
}

// AddUserToAgency adds a user to an agency with a specific role. Admin only.
func (s *agencyService) AddUserToAgency(ctx context.Context, addingUserID, targetUserID, agencyID string, role domain.UserAgencyRole) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.AuthorizeUserAction(ctx, addingUserID, agencyID, domain.RoleAdmin); err != nil {
		return err
	}

	// Validate that the target user exists
	if _, err := s.userRepo.FindUserByID(ctx, targetUserID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: user %s not found", apperrors.ErrValidation, targetUserID)
		}
		return fmt.Errorf("failed to validate target user: %w", err)
	}

	membership := domain.UserAgency{
		UserID:   targetUserID,
		AgencyID: agencyID,
		Role:     role,
		JoinedAt: time.Now(),
	}

	if err := s.agencyRepo.AddUserToAgency(ctx, membership); err != nil {
		logger.Error("Failed to add user to agency in repository", slog.String("error", err.Error()), slog.String("target_user_id", targetUserID), slog.String("agency_id", agencyID))
		return fmt.Errorf("failed to add user %s to agency %s: %w", targetUserID, agencyID, err)
	}

	logger.Info("User added to agency successfully", slog.String("target_user_id", targetUserID), slog.String("agency_id", agencyID), slog.String("role", string(role)), slog.String("added_by_user_id", addingUserID))
	return nil
}

// RemoveUserFromAgency removes a user from an agency by marking the membership
// removed. Admin only; admins cannot remove themselves.
func (s *agencyService) RemoveUserFromAgency(ctx context.Context, requestingUserID, targetUserID, agencyID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.AuthorizeUserAction(ctx, requestingUserID, agencyID, domain.RoleAdmin); err != nil {
		return err
	}

	if requestingUserID == targetUserID {
		return fmt.Errorf("%w: admins cannot remove themselves from an agency", apperrors.ErrValidation)
	}

	if err := s.agencyRepo.UpdateUserAgencyRole(ctx, targetUserID, agencyID, domain.RoleRemoved); err != nil {
		logger.Error("Failed to remove user from agency in repository", slog.String("error", err.Error()), slog.String("target_user_id", targetUserID), slog.String("agency_id", agencyID))
		return fmt.Errorf("failed to remove user %s from agency %s: %w", targetUserID, agencyID, err)
	}

	logger.Info("User removed from agency", slog.String("target_user_id", targetUserID), slog.String("agency_id", agencyID), slog.String("removed_by_user_id", requestingUserID))
	return nil
}

// UpdateUserAgencyRole updates a user's role in an agency. Admin only.
func (s *agencyService) UpdateUserAgencyRole(ctx context.Context, requestingUserID, targetUserID, agencyID string, newRole domain.UserAgencyRole) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.AuthorizeUserAction(ctx, requestingUserID, agencyID, domain.RoleAdmin); err != nil {
		return err
	}

	if err := s.agencyRepo.UpdateUserAgencyRole(ctx, targetUserID, agencyID, newRole); err != nil {
		logger.Error("Failed to update user agency role in repository", slog.String("error", err.Error()), slog.String("target_user_id", targetUserID), slog.String("agency_id", agencyID))
		return fmt.Errorf("failed to update role of user %s in agency %s: %w", targetUserID, agencyID, err)
	}

	logger.Info("User agency role updated", slog.String("target_user_id", targetUserID), slog.String("agency_id", agencyID), slog.String("new_role", string(newRole)))
	return nil
}

// AuthorizeUserAction checks if a user has the required role (or higher) within a specific agency.
// Returns apperrors.ErrNotFound if the user is not a member of the agency.
// Returns apperrors.ErrForbidden if the user is a member but lacks the required role.
func (s *agencyService) AuthorizeUserAction(ctx context.Context, userID, agencyID string, requiredRole domain.UserAgencyRole) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	membership, err := s.agencyRepo.FindUserAgencyRole(ctx, userID, agencyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Authorization failed: user not a member of agency", slog.String("user_id", userID), slog.String("agency_id", agencyID))
			// Return NotFound to avoid revealing agency existence
			return apperrors.ErrNotFound
		}
		logger.Error("Failed to check user agency role in repository", slog.String("error", err.Error()), slog.String("user_id", userID), slog.String("agency_id", agencyID))
		return fmt.Errorf("failed to check authorization: %w", err)
	}

	if membership.Role == domain.RoleRemoved {
		logger.Warn("Authorization failed: membership removed", slog.String("user_id", userID), slog.String("agency_id", agencyID))
		return apperrors.ErrNotFound
	}

	if roleRank(membership.Role) >= roleRank(requiredRole) {
		return nil
	}

	logger.Warn("Authorization failed: user lacks required role", slog.String("user_id", userID), slog.String("agency_id", agencyID), slog.String("user_role", string(membership.Role)), slog.String("required_role", string(requiredRole)))
	return apperrors.ErrForbidden
}
