package dto

import (
	"time"

	"github.com/sahelimmo/lotissement_app/internal/core/domain"
)

// --- Agency DTOs ---

// CreateAgencyRequest defines data for creating a new agency.
type CreateAgencyRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Phone       string `json:"phone"`
	Email       string `json:"email" binding:"omitempty,email"`
}

// AgencyResponse defines data returned for an agency.
type AgencyResponse struct {
	AgencyID      string    `json:"agencyID"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // UserID
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // UserID
}

// ToAgencyResponse converts domain.Agency to DTO.
func ToAgencyResponse(a *domain.Agency) AgencyResponse {
	return AgencyResponse{
		AgencyID:      a.AgencyID,
		Name:          a.Name,
		Description:   a.Description,
		Phone:         a.Phone,
		Email:         a.Email,
		IsActive:      a.IsActive,
		CreatedAt:     a.CreatedAt,
		CreatedBy:     a.CreatedBy,
		LastUpdatedAt: a.LastUpdatedAt,
		LastUpdatedBy: a.LastUpdatedBy,
	}
}

// ListAgenciesResponse wraps a list of agencies.
type ListAgenciesResponse struct {
	Agencies []AgencyResponse `json:"agencies"`
}

// ToListAgenciesResponse converts a slice of domain.Agency to DTO.
func ToListAgenciesResponse(as []domain.Agency) ListAgenciesResponse {
	list := make([]AgencyResponse, len(as))
	for i, a := range as {
		list[i] = ToAgencyResponse(&a)
	}
	return ListAgenciesResponse{Agencies: list}
}

// --- User Agency Membership DTOs ---

// AddUserToAgencyRequest defines data for adding a user to an agency.
type AddUserToAgencyRequest struct {
	UserID string                `json:"userID" binding:"required"`
	Role   domain.UserAgencyRole `json:"role" binding:"required,oneof=ADMIN MEMBER READONLY"`
}

// UpdateUserAgencyRoleRequest defines data for changing a member's role.
type UpdateUserAgencyRoleRequest struct {
	Role domain.UserAgencyRole `json:"role" binding:"required,oneof=ADMIN MEMBER READONLY"`
}

// UserAgencyResponse defines data returned about a user's membership.
type UserAgencyResponse struct {
	UserID   string                `json:"userID"`
	UserName string                `json:"userName"`
	AgencyID string                `json:"agencyID"`
	Role     domain.UserAgencyRole `json:"role"`
	JoinedAt time.Time             `json:"joinedAt"`
}

// ToUserAgencyResponse converts domain.UserAgency to DTO.
func ToUserAgencyResponse(ua *domain.UserAgency) UserAgencyResponse {
	return UserAgencyResponse{
		UserID:   ua.UserID,
		UserName: ua.UserName,
		AgencyID: ua.AgencyID,
		Role:     ua.Role,
		JoinedAt: ua.JoinedAt,
	}
}

// ToListUserAgencyResponse converts memberships to DTOs.
func ToListUserAgencyResponse(uas []domain.UserAgency) []UserAgencyResponse {
	list := make([]UserAgencyResponse, len(uas))
	for i, ua := range uas {
		list[i] = ToUserAgencyResponse(&ua)
	}
	return list
}
