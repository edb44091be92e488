package dto

import (
	"time"

	"github.com/sahelimmo/lotissement_app/internal/core/domain"
)

// CreateAPITokenRequest defines the data needed to create an API token.
type CreateAPITokenRequest struct {
	Name      string `json:"name" binding:"required"`
	ExpiresIn *int   `json:"expiresInDays" binding:"omitempty,min=1"` // Omit for non-expiring
}

// CreateAPITokenResponse returns the plaintext token exactly once.
type CreateAPITokenResponse struct {
	Token   string           `json:"token"`
	Details APITokenResponse `json:"details"`
}

// APITokenResponse defines the data returned for an API token.
type APITokenResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// ToAPITokenResponse converts a domain.APIToken to APITokenResponse DTO.
func ToAPITokenResponse(t *domain.APIToken) APITokenResponse {
	return APITokenResponse{
		ID:         t.ID,
		Name:       t.Name,
		LastUsedAt: t.LastUsedAt,
		ExpiresAt:  t.ExpiresAt,
		CreatedAt:  t.CreatedAt,
	}
}

// ToListAPITokensResponse converts a slice of domain.APIToken to DTOs.
func ToListAPITokensResponse(ts []domain.APIToken) []APITokenResponse {
	list := make([]APITokenResponse, len(ts))
	for i, t := range ts {
		list[i] = ToAPITokenResponse(&t)
	}
	return list
}
