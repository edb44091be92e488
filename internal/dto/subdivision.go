package dto

import (
	"time"

	"github.com/sahelimmo/lotissement_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// --- Subdivision DTOs ---

// CreateSubdivisionRequest defines the data needed to create a new subdivision.
type CreateSubdivisionRequest struct {
	Name        string          `json:"name" binding:"required"`
	Location    string          `json:"location"`
	Description string          `json:"description"`
	TotalArea   decimal.Decimal `json:"totalArea"` // m², informational
}

// UpdateSubdivisionRequest defines the data allowed for updating a subdivision.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateSubdivisionRequest struct {
	Name        *string `json:"name"`
	Location    *string `json:"location"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

// SubdivisionResponse defines the data returned for a subdivision.
type SubdivisionResponse struct {
	SubdivisionID string          `json:"subdivisionID"`
	AgencyID      string          `json:"agencyID"`
	Name          string          `json:"name"`
	Location      string          `json:"location"`
	Description   string          `json:"description"`
	TotalArea     decimal.Decimal `json:"totalArea"`
	IsActive      bool            `json:"isActive"`
	CreatedAt     time.Time       `json:"createdAt"`
	CreatedBy     string          `json:"createdBy"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
	LastUpdatedBy string          `json:"lastUpdatedBy"`
}

// ToSubdivisionResponse converts a domain.Subdivision to SubdivisionResponse DTO.
func ToSubdivisionResponse(s *domain.Subdivision) SubdivisionResponse {
	return SubdivisionResponse{
		SubdivisionID: s.SubdivisionID,
		AgencyID:      s.AgencyID,
		Name:          s.Name,
		Location:      s.Location,
		Description:   s.Description,
		TotalArea:     s.TotalArea,
		IsActive:      s.IsActive,
		CreatedAt:     s.CreatedAt,
		CreatedBy:     s.CreatedBy,
		LastUpdatedAt: s.LastUpdatedAt,
		LastUpdatedBy: s.LastUpdatedBy,
	}
}

// ListSubdivisionsResponse wraps the list of subdivisions.
type ListSubdivisionsResponse struct {
	Subdivisions []SubdivisionResponse `json:"subdivisions"`
}

// ToListSubdivisionsResponse converts a slice of domain.Subdivision to DTO.
func ToListSubdivisionsResponse(ss []domain.Subdivision) ListSubdivisionsResponse {
	list := make([]SubdivisionResponse, len(ss))
	for i, s := range ss {
		list[i] = ToSubdivisionResponse(&s)
	}
	return ListSubdivisionsResponse{Subdivisions: list}
}

// --- Block DTOs ---

// CreateBlockRequest defines the data needed to create a block.
type CreateBlockRequest struct {
	Name     string `json:"name" binding:"required"`
	MaxUnits *int   `json:"maxUnits" binding:"omitempty,min=1"` // Omit for uncapped
}

// UpdateBlockRequest defines the data allowed for updating a block.
type UpdateBlockRequest struct {
	Name     *string `json:"name"`
	MaxUnits *int    `json:"maxUnits" binding:"omitempty,min=1"`
}

// BlockResponse defines the data returned for a block.
type BlockResponse struct {
	BlockID       string    `json:"blockID"`
	SubdivisionID string    `json:"subdivisionID"`
	Name          string    `json:"name"`
	MaxUnits      *int      `json:"maxUnits"`
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

// ToBlockResponse converts a domain.Block to BlockResponse DTO.
func ToBlockResponse(b *domain.Block) BlockResponse {
	return BlockResponse{
		BlockID:       b.BlockID,
		SubdivisionID: b.SubdivisionID,
		Name:          b.Name,
		MaxUnits:      b.MaxUnits,
		CreatedAt:     b.CreatedAt,
		CreatedBy:     b.CreatedBy,
		LastUpdatedAt: b.LastUpdatedAt,
		LastUpdatedBy: b.LastUpdatedBy,
	}
}

// ToListBlocksResponse converts a slice of domain.Block to DTOs.
func ToListBlocksResponse(bs []domain.Block) []BlockResponse {
	list := make([]BlockResponse, len(bs))
	for i, b := range bs {
		list[i] = ToBlockResponse(&b)
	}
	return list
}
