package dto

import (
	"time"

	"github.com/sahelimmo/lotissement_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateUnitRequest defines the data needed to create a new unit.
type CreateUnitRequest struct {
	SubdivisionID string          `json:"subdivisionID" binding:"required"`
	BlockID       *string         `json:"blockID"` // Optional, capacity checked on assignment
	Reference     string          `json:"reference" binding:"required"`
	Area          decimal.Decimal `json:"area" binding:"required"`
	ListedPrice   decimal.Decimal `json:"listedPrice" binding:"required"`
}

// UpdateUnitRequest defines the data allowed for updating a unit.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateUnitRequest struct {
	Reference      *string            `json:"reference"`
	Area           *decimal.Decimal   `json:"area"`
	ListedPrice    *decimal.Decimal   `json:"listedPrice"`
	Status         *domain.UnitStatus `json:"status" binding:"omitempty,oneof=AVAILABLE RESERVED"`
	AssignedUserID *string            `json:"assignedUserID"`
}

// AssignUnitToBlockRequest defines the data for moving a unit into a block.
type AssignUnitToBlockRequest struct {
	BlockID *string `json:"blockID"` // Null detaches the unit from its block
}

// UnitResponse defines the data returned for a unit.
type UnitResponse struct {
	UnitID         string            `json:"unitID"`
	AgencyID       string            `json:"agencyID"`
	SubdivisionID  string            `json:"subdivisionID"`
	BlockID        *string           `json:"blockID"`
	Reference      string            `json:"reference"`
	Area           decimal.Decimal   `json:"area"`
	ListedPrice    decimal.Decimal   `json:"listedPrice"`
	Status         domain.UnitStatus `json:"status"`
	AssignedUserID *string           `json:"assignedUserID"`
	CreatedAt      time.Time         `json:"createdAt"`
	CreatedBy      string            `json:"createdBy"`
	LastUpdatedAt  time.Time         `json:"lastUpdatedAt"`
	LastUpdatedBy  string            `json:"lastUpdatedBy"`
}

// ToUnitResponse converts a domain.Unit to UnitResponse DTO.
func ToUnitResponse(u *domain.Unit) UnitResponse {
	return UnitResponse{
		UnitID:         u.UnitID,
		AgencyID:       u.AgencyID,
		SubdivisionID:  u.SubdivisionID,
		BlockID:        u.BlockID,
		Reference:      u.Reference,
		Area:           u.Area,
		ListedPrice:    u.ListedPrice,
		Status:         u.Status,
		AssignedUserID: u.AssignedUserID,
		CreatedAt:      u.CreatedAt,
		CreatedBy:      u.CreatedBy,
		LastUpdatedAt:  u.LastUpdatedAt,
		LastUpdatedBy:  u.LastUpdatedBy,
	}
}

// ListUnitsParams defines query parameters for listing units.
type ListUnitsParams struct {
	Status *domain.UnitStatus `form:"status" binding:"omitempty,oneof=AVAILABLE RESERVED SOLD"`
	Limit  int                `form:"limit,default=20"`
	Offset int                `form:"offset,default=0"`
}

// ListUnitsResponse wraps the list of units.
type ListUnitsResponse struct {
	Units []UnitResponse `json:"units"`
}

// ToListUnitsResponse converts a slice of domain.Unit to DTO.
func ToListUnitsResponse(us []domain.Unit) ListUnitsResponse {
	list := make([]UnitResponse, len(us))
	for i, u := range us {
		list[i] = ToUnitResponse(&u)
	}
	return ListUnitsResponse{Units: list}
}
