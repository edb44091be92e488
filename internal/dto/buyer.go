package dto

import (
	"time"

	"github.com/sahelimmo/lotissement_app/internal/core/domain"
)

// CreateBuyerRequest defines the data needed to register a new buyer.
type CreateBuyerRequest struct {
	FullName   string `json:"fullName" binding:"required"`
	Phone      string `json:"phone" binding:"required"`
	Email      string `json:"email" binding:"omitempty,email"`
	NationalID string `json:"nationalID"`
	Address    string `json:"address"`
}

// UpdateBuyerRequest defines the data allowed for updating a buyer.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateBuyerRequest struct {
	FullName   *string `json:"fullName"`
	Phone      *string `json:"phone"`
	Email      *string `json:"email" binding:"omitempty,email"`
	NationalID *string `json:"nationalID"`
	Address    *string `json:"address"`
}

// BuyerResponse defines the data returned for a buyer.
type BuyerResponse struct {
	BuyerID       string    `json:"buyerID"`
	AgencyID      string    `json:"agencyID"`
	FullName      string    `json:"fullName"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	NationalID    string    `json:"nationalID"`
	Address       string    `json:"address"`
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

// ToBuyerResponse converts a domain.Buyer to BuyerResponse DTO.
func ToBuyerResponse(b *domain.Buyer) BuyerResponse {
	return BuyerResponse{
		BuyerID:       b.BuyerID,
		AgencyID:      b.AgencyID,
		FullName:      b.FullName,
		Phone:         b.Phone,
		Email:         b.Email,
		NationalID:    b.NationalID,
		Address:       b.Address,
		CreatedAt:     b.CreatedAt,
		CreatedBy:     b.CreatedBy,
		LastUpdatedAt: b.LastUpdatedAt,
		LastUpdatedBy: b.LastUpdatedBy,
	}
}

// ListBuyersParams defines query parameters for listing buyers.
type ListBuyersParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// ListBuyersResponse wraps the list of buyers.
type ListBuyersResponse struct {
	Buyers []BuyerResponse `json:"buyers"`
}

// ToListBuyersResponse converts a slice of domain.Buyer to DTO.
func ToListBuyersResponse(bs []domain.Buyer) ListBuyersResponse {
	list := make([]BuyerResponse, len(bs))
	for i, b := range bs {
		list[i] = ToBuyerResponse(&b)
	}
	return ListBuyersResponse{Buyers: list}
}
