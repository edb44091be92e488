package dto

import (
	"time"

	"github.com/sahelimmo/lotissement_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateSaleRequest defines the data needed to create a sale.
// For installment sales the schedule terms are required; for cash sales the
// installment fields are ignored.
type CreateSaleRequest struct {
	UnitID           string             `json:"unitID" binding:"required"`
	BuyerID          string             `json:"buyerID" binding:"required"`
	TotalPrice       decimal.Decimal    `json:"totalPrice" binding:"required"`
	PaymentType      domain.PaymentType `json:"paymentType" binding:"required,oneof=CASH INSTALLMENT"`
	SaleDate         time.Time          `json:"saleDate" binding:"required"`
	DownPayment      decimal.Decimal    `json:"downPayment"`
	InstallmentCount int                `json:"installmentCount" binding:"omitempty,min=1"`
	FirstDueDate     *time.Time         `json:"firstDueDate"` // Defaults to one month after sale date
}

// FinalizeSaleRequest defines the data for marking a sale complete.
type FinalizeSaleRequest struct {
	// AcceptOutstandingBalance must be set to finalize a sale that still has
	// unsettled installments; the remaining amount is recorded on the sale.
	AcceptOutstandingBalance bool `json:"acceptOutstandingBalance"`
}

// InstallmentResponse defines the data returned for one installment.
type InstallmentResponse struct {
	InstallmentID string                   `json:"installmentID"`
	SaleID        string                   `json:"saleID"`
	Sequence      int                      `json:"sequence"`
	DueDate       time.Time                `json:"dueDate"`
	Amount        decimal.Decimal          `json:"amount"`
	Status        domain.InstallmentStatus `json:"status"`
	PaidAmount    decimal.Decimal          `json:"paidAmount"`
	Remaining     decimal.Decimal          `json:"remaining"`
	PaidDate      *time.Time               `json:"paidDate,omitempty"`
	PaymentMethod string                   `json:"paymentMethod,omitempty"`
	ReceiptNumber string                   `json:"receiptNumber,omitempty"`
}

// ToInstallmentResponse converts a domain.Installment to InstallmentResponse DTO.
func ToInstallmentResponse(i *domain.Installment) InstallmentResponse {
	return InstallmentResponse{
		InstallmentID: i.InstallmentID,
		SaleID:        i.SaleID,
		Sequence:      i.Sequence,
		DueDate:       i.DueDate,
		Amount:        i.Amount,
		Status:        i.Status,
		PaidAmount:    i.PaidAmount,
		Remaining:     i.Remaining(),
		PaidDate:      i.PaidDate,
		PaymentMethod: i.PaymentMethod,
		ReceiptNumber: i.ReceiptNumber,
	}
}

// ToInstallmentResponses converts a slice of domain.Installment to DTOs.
func ToInstallmentResponses(is []domain.Installment) []InstallmentResponse {
	responses := make([]InstallmentResponse, len(is))
	for i, inst := range is {
		responses[i] = ToInstallmentResponse(&inst)
	}
	return responses
}

// SaleResponse defines the data returned for a sale.
type SaleResponse struct {
	SaleID              string                `json:"saleID"`
	AgencyID            string                `json:"agencyID"`
	UnitID              string                `json:"unitID"`
	BuyerID             string                `json:"buyerID"`
	TotalPrice          decimal.Decimal       `json:"totalPrice"`
	PaymentType         domain.PaymentType    `json:"paymentType"`
	SaleDate            time.Time             `json:"saleDate"`
	Status              domain.SaleStatus     `json:"status"`
	DownPayment         decimal.Decimal       `json:"downPayment"`
	InstallmentCount    int                   `json:"installmentCount"`
	MonthlyAmount       decimal.Decimal       `json:"monthlyAmount"`
	AcceptedOutstanding *decimal.Decimal      `json:"acceptedOutstanding,omitempty"`
	CancelledAt         *time.Time            `json:"cancelledAt,omitempty"`
	CompletedAt         *time.Time            `json:"completedAt,omitempty"`
	CreatedAt           time.Time             `json:"createdAt"`
	CreatedBy           string                `json:"createdBy"`
	Installments        []InstallmentResponse `json:"installments,omitempty"`
}

// ToSaleResponse converts a domain.Sale to SaleResponse DTO.
func ToSaleResponse(s *domain.Sale) SaleResponse {
	resp := SaleResponse{
		SaleID:              s.SaleID,
		AgencyID:            s.AgencyID,
		UnitID:              s.UnitID,
		BuyerID:             s.BuyerID,
		TotalPrice:          s.TotalPrice,
		PaymentType:         s.PaymentType,
		SaleDate:            s.SaleDate,
		Status:              s.Status,
		DownPayment:         s.DownPayment,
		InstallmentCount:    s.InstallmentCount,
		MonthlyAmount:       s.MonthlyAmount,
		AcceptedOutstanding: s.AcceptedOutstanding,
		CancelledAt:         s.CancelledAt,
		CompletedAt:         s.CompletedAt,
		CreatedAt:           s.CreatedAt,
		CreatedBy:           s.CreatedBy,
	}
	if len(s.Installments) > 0 {
		resp.Installments = ToInstallmentResponses(s.Installments)
	}
	return resp
}

// ListSalesParams defines query parameters for listing sales.
type ListSalesParams struct {
	Limit     int                `form:"limit,default=20"`
	NextToken *string            `form:"nextToken"`
	Status    *domain.SaleStatus `form:"status" binding:"omitempty,oneof=IN_PROGRESS COMPLETE CANCELLED"`
}

// ListSalesResponse wraps the list of sales with the pagination token.
type ListSalesResponse struct {
	Sales     []SaleResponse `json:"sales"`
	NextToken *string        `json:"nextToken,omitempty"`
}

// SaleProgressResponse defines the derived settlement position of a sale.
type SaleProgressResponse struct {
	SaleID            string          `json:"saleID"`
	TotalPrice        decimal.Decimal `json:"totalPrice"`
	DownPayment       decimal.Decimal `json:"downPayment"`
	PaidAmount        decimal.Decimal `json:"paidAmount"`
	OutstandingNet    decimal.Decimal `json:"outstandingNet"`
	PaidInstallments  int             `json:"paidInstallments"`
	TotalInstallments int             `json:"totalInstallments"`
	Ratio             decimal.Decimal `json:"ratio"`
}

// ToSaleProgressResponse converts a domain.SaleProgress to DTO.
func ToSaleProgressResponse(p *domain.SaleProgress) SaleProgressResponse {
	return SaleProgressResponse{
		SaleID:            p.SaleID,
		TotalPrice:        p.TotalPrice,
		DownPayment:       p.DownPayment,
		PaidAmount:        p.PaidAmount,
		OutstandingNet:    p.OutstandingNet,
		PaidInstallments:  p.PaidInstallments,
		TotalInstallments: p.TotalInstallment,
		Ratio:             p.Ratio,
	}
}

// SaleSnapshotResponse bundles everything document generation needs for a sale.
type SaleSnapshotResponse struct {
	Sale         SaleResponse          `json:"sale"`
	Buyer        BuyerResponse         `json:"buyer"`
	Unit         UnitResponse          `json:"unit"`
	Installments []InstallmentResponse `json:"installments"`
	Progress     SaleProgressResponse  `json:"progress"`
}

// ToSaleSnapshotResponse converts a domain.SaleSnapshot to DTO.
func ToSaleSnapshotResponse(s *domain.SaleSnapshot) SaleSnapshotResponse {
	return SaleSnapshotResponse{
		Sale:         ToSaleResponse(&s.Sale),
		Buyer:        ToBuyerResponse(&s.Buyer),
		Unit:         ToUnitResponse(&s.Unit),
		Installments: ToInstallmentResponses(s.Installments),
		Progress:     ToSaleProgressResponse(&s.Progress),
	}
}
