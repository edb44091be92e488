package dto

import (
	"time"

	"github.com/sahelimmo/lotissement_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// OverdueInstallmentResponse represents one late installment with sale context
type OverdueInstallmentResponse struct {
	InstallmentID string          `json:"installmentID"`
	SaleID        string          `json:"saleID"`
	UnitID        string          `json:"unitID"`
	BuyerID       string          `json:"buyerID"`
	BuyerName     string          `json:"buyerName"`
	Sequence      int             `json:"sequence"`
	DueDate       time.Time       `json:"dueDate"`
	Amount        decimal.Decimal `json:"amount"`
	PaidAmount    decimal.Decimal `json:"paidAmount"`
	Remaining     decimal.Decimal `json:"remaining"`
	DaysOverdue   int             `json:"daysOverdue"`
}

// OverdueReportResponse represents the overdue installments report response
type OverdueReportResponse struct {
	AsOf  string                       `json:"asOf"`
	Rows  []OverdueInstallmentResponse `json:"rows"`
	Total decimal.Decimal              `json:"totalRemaining"`
}

// ToOverdueReportResponse converts domain overdue rows to a DTO response
func ToOverdueReportResponse(rows []domain.OverdueInstallment, asOf time.Time) OverdueReportResponse {
	response := OverdueReportResponse{
		AsOf: asOf.Format("2006-01-02"),
		Rows: make([]OverdueInstallmentResponse, len(rows)),
	}

	total := decimal.Zero
	for i, row := range rows {
		response.Rows[i] = OverdueInstallmentResponse{
			InstallmentID: row.Installment.InstallmentID,
			SaleID:        row.SaleID,
			UnitID:        row.UnitID,
			BuyerID:       row.BuyerID,
			BuyerName:     row.BuyerName,
			Sequence:      row.Installment.Sequence,
			DueDate:       row.Installment.DueDate,
			Amount:        row.Installment.Amount,
			PaidAmount:    row.Installment.PaidAmount,
			Remaining:     row.Remaining,
			DaysOverdue:   row.DaysOverdue,
		}
		total = total.Add(row.Remaining)
	}
	response.Total = total
	return response
}

// CollectionRateResponse represents the collection rate report response
type CollectionRateResponse struct {
	FromDate  string          `json:"fromDate"`
	ToDate    string          `json:"toDate"`
	DueAmount decimal.Decimal `json:"dueAmount"`
	Collected decimal.Decimal `json:"collected"`
	Rate      decimal.Decimal `json:"rate"`
}

// ToCollectionRateResponse converts a domain.CollectionRate to a DTO response
func ToCollectionRateResponse(cr *domain.CollectionRate) CollectionRateResponse {
	return CollectionRateResponse{
		FromDate:  cr.From.Format("2006-01-02"),
		ToDate:    cr.To.Format("2006-01-02"),
		DueAmount: cr.DueAmount,
		Collected: cr.Collected,
		Rate:      cr.Rate,
	}
}

// SubdivisionOccupancyResponse represents one subdivision's unit status aggregate
type SubdivisionOccupancyResponse struct {
	SubdivisionID  string          `json:"subdivisionID"`
	Name           string          `json:"name"`
	AvailableUnits int             `json:"availableUnits"`
	ReservedUnits  int             `json:"reservedUnits"`
	SoldUnits      int             `json:"soldUnits"`
	SoldValue      decimal.Decimal `json:"soldValue"`
}

// OccupancyReportResponse represents the occupancy report response
type OccupancyReportResponse struct {
	Subdivisions []SubdivisionOccupancyResponse `json:"subdivisions"`
}

// ToOccupancyReportResponse converts domain occupancy rows to a DTO response
func ToOccupancyReportResponse(rows []domain.SubdivisionOccupancy) OccupancyReportResponse {
	response := OccupancyReportResponse{
		Subdivisions: make([]SubdivisionOccupancyResponse, len(rows)),
	}
	for i, row := range rows {
		response.Subdivisions[i] = SubdivisionOccupancyResponse{
			SubdivisionID:  row.SubdivisionID,
			Name:           row.Name,
			AvailableUnits: row.AvailableUnits,
			ReservedUnits:  row.ReservedUnits,
			SoldUnits:      row.SoldUnits,
			SoldValue:      row.SoldValue,
		}
	}
	return response
}
