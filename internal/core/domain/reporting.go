package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleProgress is the derived settlement position of one sale. It is always
// recomputed from the installment schedule plus down payment, never stored.
type SaleProgress struct {
	SaleID           string          `json:"saleID"`
	TotalPrice       decimal.Decimal `json:"totalPrice"`
	DownPayment      decimal.Decimal `json:"downPayment"`
	PaidAmount       decimal.Decimal `json:"paidAmount"` // Sum over installments
	OutstandingNet   decimal.Decimal `json:"outstandingNet"`
	PaidInstallments int             `json:"paidInstallments"`
	TotalInstallment int             `json:"totalInstallments"`
	// Ratio is paid / (total - down); 1 for fully settled zero-net sales.
	Ratio decimal.Decimal `json:"ratio"`
}

// OverdueInstallment is one late installment enriched with sale context for
// display; ordering for display is by due date ascending.
type OverdueInstallment struct {
	Installment Installment     `json:"installment"`
	SaleID      string          `json:"saleID"`
	UnitID      string          `json:"unitID"`
	BuyerID     string          `json:"buyerID"`
	BuyerName   string          `json:"buyerName"`
	Remaining   decimal.Decimal `json:"remaining"`
	DaysOverdue int             `json:"daysOverdue"`
}

// CollectionRate summarizes cash collection over a period: how much fell due
// against how much was actually collected.
type CollectionRate struct {
	From      time.Time       `json:"from"`
	To        time.Time       `json:"to"`
	DueAmount decimal.Decimal `json:"dueAmount"`
	Collected decimal.Decimal `json:"collected"`
	// Rate is collected / due, zero when nothing fell due.
	Rate decimal.Decimal `json:"rate"`
}

// SubdivisionOccupancy aggregates the unit statuses of one subdivision.
type SubdivisionOccupancy struct {
	SubdivisionID  string          `json:"subdivisionID"`
	Name           string          `json:"name"`
	AvailableUnits int             `json:"availableUnits"`
	ReservedUnits  int             `json:"reservedUnits"`
	SoldUnits      int             `json:"soldUnits"`
	SoldValue      decimal.Decimal `json:"soldValue"`
}

// SaleSnapshot is the read-only bundle the document-generation collaborator
// consumes to render contracts and receipts.
type SaleSnapshot struct {
	Sale         Sale          `json:"sale"`
	Buyer        Buyer         `json:"buyer"`
	Unit         Unit          `json:"unit"`
	Installments []Installment `json:"installments"`
	Progress     SaleProgress  `json:"progress"`
}
