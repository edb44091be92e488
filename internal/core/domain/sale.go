package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentType distinguishes how a sale is settled.
type PaymentType string

const (
	PaymentCash        PaymentType = "CASH"
	PaymentInstallment PaymentType = "INSTALLMENT"
)

// SaleStatus indicates the lifecycle state of a sale record.
type SaleStatus string

const (
	SaleInProgress SaleStatus = "IN_PROGRESS"
	SaleComplete   SaleStatus = "COMPLETE"
	SaleCancelled  SaleStatus = "CANCELLED"
)

// Sale represents one buyer's acquisition of one unit, cash or installment.
// TotalPrice is immutable after creation; corrections go through cancellation
// and re-creation, never through mutation of an existing record.
type Sale struct {
	SaleID           string          `json:"saleID"`   // Primary Key (UUID)
	AgencyID         string          `json:"agencyID"` // FK -> agencies.agency_id (Not Null)
	UnitID           string          `json:"unitID"`   // FK -> units.unit_id (Not Null)
	BuyerID          string          `json:"buyerID"`  // FK -> buyers.buyer_id (Not Null)
	TotalPrice       decimal.Decimal `json:"totalPrice"`
	PaymentType      PaymentType     `json:"paymentType"`
	SaleDate         time.Time       `json:"saleDate"`
	Status           SaleStatus      `json:"status"`
	DownPayment      decimal.Decimal `json:"downPayment"`
	InstallmentCount int             `json:"installmentCount"` // 0 for cash sales
	MonthlyAmount    decimal.Decimal `json:"monthlyAmount"`    // Nominal per installment, informational
	// AcceptedOutstanding is non-nil when staff finalized the sale with a
	// balance explicitly accepted as owner policy.
	AcceptedOutstanding *decimal.Decimal `json:"acceptedOutstanding,omitempty"`
	CancelledAt         *time.Time       `json:"cancelledAt,omitempty"`
	CompletedAt         *time.Time       `json:"completedAt,omitempty"`
	AuditFields

	// Installments is populated on demand, not by every read.
	Installments []Installment `json:"installments,omitempty"`
}

// NetPayable is the amount covered by the installment schedule: total price
// minus down payment.
func (s *Sale) NetPayable() decimal.Decimal {
	return s.TotalPrice.Sub(s.DownPayment)
}

// UnitStatusAtCreation is the status the unit takes when this sale is first
// persisted. The unit stays RESERVED while the sale is in progress and
// becomes SOLD only when the sale is already complete at creation.
func (s *Sale) UnitStatusAtCreation() UnitStatus {
	if s.Status == SaleComplete {
		return UnitSold
	}
	return UnitReserved
}
