package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment represents an append-only row in the payments table.
type Payment struct {
	PaymentID         string          `db:"payment_id"`
	InstallmentID     string          `db:"installment_id"`
	SaleID            string          `db:"sale_id"`
	Amount            decimal.Decimal `db:"amount"`
	PaidDate          time.Time       `db:"paid_date"`
	Method            string          `db:"method"`
	ReceiptNumber     string          `db:"receipt_number"`
	ExternalReference *string         `db:"external_reference"` // Nullable, unique when present
	AuditFields
}
