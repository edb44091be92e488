package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Installment represents a row in the installments table.
type Installment struct {
	InstallmentID string          `db:"installment_id"`
	SaleID        string          `db:"sale_id"`
	Sequence      int             `db:"sequence"`
	DueDate       time.Time       `db:"due_date"`
	Amount        decimal.Decimal `db:"amount"`
	Status        string          `db:"status"`
	PaidAmount    decimal.Decimal `db:"paid_amount"`
	PaidDate      *time.Time      `db:"paid_date"`
	PaymentMethod string          `db:"payment_method"`
	ReceiptNumber string          `db:"receipt_number"`
	Version       int64           `db:"version"`
	AuditFields
}
