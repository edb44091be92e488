package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is the record of one settlement applied to an installment. Payments
// are append-only; the installment's cumulative paid amount is the sum of its
// payments and is kept consistent inside the same write transaction.
type Payment struct {
	PaymentID     string          `json:"paymentID"` // Primary Key (UUID)
	InstallmentID string          `json:"installmentID"`
	SaleID        string          `json:"saleID"`
	Amount        decimal.Decimal `json:"amount"`
	PaidDate      time.Time       `json:"paidDate"`
	Method        string          `json:"method"` // cash, bank transfer, mobile money...
	ReceiptNumber string          `json:"receiptNumber"`
	// ExternalReference is the settlement id assigned by the payment
	// collaborator; re-delivery of the same reference is a no-op.
	ExternalReference *string `json:"externalReference,omitempty"`
	AuditFields
}
