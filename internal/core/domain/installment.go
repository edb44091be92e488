package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InstallmentStatus indicates the settlement state of one scheduled payment.
type InstallmentStatus string

const (
	InstallmentPending InstallmentStatus = "PENDING"
	InstallmentPaid    InstallmentStatus = "PAID"
	InstallmentLate    InstallmentStatus = "LATE"
)

// Installment represents an échéance: one scheduled payment within a sale's
// payment plan. Installments are generated once at sale creation and afterwards
// only mutated by the reconciliation engine; they survive sale cancellation for
// audit purposes.
type Installment struct {
	InstallmentID string            `json:"installmentID"` // Primary Key (UUID)
	SaleID        string            `json:"saleID"`        // FK -> sales.sale_id (Not Null)
	Sequence      int               `json:"sequence"`      // 1-based position in the schedule
	DueDate       time.Time         `json:"dueDate"`
	Amount        decimal.Decimal   `json:"amount"` // Nominal amount due
	Status        InstallmentStatus `json:"status"`
	PaidAmount    decimal.Decimal   `json:"paidAmount"` // Cumulative, zero when untouched
	PaidDate      *time.Time        `json:"paidDate,omitempty"`
	PaymentMethod string            `json:"paymentMethod"` // Recorded on settlement
	ReceiptNumber string            `json:"receiptNumber"`
	// Version supports conditional writes; it increments on every mutation.
	Version int64 `json:"version"`
	AuditFields
}

// Remaining is the unpaid portion of the nominal amount.
func (i *Installment) Remaining() decimal.Decimal {
	return i.Amount.Sub(i.PaidAmount)
}

// IsSettled reports whether the installment is fully paid.
func (i *Installment) IsSettled() bool {
	return i.PaidAmount.GreaterThanOrEqual(i.Amount)
}

// DeriveStatus recomputes the status from the installment's own data as of the
// given instant: PAID iff paid amount >= nominal; LATE iff the due date is
// strictly past and it is not fully paid; PENDING otherwise. Status is never
// sticky: a payment after a late flag flips the derivation back to PAID.
func (i *Installment) DeriveStatus(asOf time.Time) InstallmentStatus {
	if i.IsSettled() {
		return InstallmentPaid
	}
	if i.DueDate.Before(truncateToDay(asOf)) {
		return InstallmentLate
	}
	return InstallmentPending
}

// DaysOverdue returns how many whole days past due the installment is as of
// the given instant; zero when settled or not yet due.
func (i *Installment) DaysOverdue(asOf time.Time) int {
	if i.IsSettled() {
		return 0
	}
	due := truncateToDay(i.DueDate)
	now := truncateToDay(asOf)
	if !due.Before(now) {
		return 0
	}
	return int(now.Sub(due).Hours() / 24)
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
