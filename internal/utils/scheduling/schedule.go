package scheduling

import (
	"fmt"
	"time"

	"github.com/sahelimmo/lotissement_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Terms carries the inputs schedule generation needs from a sale.
type Terms struct {
	SaleID           string
	PaymentType      domain.PaymentType
	SaleDate         time.Time
	TotalPrice       decimal.Decimal
	DownPayment      decimal.Decimal
	InstallmentCount int
	// FirstDueDate overrides the start of the monthly cadence. Nil means one
	// month after the sale date. Ignored for cash sales.
	FirstDueDate *time.Time
}

// NominalMonthly returns the per-installment nominal amount for the terms:
// (total - down) / count, truncated to 2 decimal places. The truncation
// remainder is absorbed into the final installment by Generate.
func NominalMonthly(net decimal.Decimal, count int) decimal.Decimal {
	if count <= 0 {
		return decimal.Zero
	}
	return net.Div(decimal.NewFromInt(int64(count))).Truncate(2)
}

// Generate builds the installment schedule for a sale. It is pure: identifiers
// and audit fields are filled in by the caller.
//
// Cash sale: a single installment due on the sale date for total - down, or no
// installments at all when the down payment already covers the full price.
// Installment sale: count installments at a fixed monthly cadence starting one
// month after the sale date, equal nominals with the rounding remainder on the
// last installment so the sum equals total - down exactly.
func Generate(terms Terms) ([]domain.Installment, error) {
	net := terms.TotalPrice.Sub(terms.DownPayment)
	if net.IsNegative() {
		return nil, fmt.Errorf("down payment %s exceeds total price %s", terms.DownPayment, terms.TotalPrice)
	}

	if terms.PaymentType == domain.PaymentCash {
		if net.IsZero() {
			return []domain.Installment{}, nil
		}
		return []domain.Installment{{
			SaleID:   terms.SaleID,
			Sequence: 1,
			DueDate:  terms.SaleDate,
			Amount:   net,
			Status:   domain.InstallmentPending,
		}}, nil
	}

	if terms.InstallmentCount < 1 {
		return nil, fmt.Errorf("installment sale requires at least one installment, got %d", terms.InstallmentCount)
	}

	firstDue := terms.SaleDate.AddDate(0, 1, 0)
	if terms.FirstDueDate != nil {
		firstDue = *terms.FirstDueDate
	}

	nominal := NominalMonthly(net, terms.InstallmentCount)
	installments := make([]domain.Installment, terms.InstallmentCount)
	allocated := decimal.Zero
	for i := 0; i < terms.InstallmentCount; i++ {
		amount := nominal
		if i == terms.InstallmentCount-1 {
			// Remainder goes to the last installment, not spread evenly,
			// so the schedule sum never drifts from total - down.
			amount = net.Sub(allocated)
		}
		allocated = allocated.Add(amount)
		installments[i] = domain.Installment{
			SaleID:   terms.SaleID,
			Sequence: i + 1,
			DueDate:  firstDue.AddDate(0, i, 0),
			Amount:   amount,
			Status:   domain.InstallmentPending,
		}
	}
	return installments, nil
}
