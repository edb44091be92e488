package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale represents a row in the sales table.
type Sale struct {
	SaleID              string           `db:"sale_id"`
	AgencyID            string           `db:"agency_id"`
	UnitID              string           `db:"unit_id"`
	BuyerID             string           `db:"buyer_id"`
	TotalPrice          decimal.Decimal  `db:"total_price"`
	PaymentType         string           `db:"payment_type"`
	SaleDate            time.Time        `db:"sale_date"`
	Status              string           `db:"status"`
	DownPayment         decimal.Decimal  `db:"down_payment"`
	InstallmentCount    int              `db:"installment_count"`
	MonthlyAmount       decimal.Decimal  `db:"monthly_amount"`
	AcceptedOutstanding *decimal.Decimal `db:"accepted_outstanding"` // Nullable
	CancelledAt         *time.Time       `db:"cancelled_at"`
	CompletedAt         *time.Time       `db:"completed_at"`
	AuditFields
}
