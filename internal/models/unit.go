package models

import "github.com/shopspring/decimal"

// UnitStatus values stored in the units.status column.
const (
	UnitStatusAvailable = "AVAILABLE"
	UnitStatusReserved  = "RESERVED"
	UnitStatusSold      = "SOLD"
)

// Unit represents a row in the units table.
type Unit struct {
	UnitID         string          `db:"unit_id"`
	AgencyID       string          `db:"agency_id"`
	SubdivisionID  string          `db:"subdivision_id"`
	BlockID        *string         `db:"block_id"` // Nullable
	Reference      string          `db:"reference"`
	Area           decimal.Decimal `db:"area"`
	ListedPrice    decimal.Decimal `db:"listed_price"`
	Status         string          `db:"status"`
	AssignedUserID *string         `db:"assigned_user_id"` // Nullable
	AuditFields
}
