package models

import "github.com/shopspring/decimal"

// Subdivision represents a row in the subdivisions table.
type Subdivision struct {
	SubdivisionID string          `db:"subdivision_id"`
	AgencyID      string          `db:"agency_id"`
	Name          string          `db:"name"`
	Location      string          `db:"location"`
	Description   string          `db:"description"`
	TotalArea     decimal.Decimal `db:"total_area"`
	IsActive      bool            `db:"is_active"`
	AuditFields
}

// Block represents a row in the blocks table.
type Block struct {
	BlockID       string `db:"block_id"`
	SubdivisionID string `db:"subdivision_id"`
	Name          string `db:"name"`
	MaxUnits      *int   `db:"max_units"` // Nullable, null means uncapped
	AuditFields
}
