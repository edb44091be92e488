package domain

import "github.com/shopspring/decimal"

// UnitStatus defines the sale state of a unit.
type UnitStatus string

const (
	UnitAvailable UnitStatus = "AVAILABLE"
	UnitReserved  UnitStatus = "RESERVED"
	UnitSold      UnitStatus = "SOLD"
)

// Unit represents a parcelle: an individually sellable plot or property within
// a subdivision, optionally assigned to a block.
type Unit struct {
	UnitID         string          `json:"unitID"`        // Primary Key (UUID)
	AgencyID       string          `json:"agencyID"`      // FK -> agencies.agency_id (Not Null)
	SubdivisionID  string          `json:"subdivisionID"` // FK -> subdivisions.subdivision_id (Not Null)
	BlockID        *string         `json:"blockID"`       // Nullable FK -> blocks.block_id
	Reference      string          `json:"reference"`     // Parcel number, unique per subdivision
	Area           decimal.Decimal `json:"area"`          // m²
	ListedPrice    decimal.Decimal `json:"listedPrice"`
	Status         UnitStatus      `json:"status"`
	AssignedUserID *string         `json:"assignedUserID"` // Optional staff member in charge
	AuditFields
}
