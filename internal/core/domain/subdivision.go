package domain

import "github.com/shopspring/decimal"

// Subdivision represents a lotissement: a named land development owned by an
// agency and carved into sellable units, optionally grouped into blocks.
type Subdivision struct {
	SubdivisionID string          `json:"subdivisionID"` // Primary Key (UUID)
	AgencyID      string          `json:"agencyID"`      // FK -> agencies.agency_id (Not Null)
	Name          string          `json:"name"`
	Location      string          `json:"location"`
	Description   string          `json:"description"`
	TotalArea     decimal.Decimal `json:"totalArea"` // m², informational
	IsActive      bool            `json:"isActive"`
	AuditFields
}

// Block represents an îlot: a sub-grouping of units within a subdivision with
// an optional cap on how many units it may contain.
type Block struct {
	BlockID       string `json:"blockID"`       // Primary Key (UUID)
	SubdivisionID string `json:"subdivisionID"` // FK -> subdivisions.subdivision_id (Not Null)
	Name          string `json:"name"`
	MaxUnits      *int   `json:"maxUnits"` // Nil means uncapped
	AuditFields
}

// CanAssign reports whether one more unit may be assigned to the block given a
// fresh count of currently-assigned units. The count must be taken inside the
// same transaction as the assignment write.
func (b *Block) CanAssign(currentUnitCount int) bool {
	if b.MaxUnits == nil {
		return true
	}
	return currentUnitCount < *b.MaxUnits
}
