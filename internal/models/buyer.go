package models

// Buyer represents a row in the buyers table.
type Buyer struct {
	BuyerID    string `db:"buyer_id"`
	AgencyID   string `db:"agency_id"`
	FullName   string `db:"full_name"`
	Phone      string `db:"phone"`
	Email      string `db:"email"`
	NationalID string `db:"national_id"`
	Address    string `db:"address"`
	AuditFields
}
