package domain

// Buyer represents an acquéreur: the purchasing party on a sale.
type Buyer struct {
	BuyerID    string `json:"buyerID"`  // Primary Key (UUID)
	AgencyID   string `json:"agencyID"` // FK -> agencies.agency_id (Not Null)
	FullName   string `json:"fullName"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	NationalID string `json:"nationalID"`
	Address    string `json:"address"`
	AuditFields
}
