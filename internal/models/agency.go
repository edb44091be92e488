package models

import "time"

// Agency represents a tenant row in the agencies table.
type Agency struct {
	AgencyID    string `db:"agency_id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	Phone       string `db:"phone"`
	Email       string `db:"email"`
	IsActive    bool   `db:"is_active"`
	AuditFields
}

// UserAgency represents a membership row in the user_agencies table.
type UserAgency struct {
	UserID   string    `db:"user_id"`
	AgencyID string    `db:"agency_id"`
	Role     string    `db:"role"`
	JoinedAt time.Time `db:"joined_at"`
}
