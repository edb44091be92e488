package domain

import "time"

// EventKind names a domain fact the core emits for external collaborators
// (messaging, activity log). The core performs no outbound I/O itself.
type EventKind string

const (
	EventSaleCompleted      EventKind = "sale.completed"
	EventSaleCancelled      EventKind = "sale.cancelled"
	EventInstallmentPaid    EventKind = "installment.paid"
	EventInstallmentOverdue EventKind = "installment.overdue"
)

// Event is one emitted domain fact.
type Event struct {
	Kind       EventKind         `json:"kind"`
	AgencyID   string            `json:"agencyID"`
	OccurredAt time.Time         `json:"occurredAt"`
	Attributes map[string]string `json:"attributes"`
}
