package services

import (
	"context"

	"github.com/sahelimmo/lotissement_app/internal/core/domain"
)

// Notifier receives domain events for delivery to external collaborators
// (messaging, activity log). Implementations must not block the caller;
// delivery failures are logged, never surfaced to the emitting operation.
type Notifier interface {
	Publish(ctx context.Context, event domain.Event)
}
