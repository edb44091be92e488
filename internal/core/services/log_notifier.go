package services

import (
	"context"
	"log/slog"

	"github.com/sahelimmo/lotissement_app/internal/core/domain"
	portssvc "github.com/sahelimmo/lotissement_app/internal/core/ports/services"
)

// LogNotifier delivers domain events to the structured log through a buffered
// channel. Publish never blocks: when the buffer is full the event is dropped
// and counted, which is acceptable because events are advisory, not part of
// the transactional state.
type LogNotifier struct {
	logger *slog.Logger
	events chan domain.Event
	done   chan struct{}
}

// NewLogNotifier creates a notifier draining into the given logger and starts
// its delivery goroutine. Call Close on shutdown to drain remaining events.
func NewLogNotifier(logger *slog.Logger, bufferSize int) *LogNotifier {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	n := &LogNotifier{
		logger: logger,
		events: make(chan domain.Event, bufferSize),
		done:   make(chan struct{}),
	}
	go n.run()
	return n
}

var _ portssvc.Notifier = (*LogNotifier)(nil)

// Publish enqueues an event for delivery. Never blocks.
func (n *LogNotifier) Publish(_ context.Context, event domain.Event) {
	select {
	case n.events <- event:
	default:
		n.logger.Warn("Event buffer full, dropping event", slog.String("kind", string(event.Kind)))
	}
}

// Close stops accepting events and drains what is already queued.
func (n *LogNotifier) Close() {
	close(n.events)
	<-n.done
}

func (n *LogNotifier) run() {
	defer close(n.done)
	for event := range n.events {
		attrs := []any{
			slog.String("kind", string(event.Kind)),
			slog.String("agency_id", event.AgencyID),
			slog.Time("occurred_at", event.OccurredAt),
		}
		for key, value := range event.Attributes {
			attrs = append(attrs, slog.String(key, value))
		}
		n.logger.Info("Domain event", attrs...)
	}
}
