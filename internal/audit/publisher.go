package audit

import (
	"context"
	"log/slog"

	"orghub/pkg/requestcontext"
)

// Publisher captures structured audit events. Emission is asynchronous: events
// go onto a bounded inbox drained by the Worker, so domain operations never
// block on audit delivery. A full inbox drops the event with a warning.
type Publisher struct {
	inbox  chan Event
	logger *slog.Logger
}

func NewPublisher(bufferSize int, logger *slog.Logger) *Publisher {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &Publisher{
		inbox:  make(chan Event, bufferSize),
		logger: logger,
	}
}

// Emit enriches the event from request context and queues it for delivery.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	select {
	case p.inbox <- event:
	default:
		p.logger.Warn("audit inbox full, dropping event",
			"action", event.Action,
			"organization_name", event.OrganizationName,
		)
	}
}

// Inbox exposes the event channel for the Worker.
func (p *Publisher) Inbox() <-chan Event {
	return p.inbox
}
