package audit

import (
	"context"
	"log/slog"
)

// Worker consumes audit events from the publisher's inbox and fans them out.
// Store appends are required; external sinks are best effort and only logged
// on failure so a broker outage never stalls the trail.
type Worker struct {
	store  Store
	sinks  []Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(store Store, inbox <-chan Event, logger *slog.Logger, sinks ...Sink) *Worker {
	return &Worker{store: store, sinks: sinks, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return ctx.Err()
		case event := <-w.inbox:
			w.deliver(ctx, event)
		}
	}
}

// drain flushes events already queued at shutdown, with a fresh context since
// the run context is gone.
func (w *Worker) drain() {
	ctx := context.Background()
	for {
		select {
		case event := <-w.inbox:
			w.deliver(ctx, event)
		default:
			return
		}
	}
}

func (w *Worker) deliver(ctx context.Context, event Event) {
	if err := w.store.Append(ctx, event); err != nil {
		w.logger.Error("failed to append audit event",
			"action", event.Action,
			"error", err,
		)
	}
	for _, sink := range w.sinks {
		if err := sink.Write(ctx, event); err != nil {
			w.logger.Warn("audit sink write failed",
				"action", event.Action,
				"error", err,
			)
		}
	}
}
