package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"orghub/pkg/requestcontext"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublisherEnrichesFromContext(t *testing.T) {
	pub := NewPublisher(4, discardLogger())

	now := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	ctx = requestcontext.WithRequestID(ctx, "req-123")

	pub.Emit(ctx, Event{Action: ActionOrgCreated, OrganizationName: "Acme"})

	event := <-pub.Inbox()
	require.Equal(t, now, event.Timestamp)
	require.Equal(t, "req-123", event.RequestID)
	require.Equal(t, ActionOrgCreated, event.Action)
}

func TestPublisherKeepsExplicitFields(t *testing.T) {
	pub := NewPublisher(4, discardLogger())

	stamped := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	pub.Emit(context.Background(), Event{
		Timestamp: stamped,
		RequestID: "explicit",
		Action:    ActionOrgDeleted,
	})

	event := <-pub.Inbox()
	require.Equal(t, stamped, event.Timestamp)
	require.Equal(t, "explicit", event.RequestID)
}

func TestPublisherDropsWhenInboxFull(t *testing.T) {
	pub := NewPublisher(1, discardLogger())

	pub.Emit(context.Background(), Event{Action: ActionOrgCreated})
	pub.Emit(context.Background(), Event{Action: ActionOrgDeleted})

	require.Len(t, pub.Inbox(), 1)
	event := <-pub.Inbox()
	require.Equal(t, ActionOrgCreated, event.Action)
}

func TestWorkerDeliversToStoreAndSinks(t *testing.T) {
	pub := NewPublisher(8, discardLogger())
	store := NewInMemory()
	sink := &captureSink{}
	worker := NewWorker(store, pub.Inbox(), discardLogger(), sink)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	pub.Emit(context.Background(), Event{Action: ActionOrgCreated, OrganizationName: "Acme"})
	pub.Emit(context.Background(), Event{Action: ActionOrgUpdated, OrganizationName: "Acme"})

	require.Eventually(t, func() bool {
		return len(store.All()) == 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	events, err := store.ListByOrganization(context.Background(), "Acme")
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Len(t, sink.events, 2)
}

func TestWorkerDrainsInboxOnShutdown(t *testing.T) {
	pub := NewPublisher(8, discardLogger())
	store := NewInMemory()
	worker := NewWorker(store, pub.Inbox(), discardLogger())

	pub.Emit(context.Background(), Event{Action: ActionOrgCreated})
	pub.Emit(context.Background(), Event{Action: ActionOrgDeleted})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, worker.Run(ctx), context.Canceled)

	require.Len(t, store.All(), 2)
}

func TestWorkerSurvivesSinkFailure(t *testing.T) {
	pub := NewPublisher(8, discardLogger())
	store := NewInMemory()
	sink := &captureSink{err: errors.New("broker down")}
	worker := NewWorker(store, pub.Inbox(), discardLogger(), sink)

	pub.Emit(context.Background(), Event{Action: ActionOrgCreated})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, worker.Run(ctx), context.Canceled)

	require.Len(t, store.All(), 1)
}

type captureSink struct {
	err    error
	events []Event
}

func (c *captureSink) Write(_ context.Context, event Event) error {
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, event)
	return nil
}
