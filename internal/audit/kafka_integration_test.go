//go:build integration

package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"orghub/pkg/testutil/containers"
)

func TestKafkaSinkPublishesEvents(t *testing.T) {
	ctx := context.Background()
	redpanda := containers.NewRedpandaContainer(t)

	const topic = "orghub.audit.test"
	sink, err := NewKafkaSink(ctx, []string{redpanda.Broker}, topic)
	require.NoError(t, err)
	defer sink.Close()

	// Ensuring an existing topic must not fail.
	sink2, err := NewKafkaSink(ctx, []string{redpanda.Broker}, topic)
	require.NoError(t, err)
	sink2.Close()

	sent := Event{
		Timestamp:        time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC),
		RequestID:        "req-1",
		Action:           ActionOrgCreated,
		OrganizationName: "Acme",
		AdminEmail:       "admin@acme.test",
	}
	require.NoError(t, sink.Write(ctx, sent))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(redpanda.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	fetches := consumer.PollFetches(fetchCtx)
	require.NoError(t, fetches.Err())

	records := fetches.Records()
	require.Len(t, records, 1)
	require.Equal(t, "Acme", string(records[0].Key))

	var got Event
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	require.Equal(t, sent, got)
}
