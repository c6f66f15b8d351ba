//go:build integration

package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"placement/pkg/testutil/containers"
)

func TestKafkaSinkProducesEvents(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping kafka integration test in short mode")
	}
	broker := containers.NewRedpandaContainer(t).Broker
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	const topic = "placement.audit.test"
	sink, err := NewKafkaSink([]string{broker}, topic)
	require.NoError(t, err)
	t.Cleanup(sink.Close)

	require.NoError(t, sink.Ping(ctx))
	require.NoError(t, sink.EnsureTopic(ctx, 1, 1))
	// Second call sees TopicAlreadyExists and still succeeds.
	require.NoError(t, sink.EnsureTopic(ctx, 1, 1))

	sent := Event{ID: "evt-1", Action: ActionJobApplied, Actor: "a@college.edu", PostingID: "p1", Timestamp: time.Now().UTC()}
	require.NoError(t, sink.Append(ctx, sent))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	t.Cleanup(consumer.Close)

	fetches := consumer.PollFetches(ctx)
	require.NoError(t, fetches.Err())
	records := fetches.Records()
	require.NotEmpty(t, records)

	assert.Equal(t, "a@college.edu", string(records[0].Key))
	var got Event
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	assert.Equal(t, sent.ID, got.ID)
	assert.Equal(t, ActionJobApplied, got.Action)
}
