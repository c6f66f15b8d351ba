package audit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSink struct{}

func (failingSink) Append(context.Context, Event) error { return errors.New("broker down") }

func TestChannelSinkReportsFullBuffer(t *testing.T) {
	sink := make(ChannelSink, 1)
	require.NoError(t, sink.Append(context.Background(), Event{ID: "1"}))
	require.ErrorIs(t, sink.Append(context.Background(), Event{ID: "2"}), ErrBufferFull)
}

func TestWorkerDrainsInbox(t *testing.T) {
	inbox := make(ChannelSink, 4)
	store := NewInMemoryStore()
	w := NewWorker(store, inbox, nil)

	require.NoError(t, inbox.Append(context.Background(), Event{ID: "1", Actor: "a@college.edu"}))
	require.NoError(t, inbox.Append(context.Background(), Event{ID: "2", Actor: "a@college.edu"}))
	close(inbox)

	require.NoError(t, w.Run(context.Background()))
	assert.Len(t, store.All(), 2)
}

func TestWorkerLogsSinkFailures(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	inbox := make(ChannelSink, 1)
	w := NewWorker(failingSink{}, inbox, logger)

	require.NoError(t, inbox.Append(context.Background(), Event{ID: "evt-1", Action: ActionJobApplied}))
	close(inbox)

	require.NoError(t, w.Run(context.Background()))
	assert.Contains(t, buf.String(), "failed to forward audit event")
	assert.Contains(t, buf.String(), "evt-1")
}

func TestWorkerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewWorker(NewInMemoryStore(), make(ChannelSink), nil).Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
