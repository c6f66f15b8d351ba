package audit

import (
	"context"
	"errors"
	"log/slog"
)

// ErrBufferFull is returned by ChannelSink when the worker is behind.
var ErrBufferFull = errors.New("audit buffer full")

// ChannelSink queues events for a Worker without blocking the request.
type ChannelSink chan Event

func (c ChannelSink) Append(_ context.Context, event Event) error {
	select {
	case c <- event:
		return nil
	default:
		return ErrBufferFull
	}
}

// Worker drains queued events into the downstream sink. A failed append is
// logged and the worker moves on.
type Worker struct {
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(sink Sink, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

// Run blocks until ctx is done or the inbox is closed.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			if err := w.sink.Append(ctx, event); err != nil && w.logger != nil {
				w.logger.ErrorContext(ctx, "failed to forward audit event",
					"error", err,
					"action", event.Action,
					"event_id", event.ID,
				)
			}
		}
	}
}
