package audit

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// AsyncPublisher queues events on a bounded channel and hands them to a sink
// from a background Worker, so a slow sink never delays a registry call.
// Events arriving while the queue is full are dropped and counted.
type AsyncPublisher struct {
	inbox   chan Event
	dropped atomic.Int64
}

func NewAsyncPublisher(capacity int) *AsyncPublisher {
	if capacity <= 0 {
		capacity = 256
	}
	return &AsyncPublisher{inbox: make(chan Event, capacity)}
}

func (p *AsyncPublisher) Emit(_ context.Context, event Event) error {
	select {
	case p.inbox <- normalize(event):
	default:
		p.dropped.Add(1)
	}
	return nil
}

// Dropped reports how many events were discarded because the queue was full.
func (p *AsyncPublisher) Dropped() int64 {
	return p.dropped.Load()
}

// Worker returns the consumer that drains this publisher into sink.
func (p *AsyncPublisher) Worker(sink Publisher, logger *slog.Logger) *Worker {
	return NewWorker(sink, p.inbox, logger)
}

// Worker consumes audit events from a channel and forwards them to a sink.
type Worker struct {
	sink   Publisher
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(sink Publisher, inbox <-chan Event, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

// Run forwards events until ctx is cancelled. Sink failures are logged and
// the event is discarded.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return ctx.Err()
		case event := <-w.inbox:
			w.forward(ctx, event)
		}
	}
}

// drain flushes what is already queued so shutdown does not lose events.
func (w *Worker) drain() {
	for {
		select {
		case event := <-w.inbox:
			w.forward(context.Background(), event)
		default:
			return
		}
	}
}

func (w *Worker) forward(ctx context.Context, event Event) {
	if err := w.sink.Emit(ctx, event); err != nil {
		w.logger.WarnContext(ctx, "failed to publish audit event",
			"error", err,
			"action", string(event.Action),
			"request_id", event.RequestID,
		)
	}
}
