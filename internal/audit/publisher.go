package audit

import (
	"context"
	"log/slog"
	"time"
)

// Publisher is the sink for audit events. Registries treat emission as
// fire-and-forget: a publish error is logged, never returned to the caller.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// normalize fills the derived fields every sink expects.
func normalize(event Event) Event {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = event.Action.Category()
	}
	return event
}

// LogPublisher writes audit events to a structured logger. It is the default
// sink when no event stream is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Emit(ctx context.Context, event Event) error {
	event = normalize(event)
	p.logger.InfoContext(ctx, "audit event",
		"category", string(event.Category),
		"action", string(event.Action),
		"collection", event.Collection,
		"subject", event.Subject,
		"actor_id", event.ActorID,
		"role", event.Role,
		"reason", event.Reason,
		"request_id", event.RequestID,
		"client_ip", event.ClientIP,
		"timestamp", event.Timestamp,
	)
	return nil
}
