package audit

import (
	"context"
	"log/slog"
	"time"
)

// Recorder is what services see: a fire-and-forget sink for security events.
type Recorder interface {
	Record(ctx context.Context, event Event)
}

// Publisher buffers events on a channel consumed by a Worker. Record never
// blocks the request path; when the buffer is full the event is dropped and
// logged. Auth operations must not fail because the audit trail is slow.
type Publisher struct {
	inbox  chan Event
	logger *slog.Logger
}

func NewPublisher(logger *slog.Logger, buffer int) *Publisher {
	return &Publisher{
		inbox:  make(chan Event, buffer),
		logger: logger,
	}
}

func (p *Publisher) Record(_ context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case p.inbox <- event:
	default:
		p.logger.Warn("audit buffer full, dropping event", "action", event.Action)
	}
}

// Inbox exposes the consuming side for the Worker.
func (p *Publisher) Inbox() <-chan Event {
	return p.inbox
}

// Close stops the stream; the draining Worker returns once the channel empties.
func (p *Publisher) Close() {
	close(p.inbox)
}

// NopRecorder discards events. Used in tests that do not assert on auditing.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Event) {}
