package audit

import (
	"context"
	"log/slog"
	"time"
)

// Sink receives events for durable delivery.
type Sink interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Publisher buffers events on a channel so request handlers never block on
// the sink. A nil Publisher drops everything, which keeps eventing optional.
type Publisher struct {
	inbox  chan Event
	logger *slog.Logger
}

func NewPublisher(buffer int, logger *slog.Logger) *Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Publisher{
		inbox:  make(chan Event, buffer),
		logger: logger,
	}
}

// Emit enqueues an event. When the buffer is full the event is dropped and
// logged rather than stalling the caller.
func (p *Publisher) Emit(base Event) {
	if p == nil {
		return
	}
	if base.Timestamp.IsZero() {
		base.Timestamp = time.Now().UTC()
	}
	select {
	case p.inbox <- base:
	default:
		p.logger.Warn("audit buffer full, dropping event", "action", base.Action, "user_id", base.UserID)
	}
}

// Worker drains the publisher's inbox into a sink. Run it in a background
// goroutine for the life of the process.
type Worker struct {
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(sink Sink, publisher *Publisher, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, inbox: publisher.inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.sink.Publish(ctx, event); err != nil {
				// Delivery failures are logged, not fatal; events are
				// advisory and the process should keep serving.
				w.logger.Error("publish audit event", "action", event.Action, "error", err)
			}
		}
	}
}
