package audit

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	mu     sync.Mutex
	events []Event
}

func (c *captureSink) Publish(_ context.Context, event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *captureSink) Close() error { return nil }

func (c *captureSink) snapshot() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.events...)
}

func TestWorkerDeliversEmittedEvents(t *testing.T) {
	logger := slog.Default()
	publisher := NewPublisher(8, logger)
	sink := &captureSink{}
	worker := NewWorker(sink, publisher, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = worker.Run(ctx)
	}()

	publisher.Emit(Event{UserID: "u1", Action: ActionUserLogin})
	publisher.Emit(Event{UserID: "u1", Action: ActionChatMessage, Subject: "session-1"})

	require.Eventually(t, func() bool {
		return len(sink.snapshot()) == 2
	}, time.Second, 10*time.Millisecond)

	events := sink.snapshot()
	assert.Equal(t, ActionUserLogin, events[0].Action)
	assert.False(t, events[0].Timestamp.IsZero())
	assert.Equal(t, "session-1", events[1].Subject)

	cancel()
	<-done
}

func TestNilPublisherEmitIsSafe(t *testing.T) {
	var p *Publisher
	assert.NotPanics(t, func() {
		p.Emit(Event{UserID: "u1", Action: ActionUserLogin})
	})
}
