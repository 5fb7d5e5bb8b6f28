package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shivamDefault/ChatLive/internal/ports"
)

type fakeOutbox struct {
	events    []ports.SyncEvent
	published map[uuid.UUID]bool
	failures  map[uuid.UUID]string
}

func newFakeOutbox(events ...ports.SyncEvent) *fakeOutbox {
	return &fakeOutbox{
		events:    events,
		published: make(map[uuid.UUID]bool),
		failures:  make(map[uuid.UUID]string),
	}
}

func (o *fakeOutbox) Pending(_ context.Context, limit, maxAttempts int) ([]ports.SyncEvent, error) {
	var out []ports.SyncEvent
	for _, ev := range o.events {
		if o.published[ev.ID] || ev.Attempts >= maxAttempts {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, ev)
	}
	return out, nil
}

func (o *fakeOutbox) MarkPublished(_ context.Context, id uuid.UUID, _ time.Time) error {
	o.published[id] = true
	return nil
}

func (o *fakeOutbox) RecordFailure(_ context.Context, id uuid.UUID, reason string, _ time.Time) error {
	o.failures[id] = reason
	for i := range o.events {
		if o.events[i].ID == id {
			o.events[i].Attempts++
		}
	}
	return nil
}

type fakePublisher struct {
	failFor map[string]bool
	sent    []string
}

func (p *fakePublisher) Publish(_ context.Context, eventType string, _ []byte, key string) error {
	if p.failFor[eventType] {
		return errors.New("broker unavailable")
	}
	p.sent = append(p.sent, eventType+"/"+key)
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestOutboxWorkerRelay(t *testing.T) {
	t.Parallel()

	sent := ports.SyncEvent{ID: uuid.New(), Type: "message.sent", Key: "chat-1"}
	failing := ports.SyncEvent{ID: uuid.New(), Type: "chat.created", Key: "chat-2"}
	exhausted := ports.SyncEvent{ID: uuid.New(), Type: "status.posted", Key: "u1", Attempts: 3}

	outbox := newFakeOutbox(sent, failing, exhausted)
	publisher := &fakePublisher{failFor: map[string]bool{"chat.created": true}}
	worker := NewOutboxWorker(quietLogger(), outbox, publisher, OutboxConfig{MaxRetries: 3})

	n, err := worker.relay(context.Background())
	if err != nil {
		t.Fatalf("relay: %v", err)
	}
	if n != 1 || !outbox.published[sent.ID] {
		t.Fatalf("expected one published event, got n=%d", n)
	}
	if outbox.failures[failing.ID] != "broker unavailable" {
		t.Fatalf("expected failure to be recorded, got %q", outbox.failures[failing.ID])
	}
	if outbox.published[exhausted.ID] {
		t.Fatalf("exhausted event must not be offered")
	}
	if len(publisher.sent) != 1 || publisher.sent[0] != "message.sent/chat-1" {
		t.Fatalf("unexpected publishes %v", publisher.sent)
	}
}

func TestOutboxWorkerGivesUpAfterMaxRetries(t *testing.T) {
	t.Parallel()

	failing := ports.SyncEvent{ID: uuid.New(), Type: "chat.deleted", Key: "chat-9"}
	outbox := newFakeOutbox(failing)
	publisher := &fakePublisher{failFor: map[string]bool{"chat.deleted": true}}
	worker := NewOutboxWorker(quietLogger(), outbox, publisher, OutboxConfig{MaxRetries: 2})

	for i := 0; i < 4; i++ {
		if _, err := worker.relay(context.Background()); err != nil {
			t.Fatalf("relay %d: %v", i, err)
		}
	}
	if got := outbox.events[0].Attempts; got != 2 {
		t.Fatalf("expected exactly 2 attempts, got %d", got)
	}
}

func TestOutboxWorkerRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	outbox := newFakeOutbox(ports.SyncEvent{ID: uuid.New(), Type: "message.sent", Key: "chat-1"})
	publisher := &fakePublisher{}
	worker := NewOutboxWorker(quietLogger(), outbox, publisher, OutboxConfig{Interval: time.Millisecond, BatchSize: 1})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := worker.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if len(publisher.sent) != 1 {
		t.Fatalf("expected the pending event to be relayed once, got %v", publisher.sent)
	}
}

func TestKafkaPublisherTopicRouting(t *testing.T) {
	t.Parallel()

	if _, err := NewKafkaPublisher(nil, "", nil); err == nil {
		t.Fatalf("expected error without brokers")
	}
	p, err := NewKafkaPublisher([]string{"localhost:9092"}, "", map[string]string{"status.posted": "chatlive.statuses.v1"})
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	defer p.Close()
	if got := p.topicFor("status.posted"); got != "chatlive.statuses.v1" {
		t.Fatalf("expected mapped topic, got %q", got)
	}
	if got := p.topicFor("message.sent"); got != "chatlive.sync.v1" {
		t.Fatalf("expected default topic, got %q", got)
	}
}
