package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SyncEvent is a committed change waiting in the outbox.
type SyncEvent struct {
	ID        uuid.UUID
	Type      string
	Key       string
	Payload   []byte
	Attempts  int
	CreatedAt time.Time
}

// EventPublisher relays sync events downstream. key selects the partition.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload []byte, key string) error
}

// OutboxRepository is the relay's view of the outbox. Pending returns
// unpublished events with fewer than maxAttempts failures, oldest first.
type OutboxRepository interface {
	Pending(ctx context.Context, limit, maxAttempts int) ([]SyncEvent, error)
	MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error
	RecordFailure(ctx context.Context, id uuid.UUID, reason string, at time.Time) error
}

// ChangeFeed fans out "something changed" notifications per topic so live
// queries know when to re-read.
type ChangeFeed interface {
	Publish(ctx context.Context, topic string) error
	Subscribe(ctx context.Context, topic string, fn func()) (Subscription, error)
}
