package postgres

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shivamDefault/ChatLive/internal/ports"
	"gorm.io/gorm"
)

const (
	EventProfileUpserted = "profile.upserted"
	EventChatCreated     = "chat.created"
	EventChatDeleted     = "chat.deleted"
	EventMessageSent     = "message.sent"
	EventStatusPosted    = "status.posted"
)

func profileTopic(userID string) string { return "users:" + userID }

func chatsTopic(userID string) string { return "chats:" + userID }

func messagesTopic(chatID string) string { return "messages:" + chatID }

func statusesTopic(posterID string) string { return "statuses:" + posterID }

type syncEvent struct {
	eventType    string
	partitionKey string
	data         any
	topics       []string
}

// writer applies a change and its outbox row in one transaction, then nudges
// live queries through the change feed.
type writer struct {
	db          *gorm.DB
	feed        ports.ChangeFeed
	serviceName string
	nowFn       func() time.Time
}

func (w *writer) commit(ctx context.Context, event syncEvent, apply func(tx *gorm.DB) error) error {
	occurredAt := w.nowFn()
	eventID := uuid.New()
	payload, err := json.Marshal(map[string]any{
		"event_id":       eventID.String(),
		"event_type":     event.eventType,
		"occurred_at":    occurredAt.Format(time.RFC3339Nano),
		"source_service": w.serviceName,
		"schema_version": "1.0",
		"partition_key":  event.partitionKey,
		"data":           event.data,
	})
	if err != nil {
		return err
	}

	err = w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := apply(tx); err != nil {
			return err
		}
		return tx.Create(&syncOutboxModel{
			EventID:      eventID,
			EventType:    event.eventType,
			PartitionKey: event.partitionKey,
			Payload:      string(payload),
			CreatedAt:    occurredAt,
		}).Error
	})
	if err != nil {
		return err
	}
	w.notify(ctx, event.topics...)
	return nil
}

// notify runs after commit; a lost nudge only delays live queries until the
// next change on the same topic.
func (w *writer) notify(ctx context.Context, topics ...string) {
	if w.feed == nil {
		return
	}
	for _, topic := range topics {
		if err := w.feed.Publish(ctx, topic); err != nil {
			slog.Default().WarnContext(ctx, "change feed publish failed",
				"module", "postgres.writer",
				"layer", "adapter",
				"operation", "notify",
				"outcome", "failure",
				"topic", topic,
				"error", err,
			)
		}
	}
}
