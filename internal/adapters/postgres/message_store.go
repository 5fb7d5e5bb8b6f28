package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/shivamDefault/ChatLive/internal/domain"
	"github.com/shivamDefault/ChatLive/internal/ports"
	"gorm.io/gorm"
)

type messageStore struct {
	*writer
}

func (r *messageStore) Append(ctx context.Context, chatID string, msg domain.Message) (domain.Message, error) {
	msg.ChatID = chatID
	if msg.MessageID == "" {
		msg.MessageID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = r.nowFn()
	}
	rec := messageModel{
		MessageID: msg.MessageID,
		ChatID:    chatID,
		SenderID:  msg.SenderID,
		Text:      msg.Text,
		SentAt:    msg.Timestamp,
	}
	event := syncEvent{
		eventType:    EventMessageSent,
		partitionKey: chatID,
		data: map[string]string{
			"chat_id":    chatID,
			"message_id": msg.MessageID,
			"sender_id":  msg.SenderID,
		},
		topics: []string{messagesTopic(chatID)},
	}
	if err := r.commit(ctx, event, func(tx *gorm.DB) error {
		return tx.Create(&rec).Error
	}); err != nil {
		return domain.Message{}, err
	}
	return msg, nil
}

func (r *messageStore) Watch(ctx context.Context, chatID string, fn ports.MessagesListener) (ports.Subscription, error) {
	load := func(ctx context.Context) ([]domain.Message, error) {
		var rows []messageModel
		if err := r.db.WithContext(ctx).
			Where("chat_id = ?", chatID).
			Order("sent_at asc, message_id asc").
			Find(&rows).Error; err != nil {
			return nil, err
		}
		out := make([]domain.Message, 0, len(rows))
		for _, row := range rows {
			out = append(out, toDomainMessage(row))
		}
		return out, nil
	}
	return watchQuery[[]domain.Message](ctx, r.feed, []string{messagesTopic(chatID)}, load, fn)
}
