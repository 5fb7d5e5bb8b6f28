package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shivamDefault/ChatLive/internal/domain"
	"github.com/shivamDefault/ChatLive/internal/ports"
	"gorm.io/gorm"
)

type chatStore struct {
	*writer
}

func (r *chatStore) NewID() string {
	return uuid.NewString()
}

func (r *chatStore) Create(ctx context.Context, chat domain.Chat) error {
	rec := toChatModel(chat)
	event := syncEvent{
		eventType:    EventChatCreated,
		partitionKey: chat.ChatID,
		data: map[string]string{
			"chat_id":      chat.ChatID,
			"participant1": chat.Participant1.UserID,
			"participant2": chat.Participant2.UserID,
			"pair_key":     rec.PairKey,
		},
		topics: []string{chatsTopic(chat.Participant1.UserID), chatsTopic(chat.Participant2.UserID)},
	}
	err := r.commit(ctx, event, func(tx *gorm.DB) error {
		return tx.Create(&rec).Error
	})
	return asConflict(err)
}

func (r *chatStore) Delete(ctx context.Context, chatID string) error {
	var rec chatModel
	if err := r.db.WithContext(ctx).Where("chat_id = ?", chatID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		return err
	}
	event := syncEvent{
		eventType:    EventChatDeleted,
		partitionKey: chatID,
		data:         map[string]string{"chat_id": chatID},
		topics:       []string{chatsTopic(rec.P1UserID), chatsTopic(rec.P2UserID), messagesTopic(chatID)},
	}
	return r.commit(ctx, event, func(tx *gorm.DB) error {
		res := tx.Where("chat_id = ?", chatID).Delete(&chatModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *chatStore) FindByNumberPair(ctx context.Context, a, b string) (domain.Chat, bool, error) {
	var rec chatModel
	err := r.db.WithContext(ctx).
		Where("(p1_number = ? AND p2_number = ?) OR (p1_number = ? AND p2_number = ?)", a, b, b, a).
		Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Chat{}, false, nil
	}
	if err != nil {
		return domain.Chat{}, false, err
	}
	return toDomainChat(rec), true, nil
}

func (r *chatStore) listByParticipant(ctx context.Context, userID string) ([]domain.Chat, error) {
	var rows []chatModel
	if err := r.db.WithContext(ctx).
		Where("p1_user_id = ? OR p2_user_id = ?", userID, userID).
		Order("created_at asc, chat_id asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Chat, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainChat(row))
	}
	return out, nil
}

func (r *chatStore) WatchByParticipant(ctx context.Context, userID string, fn ports.ChatsListener) (ports.Subscription, error) {
	load := func(ctx context.Context) ([]domain.Chat, error) {
		return r.listByParticipant(ctx, userID)
	}
	return watchQuery[[]domain.Chat](ctx, r.feed, []string{chatsTopic(userID)}, load, fn)
}
