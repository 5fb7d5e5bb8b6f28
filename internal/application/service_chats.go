package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/shivamDefault/ChatLive/internal/domain"
	"github.com/shivamDefault/ChatLive/internal/ports"
)

// OtherParticipant returns the counterpart of myID in chat.
func (s *Service) OtherParticipant(chat domain.Chat, myID string) (domain.ChatParticipant, error) {
	return domain.OtherParticipant(chat, myID)
}

func (s *Service) subscribeChats(profileGen uint64, userID string) error {
	return s.attach(&s.chatSlot, func() bool {
		if !s.profileSlot.current(profileGen) {
			return false
		}
		s.state.ChatsLoading = true
		return true
	}, func(gen uint64) (ports.Subscription, error) {
		return s.chats.WatchByParticipant(s.ctx, userID, s.onChats(gen, userID))
	})
}

func (s *Service) onChats(gen uint64, userID string) ports.ChatsListener {
	return func(chats []domain.Chat, err error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.chatSlot.current(gen) {
			return
		}
		s.state.ChatsLoading = false
		if err != nil {
			_ = s.failLocked(s.ctx, "watch_chats", err)
			return
		}
		views := make([]ChatView, 0, len(chats))
		for _, chat := range chats {
			partner, err := domain.OtherParticipant(chat, userID)
			if err != nil {
				continue
			}
			views = append(views, ChatView{Chat: chat, Partner: partner})
		}
		s.state.Chats = views
		s.changedLocked()
	}
}

// AddChat starts a chat with the owner of number. At most one chat exists per
// unordered pair of numbers.
func (s *Service) AddChat(ctx context.Context, number string) error {
	return s.mutate(ctx, "add_chat", func(ctx context.Context) error {
		if err := domain.RequireFields(domain.Field{Name: "number", Value: number}); err != nil {
			return err
		}
		if err := domain.ValidateNumber(number); err != nil {
			return err
		}
		me, err := s.currentProfile(ctx)
		if err != nil {
			return err
		}
		if me.Number == "" {
			return fmt.Errorf("%w: profile has no number", domain.ErrValidation)
		}
		if number == me.Number {
			return fmt.Errorf("%w: cannot start a chat with yourself", domain.ErrValidation)
		}

		_, found, err := s.chats.FindByNumberPair(ctx, me.Number, number)
		if err != nil {
			return err
		}
		if found {
			return domain.ErrDuplicateChat
		}

		target, err := s.profiles.FindByNumber(ctx, number)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrContactNotFound
		}
		if err != nil {
			return err
		}

		chat := domain.Chat{
			ChatID:       s.chats.NewID(),
			Participant1: me.Participant(),
			Participant2: target.Participant(),
			CreatedAt:    s.nowFn(),
		}
		if err := s.chats.Create(ctx, chat); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return domain.ErrDuplicateChat
			}
			return err
		}
		return nil
	})
}

// DeleteChat removes a chat. An open message stream on it is released.
func (s *Service) DeleteChat(ctx context.Context, chatID string) error {
	return s.mutate(ctx, "delete_chat", func(ctx context.Context) error {
		if _, err := s.currentUser(); err != nil {
			return err
		}
		if err := domain.RequireFields(domain.Field{Name: "chat_id", Value: chatID}); err != nil {
			return err
		}
		if err := s.chats.Delete(ctx, chatID); err != nil {
			return err
		}

		s.mu.Lock()
		active := s.state.ActiveChatID == chatID
		s.mu.Unlock()
		if active {
			s.CloseChat()
		}
		return nil
	})
}
