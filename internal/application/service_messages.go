package application

import (
	"context"

	"github.com/shivamDefault/ChatLive/internal/domain"
	"github.com/shivamDefault/ChatLive/internal/ports"
)

// OpenChat makes chatID the active chat. Any previous message stream is
// closed before the new one is attached.
func (s *Service) OpenChat(ctx context.Context, chatID string) error {
	if err := domain.RequireFields(domain.Field{Name: "chat_id", Value: chatID}); err != nil {
		return s.fail("open_chat", err)
	}
	var userErr error
	err := s.attach(&s.messageSlot, func() bool {
		if !s.state.SignedIn {
			userErr = domain.ErrNotSignedIn
			return false
		}
		s.state.ActiveChatID = chatID
		s.state.Messages = nil
		s.state.MessagesLoading = true
		return true
	}, func(gen uint64) (ports.Subscription, error) {
		return s.messages.Watch(s.ctx, chatID, s.onMessages(gen))
	})
	if userErr != nil {
		err = userErr
	}
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.state.ActiveChatID == chatID {
			s.state.MessagesLoading = false
		}
		return s.failLocked(ctx, "open_chat", err)
	}
	return nil
}

// CloseChat releases the message stream and clears the message list. It is
// safe to call when no chat is open.
func (s *Service) CloseChat() {
	s.release(&s.messageSlot, func() {
		s.state.ActiveChatID = ""
		s.state.Messages = nil
		s.state.MessagesLoading = false
	})
}

func (s *Service) onMessages(gen uint64) ports.MessagesListener {
	return func(messages []domain.Message, err error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.messageSlot.current(gen) {
			return
		}
		s.state.MessagesLoading = false
		if err != nil {
			_ = s.failLocked(s.ctx, "watch_messages", err)
			return
		}
		msgs := append([]domain.Message(nil), messages...)
		domain.SortMessages(msgs)
		s.state.Messages = msgs
		s.changedLocked()
	}
}

// SendMessage appends a message from the current user. The list updates only
// when the stream delivers it.
func (s *Service) SendMessage(ctx context.Context, chatID, text string) error {
	return s.mutate(ctx, "send_message", func(ctx context.Context) error {
		userID, err := s.currentUser()
		if err != nil {
			return err
		}
		if err := domain.RequireFields(
			domain.Field{Name: "chat_id", Value: chatID},
			domain.Field{Name: "text", Value: text},
		); err != nil {
			return err
		}
		_, err = s.messages.Append(ctx, chatID, domain.Message{
			ChatID:    chatID,
			SenderID:  userID,
			Text:      text,
			Timestamp: s.nowFn(),
		})
		return err
	})
}
