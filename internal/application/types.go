package application

import (
	"time"

	"github.com/shivamDefault/ChatLive/internal/domain"
)

type Config struct {
	ServiceName  string
	WriteTimeout time.Duration
}

// ChatView is a chat as the current user sees it.
type ChatView struct {
	Chat    domain.Chat
	Partner domain.ChatParticipant
}

// State is the observable view model. Snapshot hands out deep copies.
type State struct {
	SignedIn bool
	UserID   string
	Profile  *domain.UserProfile

	InProcess bool

	ChatsLoading bool
	Chats        []ChatView

	ActiveChatID    string
	MessagesLoading bool
	Messages        []domain.Message

	StatusesLoading bool
	OwnStatuses     []domain.Status
	OtherStatuses   []domain.Status

	// Notification is a one-shot message; see ConsumeNotification.
	Notification string
}

// ProfileUpdate carries the fields to change. Nil fields keep their current value.
type ProfileUpdate struct {
	Name     *string
	Number   *string
	ImageURL *string
}

func (s State) clone() State {
	out := s
	if s.Profile != nil {
		p := *s.Profile
		out.Profile = &p
	}
	out.Chats = append([]ChatView(nil), s.Chats...)
	out.Messages = append([]domain.Message(nil), s.Messages...)
	out.OwnStatuses = append([]domain.Status(nil), s.OwnStatuses...)
	out.OtherStatuses = append([]domain.Status(nil), s.OtherStatuses...)
	return out
}
