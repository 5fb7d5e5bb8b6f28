package http

import (
	"time"

	"github.com/shivamDefault/ChatLive/internal/application"
	"github.com/shivamDefault/ChatLive/internal/domain"
)

type participantView struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Number   string `json:"number"`
	ImageURL string `json:"image_url,omitempty"`
}

type chatView struct {
	ChatID    string          `json:"chat_id"`
	Partner   participantView `json:"partner"`
	CreatedAt time.Time       `json:"created_at"`
}

type messageView struct {
	MessageID string    `json:"message_id"`
	SenderID  string    `json:"sender_id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Mine      bool      `json:"mine"`
}

type statusView struct {
	StatusID  string          `json:"status_id"`
	Poster    participantView `json:"poster"`
	ImageURL  string          `json:"image_url"`
	Timestamp time.Time       `json:"timestamp"`
}

type stateView struct {
	SignedIn        bool             `json:"signed_in"`
	UserID          string           `json:"user_id,omitempty"`
	Profile         *participantView `json:"profile,omitempty"`
	InProcess       bool             `json:"in_process"`
	ChatsLoading    bool             `json:"chats_loading"`
	Chats           []chatView       `json:"chats"`
	ActiveChatID    string           `json:"active_chat_id,omitempty"`
	MessagesLoading bool             `json:"messages_loading"`
	Messages        []messageView    `json:"messages"`
	StatusesLoading bool             `json:"statuses_loading"`
	OwnStatuses     []statusView     `json:"own_statuses"`
	OtherStatuses   []statusView     `json:"other_statuses"`
	Notification    string           `json:"notification,omitempty"`
}

func toParticipantView(p domain.ChatParticipant) participantView {
	return participantView{UserID: p.UserID, Name: p.Name, Number: p.Number, ImageURL: p.ImageURL}
}

func toStatusViews(statuses []domain.Status) []statusView {
	out := make([]statusView, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, statusView{
			StatusID:  st.StatusID,
			Poster:    toParticipantView(st.Poster),
			ImageURL:  st.ImageURL,
			Timestamp: st.Timestamp,
		})
	}
	return out
}

func toStateView(s application.State) stateView {
	view := stateView{
		SignedIn:        s.SignedIn,
		UserID:          s.UserID,
		InProcess:       s.InProcess,
		ChatsLoading:    s.ChatsLoading,
		Chats:           make([]chatView, 0, len(s.Chats)),
		ActiveChatID:    s.ActiveChatID,
		MessagesLoading: s.MessagesLoading,
		Messages:        make([]messageView, 0, len(s.Messages)),
		StatusesLoading: s.StatusesLoading,
		OwnStatuses:     toStatusViews(s.OwnStatuses),
		OtherStatuses:   toStatusViews(s.OtherStatuses),
		Notification:    s.Notification,
	}
	if s.Profile != nil {
		p := toParticipantView(s.Profile.Participant())
		view.Profile = &p
	}
	for _, c := range s.Chats {
		view.Chats = append(view.Chats, chatView{
			ChatID:    c.Chat.ChatID,
			Partner:   toParticipantView(c.Partner),
			CreatedAt: c.Chat.CreatedAt,
		})
	}
	for _, m := range s.Messages {
		view.Messages = append(view.Messages, messageView{
			MessageID: m.MessageID,
			SenderID:  m.SenderID,
			Text:      m.Text,
			Timestamp: m.Timestamp,
			Mine:      m.SenderID == s.UserID,
		})
	}
	return view
}
