package domain

import "time"

type UserProfile struct {
	UserID   string
	Name     string
	Number   string
	ImageURL string
}

// ChatParticipant is a copy of a profile taken when a chat or status is created.
// It is never refreshed, so it may drift from the live profile.
type ChatParticipant struct {
	UserID   string
	Name     string
	ImageURL string
	Number   string
}

type Chat struct {
	ChatID       string
	Participant1 ChatParticipant
	Participant2 ChatParticipant
	CreatedAt    time.Time
}

type Message struct {
	MessageID string
	ChatID    string
	SenderID  string
	Text      string
	Timestamp time.Time
}

type Status struct {
	StatusID  string
	Poster    ChatParticipant
	ImageURL  string
	Timestamp time.Time
}

type Identity struct {
	UserID string
	Email  string
	Token  string
}

func (p UserProfile) Participant() ChatParticipant {
	return ChatParticipant{
		UserID:   p.UserID,
		Name:     p.Name,
		ImageURL: p.ImageURL,
		Number:   p.Number,
	}
}
