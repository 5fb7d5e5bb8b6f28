package domain

import (
	"fmt"
	"sort"
	"strings"
)

func (c Chat) Involves(userID string) bool {
	return userID != "" && (c.Participant1.UserID == userID || c.Participant2.UserID == userID)
}

// PairKey is the order-independent identity of a chat between two numbers.
func (c Chat) PairKey() string {
	return PairKey(c.Participant1.Number, c.Participant2.Number)
}

func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + ":" + b
}

// OtherParticipant returns the counterpart of myID in chat.
func OtherParticipant(chat Chat, myID string) (ChatParticipant, error) {
	switch {
	case myID == "":
		return ChatParticipant{}, fmt.Errorf("%w: empty user id", ErrNotParticipant)
	case chat.Participant1.UserID == myID && chat.Participant2.UserID != myID:
		return chat.Participant2, nil
	case chat.Participant2.UserID == myID && chat.Participant1.UserID != myID:
		return chat.Participant1, nil
	default:
		return ChatParticipant{}, fmt.Errorf("%w: chat %s", ErrNotParticipant, chat.ChatID)
	}
}

// ContactSet returns selfID followed by every distinct counterpart across chats,
// sorted after self so the result is stable between deliveries.
func ContactSet(selfID string, chats []Chat) []string {
	seen := map[string]struct{}{selfID: {}}
	others := make([]string, 0, len(chats))
	for _, chat := range chats {
		other, err := OtherParticipant(chat, selfID)
		if err != nil || strings.TrimSpace(other.UserID) == "" {
			continue
		}
		if _, dup := seen[other.UserID]; dup {
			continue
		}
		seen[other.UserID] = struct{}{}
		others = append(others, other.UserID)
	}
	sort.Strings(others)
	return append([]string{selfID}, others...)
}
