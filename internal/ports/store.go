package ports

import (
	"context"
	"sync"
	"time"

	"github.com/shivamDefault/ChatLive/internal/domain"
)

// Subscription is a live query handle. Close is idempotent and after it
// returns no further callbacks are started for the subscription.
type Subscription interface {
	Close() error
}

type subscriptionFunc struct {
	once sync.Once
	fn   func()
}

// NewSubscription wraps fn so it runs at most once.
func NewSubscription(fn func()) Subscription {
	return &subscriptionFunc{fn: fn}
}

func (s *subscriptionFunc) Close() error {
	s.once.Do(func() {
		if s.fn != nil {
			s.fn()
		}
	})
	return nil
}

// Listener callbacks receive either a full result set or an error.
// A nil profile means the document does not exist yet.
type (
	ProfileListener  func(profile *domain.UserProfile, err error)
	ChatsListener    func(chats []domain.Chat, err error)
	MessagesListener func(messages []domain.Message, err error)
	StatusesListener func(statuses []domain.Status, err error)
)

type ProfileStore interface {
	Get(ctx context.Context, userID string) (domain.UserProfile, error)
	FindByNumber(ctx context.Context, number string) (domain.UserProfile, error)
	// Upsert returns domain.ErrConflict when number belongs to another user.
	Upsert(ctx context.Context, profile domain.UserProfile) error
	Watch(ctx context.Context, userID string, fn ProfileListener) (Subscription, error)
}

type ChatStore interface {
	NewID() string
	// Create returns domain.ErrConflict when the number pair already has a chat.
	Create(ctx context.Context, chat domain.Chat) error
	Delete(ctx context.Context, chatID string) error
	FindByNumberPair(ctx context.Context, a, b string) (domain.Chat, bool, error)
	WatchByParticipant(ctx context.Context, userID string, fn ChatsListener) (Subscription, error)
}

type MessageStore interface {
	// Append stores msg under chatID and returns it with the assigned id.
	Append(ctx context.Context, chatID string, msg domain.Message) (domain.Message, error)
	// Watch delivers the chat's messages ordered by timestamp ascending.
	Watch(ctx context.Context, chatID string, fn MessagesListener) (Subscription, error)
}

type StatusStore interface {
	Create(ctx context.Context, status domain.Status) (domain.Status, error)
	// WatchSince delivers statuses newer than cutoff posted by any of posterIDs.
	WatchSince(ctx context.Context, cutoff time.Time, posterIDs []string, fn StatusesListener) (Subscription, error)
}
