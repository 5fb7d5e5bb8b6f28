package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shivamDefault/ChatLive/internal/domain"
	"github.com/shivamDefault/ChatLive/internal/ports"
)

// Repositories is an in-process backend with synchronous live queries.
// Writes deliver fresh results to every matching listener before returning.
type Repositories struct {
	Profiles    *ProfileStore
	Chats       *ChatStore
	Messages    *MessageStore
	Statuses    *StatusStore
	Blobs       *BlobStore
	Credentials *CredentialRepository
}

func NewRepositories(blobBaseURL string) *Repositories {
	return &Repositories{
		Profiles:    &ProfileStore{profiles: make(map[string]domain.UserProfile)},
		Chats:       &ChatStore{chats: make(map[string]domain.Chat)},
		Messages:    &MessageStore{messages: make(map[string][]domain.Message)},
		Statuses:    &StatusStore{},
		Blobs:       NewBlobStore(blobBaseURL),
		Credentials: &CredentialRepository{byEmail: make(map[string]ports.Credential)},
	}
}

type ProfileStore struct {
	mu       sync.Mutex
	profiles map[string]domain.UserProfile
	live     feed[*domain.UserProfile]
}

func (s *ProfileStore) Get(ctx context.Context, userID string) (domain.UserProfile, error) {
	if err := ctx.Err(); err != nil {
		return domain.UserProfile{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[userID]
	if !ok {
		return domain.UserProfile{}, domain.ErrNotFound
	}
	return profile, nil
}

func (s *ProfileStore) FindByNumber(ctx context.Context, number string) (domain.UserProfile, error) {
	if err := ctx.Err(); err != nil {
		return domain.UserProfile{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, profile := range s.profiles {
		if profile.Number == number {
			return profile, nil
		}
	}
	return domain.UserProfile{}, domain.ErrNotFound
}

func (s *ProfileStore) Upsert(ctx context.Context, profile domain.UserProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	for _, existing := range s.profiles {
		if existing.UserID != profile.UserID && profile.Number != "" && existing.Number == profile.Number {
			s.mu.Unlock()
			return domain.ErrConflict
		}
	}
	s.profiles[profile.UserID] = profile
	batch := s.live.changed()
	s.mu.Unlock()
	flush(batch)
	return nil
}

func (s *ProfileStore) Watch(ctx context.Context, userID string, fn ports.ProfileListener) (ports.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query := func() *domain.UserProfile {
		profile, ok := s.profiles[userID]
		if !ok {
			return nil
		}
		return &profile
	}
	return watch[*domain.UserProfile](&s.mu, &s.live, query, fn), nil
}

// Listeners reports how many profile watches are attached.
func (s *ProfileStore) Listeners() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live.listeners)
}

type ChatStore struct {
	mu    sync.Mutex
	chats map[string]domain.Chat
	live  feed[[]domain.Chat]
}

func (s *ChatStore) NewID() string {
	return uuid.NewString()
}

func (s *ChatStore) Create(ctx context.Context, chat domain.Chat) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	key := chat.PairKey()
	for _, existing := range s.chats {
		if existing.ChatID == chat.ChatID || existing.PairKey() == key {
			s.mu.Unlock()
			return domain.ErrConflict
		}
	}
	s.chats[chat.ChatID] = chat
	batch := s.live.changed()
	s.mu.Unlock()
	flush(batch)
	return nil
}

func (s *ChatStore) Delete(ctx context.Context, chatID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	if _, ok := s.chats[chatID]; !ok {
		s.mu.Unlock()
		return domain.ErrNotFound
	}
	delete(s.chats, chatID)
	batch := s.live.changed()
	s.mu.Unlock()
	flush(batch)
	return nil
}

func (s *ChatStore) FindByNumberPair(ctx context.Context, a, b string) (domain.Chat, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Chat{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, chat := range s.chats {
		n1, n2 := chat.Participant1.Number, chat.Participant2.Number
		if (n1 == a && n2 == b) || (n1 == b && n2 == a) {
			return chat, true, nil
		}
	}
	return domain.Chat{}, false, nil
}

func (s *ChatStore) WatchByParticipant(ctx context.Context, userID string, fn ports.ChatsListener) (ports.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query := func() []domain.Chat {
		out := make([]domain.Chat, 0)
		for _, chat := range s.chats {
			if chat.Involves(userID) {
				out = append(out, chat)
			}
		}
		sort.Slice(out, func(i, j int) bool {
			if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
				return out[i].CreatedAt.Before(out[j].CreatedAt)
			}
			return out[i].ChatID < out[j].ChatID
		})
		return out
	}
	return watch[[]domain.Chat](&s.mu, &s.live, query, fn), nil
}

// Listeners reports how many chat queries are attached.
func (s *ChatStore) Listeners() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live.listeners)
}

// Size reports how many chats are stored.
func (s *ChatStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chats)
}

type MessageStore struct {
	mu       sync.Mutex
	messages map[string][]domain.Message
	live     feed[[]domain.Message]
}

func (s *MessageStore) Append(ctx context.Context, chatID string, msg domain.Message) (domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return domain.Message{}, err
	}
	msg.ChatID = chatID
	if msg.MessageID == "" {
		msg.MessageID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	s.mu.Lock()
	s.messages[chatID] = append(s.messages[chatID], msg)
	batch := s.live.changed()
	s.mu.Unlock()
	flush(batch)
	return msg, nil
}

func (s *MessageStore) Watch(ctx context.Context, chatID string, fn ports.MessagesListener) (ports.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query := func() []domain.Message {
		out := append([]domain.Message{}, s.messages[chatID]...)
		domain.SortMessages(out)
		return out
	}
	return watch[[]domain.Message](&s.mu, &s.live, query, fn), nil
}

// Listeners reports how many message streams are attached.
func (s *MessageStore) Listeners() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live.listeners)
}

type StatusStore struct {
	mu       sync.Mutex
	statuses []domain.Status
	live     feed[[]domain.Status]
}

func (s *StatusStore) Create(ctx context.Context, status domain.Status) (domain.Status, error) {
	if err := ctx.Err(); err != nil {
		return domain.Status{}, err
	}
	if status.StatusID == "" {
		status.StatusID = uuid.NewString()
	}
	s.mu.Lock()
	s.statuses = append(s.statuses, status)
	batch := s.live.changed()
	s.mu.Unlock()
	flush(batch)
	return status, nil
}

func (s *StatusStore) WatchSince(ctx context.Context, cutoff time.Time, posterIDs []string, fn ports.StatusesListener) (ports.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	posters := make(map[string]struct{}, len(posterIDs))
	for _, id := range posterIDs {
		posters[id] = struct{}{}
	}
	query := func() []domain.Status {
		out := make([]domain.Status, 0)
		for _, st := range s.statuses {
			if _, ok := posters[st.Poster.UserID]; ok && st.Timestamp.After(cutoff) {
				out = append(out, st)
			}
		}
		return out
	}
	return watch[[]domain.Status](&s.mu, &s.live, query, fn), nil
}

// Listeners reports how many status queries are attached.
func (s *StatusStore) Listeners() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live.listeners)
}

func watch[T any](mu *sync.Mutex, live *feed[T], query func() T, fn func(T, error)) ports.Subscription {
	mu.Lock()
	id, first := live.add(query, fn)
	mu.Unlock()
	first.l.deliver(first.seq, first.value)

	return ports.NewSubscription(func() {
		mu.Lock()
		l := live.remove(id)
		mu.Unlock()
		if l != nil {
			l.close()
		}
	})
}
