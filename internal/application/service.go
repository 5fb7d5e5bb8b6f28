package application

import (
	"context"
	"sync"
	"time"

	"github.com/shivamDefault/ChatLive/internal/domain"
	"github.com/shivamDefault/ChatLive/internal/ports"
)

// Service owns the session, its live subscriptions and the derived view state.
// Backend callbacks may arrive on any goroutine; state is guarded by mu, which
// is never held across a backend call.
type Service struct {
	cfg      Config
	auth     ports.AuthService
	profiles ports.ProfileStore
	chats    ports.ChatStore
	messages ports.MessageStore
	statuses ports.StatusStore
	blobs    ports.BlobStore
	nowFn    func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	state       State
	inflight    int
	sessionLive bool
	rawStatuses []domain.Status
	contacts    []string
	watchers    map[uint64]chan struct{}
	nextWatcher uint64

	profileSlot liveSlot
	chatSlot    liveSlot
	messageSlot liveSlot
	contactSlot liveSlot
	statusSlot  liveSlot
}

type Dependencies struct {
	Config   Config
	Auth     ports.AuthService
	Profiles ports.ProfileStore
	Chats    ports.ChatStore
	Messages ports.MessageStore
	Statuses ports.StatusStore
	Blobs    ports.BlobStore
	Clock    func() time.Time
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.ServiceName == "" {
		cfg.ServiceName = "chatlive"
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	nowFn := deps.Clock
	if nowFn == nil {
		nowFn = func() time.Time { return time.Now().UTC() }
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Service{
		cfg:      cfg,
		auth:     deps.Auth,
		profiles: deps.Profiles,
		chats:    deps.Chats,
		messages: deps.Messages,
		statuses: deps.Statuses,
		blobs:    deps.Blobs,
		nowFn:    nowFn,
		ctx:      ctx,
		cancel:   cancel,
		watchers: make(map[uint64]chan struct{}),
	}
}

// Close releases every live subscription. The service is unusable afterwards.
func (s *Service) Close() error {
	s.releaseAll()
	s.cancel()
	return nil
}

func (s *Service) releaseAll() {
	for _, slot := range []*liveSlot{&s.profileSlot, &s.contactSlot, &s.statusSlot, &s.chatSlot, &s.messageSlot} {
		s.release(slot, nil)
	}
}
