package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shivamDefault/ChatLive/internal/adapters/memstore"
	"github.com/shivamDefault/ChatLive/internal/domain"
	"github.com/shivamDefault/ChatLive/internal/ports"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fakeAccount struct {
	identity domain.Identity
	password string
}

type fakeAuth struct {
	mu       sync.Mutex
	accounts map[string]fakeAccount
	current  *domain.Identity
	calls    int
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{accounts: make(map[string]fakeAccount)}
}

func (a *fakeAuth) CreateAccount(_ context.Context, email, password string) (domain.Identity, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	if _, ok := a.accounts[email]; ok {
		return domain.Identity{}, errors.New("email already in use")
	}
	identity := domain.Identity{UserID: "u-" + email, Email: email, Token: "token-" + email}
	a.accounts[email] = fakeAccount{identity: identity, password: password}
	a.current = &identity
	return identity, nil
}

func (a *fakeAuth) SignIn(_ context.Context, email, password string) (domain.Identity, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	account, ok := a.accounts[email]
	if !ok || account.password != password {
		return domain.Identity{}, domain.ErrInvalidCredentials
	}
	identity := account.identity
	a.current = &identity
	return identity, nil
}

func (a *fakeAuth) SignOut(context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	a.current = nil
	return nil
}

func (a *fakeAuth) CurrentIdentity(context.Context) (*domain.Identity, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	if a.current == nil {
		return nil, nil
	}
	identity := *a.current
	return &identity, nil
}

func (a *fakeAuth) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

type countingProfiles struct {
	ports.ProfileStore
	mu    sync.Mutex
	calls int
}

func (p *countingProfiles) hit() {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
}

func (p *countingProfiles) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func (p *countingProfiles) Get(ctx context.Context, userID string) (domain.UserProfile, error) {
	p.hit()
	return p.ProfileStore.Get(ctx, userID)
}

func (p *countingProfiles) FindByNumber(ctx context.Context, number string) (domain.UserProfile, error) {
	p.hit()
	return p.ProfileStore.FindByNumber(ctx, number)
}

func (p *countingProfiles) Upsert(ctx context.Context, profile domain.UserProfile) error {
	p.hit()
	return p.ProfileStore.Upsert(ctx, profile)
}

func (p *countingProfiles) Watch(ctx context.Context, userID string, fn ports.ProfileListener) (ports.Subscription, error) {
	p.hit()
	return p.ProfileStore.Watch(ctx, userID, fn)
}

// capturingMessages records every listener handed to Watch so tests can
// replay late callbacks.
type capturingMessages struct {
	ports.MessageStore
	mu        sync.Mutex
	listeners map[string][]ports.MessagesListener
}

func (m *capturingMessages) Watch(ctx context.Context, chatID string, fn ports.MessagesListener) (ports.Subscription, error) {
	m.mu.Lock()
	m.listeners[chatID] = append(m.listeners[chatID], fn)
	m.mu.Unlock()
	return m.MessageStore.Watch(ctx, chatID, fn)
}

func (m *capturingMessages) listenerFor(chatID string) ports.MessagesListener {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.listeners[chatID]
	if len(list) == 0 {
		return nil
	}
	return list[len(list)-1]
}

// trackingStatuses counts live stage-two subscriptions.
type trackingStatuses struct {
	ports.StatusStore
	mu        sync.Mutex
	active    int
	maxActive int
	opened    int
}

func (s *trackingStatuses) WatchSince(ctx context.Context, cutoff time.Time, posterIDs []string, fn ports.StatusesListener) (ports.Subscription, error) {
	sub, err := s.StatusStore.WatchSince(ctx, cutoff, posterIDs, fn)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.opened++
	s.active++
	if s.active > s.maxActive {
		s.maxActive = s.active
	}
	s.mu.Unlock()
	return ports.NewSubscription(func() {
		_ = sub.Close()
		s.mu.Lock()
		s.active--
		s.mu.Unlock()
	}), nil
}

func (s *trackingStatuses) counts() (active, maxActive, opened int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active, s.maxActive, s.opened
}

type fixture struct {
	svc      *Service
	repos    *memstore.Repositories
	auth     *fakeAuth
	clock    *testClock
	profiles *countingProfiles
	messages *capturingMessages
	statuses *trackingStatuses
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repos := memstore.NewRepositories("")
	f := &fixture{
		repos:    repos,
		auth:     newFakeAuth(),
		clock:    &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		profiles: &countingProfiles{ProfileStore: repos.Profiles},
		messages: &capturingMessages{MessageStore: repos.Messages, listeners: make(map[string][]ports.MessagesListener)},
		statuses: &trackingStatuses{StatusStore: repos.Statuses},
	}
	f.svc = NewService(Dependencies{
		Config:   Config{WriteTimeout: time.Second},
		Auth:     f.auth,
		Profiles: f.profiles,
		Chats:    repos.Chats,
		Messages: f.messages,
		Statuses: f.statuses,
		Blobs:    repos.Blobs,
		Clock:    f.clock.Now,
	})
	t.Cleanup(func() { _ = f.svc.Close() })
	return f
}

// seedProfile stores a profile for a user who signed up elsewhere.
func (f *fixture) seedProfile(t *testing.T, userID, name, number string) domain.UserProfile {
	t.Helper()
	profile := domain.UserProfile{UserID: userID, Name: name, Number: number}
	if err := f.repos.Profiles.Upsert(context.Background(), profile); err != nil {
		t.Fatalf("seed profile %s: %v", userID, err)
	}
	return profile
}

func (f *fixture) signUp(t *testing.T, name, number string) {
	t.Helper()
	if err := f.svc.SignUp(context.Background(), name, number, name+"@example.com", "secret"); err != nil {
		t.Fatalf("sign up %s: %v", name, err)
	}
}
