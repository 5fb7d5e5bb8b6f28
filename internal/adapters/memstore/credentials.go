package memstore

import (
	"context"
	"strings"
	"sync"

	"github.com/shivamDefault/ChatLive/internal/domain"
	"github.com/shivamDefault/ChatLive/internal/ports"
)

type CredentialRepository struct {
	mu      sync.RWMutex
	byEmail map[string]ports.Credential
}

func (r *CredentialRepository) Create(_ context.Context, credential ports.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(credential.Email)
	if _, ok := r.byEmail[key]; ok {
		return domain.ErrConflict
	}
	r.byEmail[key] = credential
	return nil
}

func (r *CredentialRepository) GetByEmail(_ context.Context, email string) (ports.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	credential, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return ports.Credential{}, domain.ErrNotFound
	}
	return credential, nil
}

func (r *CredentialRepository) GetByUserID(_ context.Context, userID string) (ports.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, credential := range r.byEmail {
		if credential.UserID == userID {
			return credential, nil
		}
	}
	return ports.Credential{}, domain.ErrNotFound
}

// TokenStore keeps the session token in memory only.
type TokenStore struct {
	mu    sync.Mutex
	token string
}

func (s *TokenStore) Load(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *TokenStore) Save(_ context.Context, token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *TokenStore) Clear(context.Context) error {
	return s.Save(context.Background(), "")
}
