package ports

import (
	"context"
	"time"

	"github.com/shivamDefault/ChatLive/internal/domain"
)

type AuthService interface {
	CreateAccount(ctx context.Context, email, password string) (domain.Identity, error)
	SignIn(ctx context.Context, email, password string) (domain.Identity, error)
	SignOut(ctx context.Context) error
	// CurrentIdentity returns nil when no session is stored.
	CurrentIdentity(ctx context.Context) (*domain.Identity, error)
}

type Credential struct {
	UserID       string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type CredentialRepository interface {
	// Create returns domain.ErrConflict when the email is taken.
	Create(ctx context.Context, credential Credential) error
	GetByEmail(ctx context.Context, email string) (Credential, error)
	GetByUserID(ctx context.Context, userID string) (Credential, error)
}

// CredentialStore persists the session token between runs.
type CredentialStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}
