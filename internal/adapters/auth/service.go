package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shivamDefault/ChatLive/internal/domain"
	"github.com/shivamDefault/ChatLive/internal/ports"
)

// LocalAuthService is an email/password identity provider backed by the
// credentials repository. The issued token is persisted so a later run can
// restore the session.
type LocalAuthService struct {
	credentials ports.CredentialRepository
	hasher      ports.PasswordHasher
	signer      ports.TokenSigner
	tokens      ports.CredentialStore
	tokenTTL    time.Duration
	nowFn       func() time.Time
}

type Dependencies struct {
	Credentials ports.CredentialRepository
	Hasher      ports.PasswordHasher
	Signer      ports.TokenSigner
	Tokens      ports.CredentialStore
	TokenTTL    time.Duration
}

func NewLocalAuthService(deps Dependencies) *LocalAuthService {
	ttl := deps.TokenTTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &LocalAuthService{
		credentials: deps.Credentials,
		hasher:      deps.Hasher,
		signer:      deps.Signer,
		tokens:      deps.Tokens,
		tokenTTL:    ttl,
		nowFn:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *LocalAuthService) CreateAccount(ctx context.Context, email, password string) (domain.Identity, error) {
	email = normalizeEmail(email)
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return domain.Identity{}, err
	}
	credential := ports.Credential{
		UserID:       uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.nowFn(),
	}
	if err := s.credentials.Create(ctx, credential); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.Identity{}, errors.New("the email address is already in use by another account")
		}
		return domain.Identity{}, err
	}
	return s.issue(ctx, credential)
}

func (s *LocalAuthService) SignIn(ctx context.Context, email, password string) (domain.Identity, error) {
	credential, err := s.credentials.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Identity{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return domain.Identity{}, err
	}
	if err := s.hasher.Compare(credential.PasswordHash, password); err != nil {
		return domain.Identity{}, err
	}
	return s.issue(ctx, credential)
}

func (s *LocalAuthService) SignOut(ctx context.Context) error {
	return s.tokens.Clear(ctx)
}

// CurrentIdentity restores the identity from the stored token. Expired or
// unknown tokens are cleared and reported as no session.
func (s *LocalAuthService) CurrentIdentity(ctx context.Context) (*domain.Identity, error) {
	token, err := s.tokens.Load(ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, nil
	}
	claims, err := s.signer.ParseAndValidate(token)
	if err != nil {
		slog.Default().InfoContext(ctx, "stored session discarded",
			"module", "auth.local",
			"layer", "adapter",
			"operation", "current_identity",
			"outcome", "expired",
			"error", err,
		)
		return nil, s.tokens.Clear(ctx)
	}
	credential, err := s.credentials.GetByUserID(ctx, claims.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, s.tokens.Clear(ctx)
	}
	if err != nil {
		return nil, err
	}
	return &domain.Identity{UserID: credential.UserID, Email: credential.Email, Token: token}, nil
}

func (s *LocalAuthService) issue(ctx context.Context, credential ports.Credential) (domain.Identity, error) {
	now := s.nowFn()
	token, err := s.signer.Sign(ports.TokenClaims{
		UserID:    credential.UserID,
		Email:     credential.Email,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.tokenTTL),
	})
	if err != nil {
		return domain.Identity{}, fmt.Errorf("sign token: %w", err)
	}
	if err := s.tokens.Save(ctx, token); err != nil {
		return domain.Identity{}, fmt.Errorf("persist token: %w", err)
	}
	return domain.Identity{UserID: credential.UserID, Email: credential.Email, Token: token}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
