package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shivamDefault/ChatLive/internal/adapters/memstore"
	"github.com/shivamDefault/ChatLive/internal/adapters/security"
	"github.com/shivamDefault/ChatLive/internal/domain"
)

func newTestService(t *testing.T, tokens *FileTokenStore, ttl time.Duration) *LocalAuthService {
	t.Helper()
	signer, err := security.NewJWTSigner("chatlive-test", "secret")
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	return NewLocalAuthService(Dependencies{
		Credentials: memstore.NewRepositories("").Credentials,
		Hasher:      security.NewBcryptHasher(4),
		Signer:      signer,
		Tokens:      tokens,
		TokenTTL:    ttl,
	})
}

func TestAccountLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tokens := NewFileTokenStore(filepath.Join(t.TempDir(), "session", "credentials.yaml"))
	svc := newTestService(t, tokens, time.Hour)

	created, err := svc.CreateAccount(ctx, " Ann@Example.com ", "secret")
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	if _, err := svc.CreateAccount(ctx, "ann@example.com", "other"); err == nil || domain.IsKnown(err) {
		t.Fatalf("expected a plain backend error for a taken email, got %v", err)
	}

	current, err := svc.CurrentIdentity(ctx)
	if err != nil || current == nil || current.UserID != created.UserID {
		t.Fatalf("expected stored session for %s, got %+v err=%v", created.UserID, current, err)
	}

	if err := svc.SignOut(ctx); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if current, err := svc.CurrentIdentity(ctx); err != nil || current != nil {
		t.Fatalf("expected no session after sign out, got %+v err=%v", current, err)
	}

	if _, err := svc.SignIn(ctx, "ann@example.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.SignIn(ctx, "nobody@example.com", "secret"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
	signedIn, err := svc.SignIn(ctx, "ANN@example.com", "secret")
	if err != nil || signedIn.UserID != created.UserID {
		t.Fatalf("expected sign in as %s, got %+v err=%v", created.UserID, signedIn, err)
	}
}

func TestExpiredSessionIsDiscarded(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tokens := NewFileTokenStore(filepath.Join(t.TempDir(), "credentials.yaml"))
	svc := newTestService(t, tokens, time.Hour)
	svc.nowFn = func() time.Time { return time.Now().UTC().Add(-3 * time.Hour) }

	if _, err := svc.CreateAccount(ctx, "ann@example.com", "secret"); err != nil {
		t.Fatalf("create account: %v", err)
	}
	current, err := svc.CurrentIdentity(ctx)
	if err != nil || current != nil {
		t.Fatalf("expected expired session to be dropped, got %+v err=%v", current, err)
	}
	if token, _ := tokens.Load(ctx); token != "" {
		t.Fatalf("expected token file to be cleared")
	}
}
