package security

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shivamDefault/ChatLive/internal/domain"
	"github.com/shivamDefault/ChatLive/internal/ports"
)

func TestBcryptHasher(t *testing.T) {
	t.Parallel()

	h := NewBcryptHasher(4)
	hash, err := h.Hash("secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := h.Compare(hash, "secret"); err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if err := h.Compare(hash, "other"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if err := h.Compare("not-a-hash", "secret"); err == nil || errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected malformed hash error, got %v", err)
	}
	if _, err := h.Hash(strings.Repeat("x", 73)); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for long password, got %v", err)
	}
}

func TestJWTSignerRoundTripAndExpiry(t *testing.T) {
	t.Parallel()

	signer, err := NewJWTSigner("chatlive", "test-secret")
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	now := time.Now().UTC()
	token, err := signer.Sign(ports.TokenClaims{UserID: "u1", Email: "a@example.com", IssuedAt: now, ExpiresAt: now.Add(time.Hour)})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := signer.ParseAndValidate(token)
	if err != nil || claims.UserID != "u1" || claims.Email != "a@example.com" {
		t.Fatalf("unexpected claims %+v err=%v", claims, err)
	}

	expired, _ := signer.Sign(ports.TokenClaims{UserID: "u1", IssuedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)})
	if _, err := signer.ParseAndValidate(expired); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}

	other, _ := NewJWTSigner("chatlive", "another-secret")
	if _, err := other.ParseAndValidate(token); err == nil {
		t.Fatalf("expected token signed with another secret to be rejected")
	}
	if _, err := NewJWTSigner("chatlive", ""); err == nil {
		t.Fatalf("expected empty secret to be rejected")
	}
}
