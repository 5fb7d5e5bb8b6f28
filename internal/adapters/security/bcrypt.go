package security

import (
	"errors"
	"fmt"

	"github.com/shivamDefault/ChatLive/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher hashes account passwords. Compare reports a wrong password as
// domain.ErrInvalidCredentials; any other failure means the stored hash is unusable.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	switch {
	case errors.Is(err, bcrypt.ErrPasswordTooLong):
		return "", fmt.Errorf("%w: password must be at most 72 bytes", domain.ErrValidation)
	case err != nil:
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(hashed), nil
}

func (h *BcryptHasher) Compare(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return domain.ErrInvalidCredentials
	default:
		return fmt.Errorf("bcrypt compare: %w", err)
	}
}
