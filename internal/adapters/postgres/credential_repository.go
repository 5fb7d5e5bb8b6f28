package postgres

import (
	"context"
	"errors"

	"github.com/shivamDefault/ChatLive/internal/domain"
	"github.com/shivamDefault/ChatLive/internal/ports"
	"gorm.io/gorm"
)

type credentialRepository struct {
	db *gorm.DB
}

func (r *credentialRepository) Create(ctx context.Context, credential ports.Credential) error {
	rec := credentialModel{
		UserID:       credential.UserID,
		Email:        credential.Email,
		PasswordHash: credential.PasswordHash,
		CreatedAt:    credential.CreatedAt,
	}
	return asConflict(r.db.WithContext(ctx).Create(&rec).Error)
}

func (r *credentialRepository) GetByEmail(ctx context.Context, email string) (ports.Credential, error) {
	return r.take(ctx, "email = ?", email)
}

func (r *credentialRepository) GetByUserID(ctx context.Context, userID string) (ports.Credential, error) {
	return r.take(ctx, "user_id = ?", userID)
}

func (r *credentialRepository) take(ctx context.Context, where string, arg string) (ports.Credential, error) {
	var rec credentialModel
	if err := r.db.WithContext(ctx).Where(where, arg).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Credential{}, domain.ErrNotFound
		}
		return ports.Credential{}, err
	}
	return toCredential(rec), nil
}
