package postgres

import (
	"context"
	"errors"

	"github.com/shivamDefault/ChatLive/internal/domain"
	"github.com/shivamDefault/ChatLive/internal/ports"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type profileStore struct {
	*writer
}

func (r *profileStore) Get(ctx context.Context, userID string) (domain.UserProfile, error) {
	var rec userModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UserProfile{}, domain.ErrNotFound
		}
		return domain.UserProfile{}, err
	}
	return toDomainProfile(rec), nil
}

func (r *profileStore) FindByNumber(ctx context.Context, number string) (domain.UserProfile, error) {
	var rec userModel
	if err := r.db.WithContext(ctx).Where("number = ?", number).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UserProfile{}, domain.ErrNotFound
		}
		return domain.UserProfile{}, err
	}
	return toDomainProfile(rec), nil
}

func (r *profileStore) Upsert(ctx context.Context, profile domain.UserProfile) error {
	now := r.nowFn()
	rec := userModel{
		UserID:    profile.UserID,
		Name:      profile.Name,
		Number:    profile.Number,
		ImageURL:  profile.ImageURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	event := syncEvent{
		eventType:    EventProfileUpserted,
		partitionKey: profile.UserID,
		data: map[string]string{
			"user_id":   profile.UserID,
			"name":      profile.Name,
			"number":    profile.Number,
			"image_url": profile.ImageURL,
		},
		topics: []string{profileTopic(profile.UserID)},
	}
	err := r.commit(ctx, event, func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"name":       rec.Name,
				"number":     rec.Number,
				"image_url":  rec.ImageURL,
				"updated_at": rec.UpdatedAt,
			}),
		}).Create(&rec).Error
	})
	return asConflict(err)
}

func (r *profileStore) Watch(ctx context.Context, userID string, fn ports.ProfileListener) (ports.Subscription, error) {
	load := func(ctx context.Context) (*domain.UserProfile, error) {
		profile, err := r.Get(ctx, userID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &profile, nil
	}
	return watchQuery[*domain.UserProfile](ctx, r.feed, []string{profileTopic(userID)}, load, fn)
}
