package application

import (
	"context"
	"errors"

	"github.com/shivamDefault/ChatLive/internal/domain"
)

// UpdateProfile merges update into the current profile and upserts it.
func (s *Service) UpdateProfile(ctx context.Context, update ProfileUpdate) error {
	return s.mutate(ctx, "update_profile", func(ctx context.Context) error {
		return s.applyProfileUpdate(ctx, update)
	})
}

// UploadProfileImage stores the image and points the profile at it.
func (s *Service) UploadProfileImage(ctx context.Context, contentType string, image []byte) error {
	return s.mutate(ctx, "upload_profile_image", func(ctx context.Context) error {
		if _, err := s.currentUser(); err != nil {
			return err
		}
		if len(image) == 0 {
			return domain.RequireFields(domain.Field{Name: "image", Value: ""})
		}
		url, err := s.blobs.Put(ctx, contentType, image)
		if err != nil {
			return err
		}
		return s.applyProfileUpdate(ctx, ProfileUpdate{ImageURL: &url})
	})
}

func (s *Service) applyProfileUpdate(ctx context.Context, update ProfileUpdate) error {
	current, err := s.currentProfile(ctx)
	if err != nil {
		return err
	}
	next := current
	if update.Name != nil {
		next.Name = *update.Name
	}
	if update.Number != nil {
		if err := domain.ValidateNumber(*update.Number); err != nil {
			return err
		}
		next.Number = *update.Number
	}
	if update.ImageURL != nil {
		next.ImageURL = *update.ImageURL
	}

	if next.Number != current.Number {
		owner, err := s.profiles.FindByNumber(ctx, next.Number)
		switch {
		case err == nil && owner.UserID != current.UserID:
			return domain.ErrDuplicateNumber
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			return err
		}
	}
	if err := s.profiles.Upsert(ctx, next); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.ErrDuplicateNumber
		}
		return err
	}
	return nil
}
