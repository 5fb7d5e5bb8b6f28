package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shivamDefault/ChatLive/internal/domain"
	"github.com/shivamDefault/ChatLive/internal/ports"
	"gorm.io/gorm"
)

type statusStore struct {
	*writer
}

func (r *statusStore) Create(ctx context.Context, status domain.Status) (domain.Status, error) {
	if status.StatusID == "" {
		status.StatusID = uuid.NewString()
	}
	if status.Timestamp.IsZero() {
		status.Timestamp = r.nowFn()
	}
	rec := toStatusModel(status)
	event := syncEvent{
		eventType:    EventStatusPosted,
		partitionKey: status.Poster.UserID,
		data: map[string]string{
			"status_id": status.StatusID,
			"poster_id": status.Poster.UserID,
			"image_url": status.ImageURL,
		},
		topics: []string{statusesTopic(status.Poster.UserID)},
	}
	if err := r.commit(ctx, event, func(tx *gorm.DB) error {
		return tx.Create(&rec).Error
	}); err != nil {
		return domain.Status{}, err
	}
	return status, nil
}

func (r *statusStore) WatchSince(ctx context.Context, cutoff time.Time, posterIDs []string, fn ports.StatusesListener) (ports.Subscription, error) {
	ids := append([]string(nil), posterIDs...)
	topics := make([]string, 0, len(ids))
	for _, id := range ids {
		topics = append(topics, statusesTopic(id))
	}
	load := func(ctx context.Context) ([]domain.Status, error) {
		if len(ids) == 0 {
			return []domain.Status{}, nil
		}
		var rows []statusModel
		if err := r.db.WithContext(ctx).
			Where("posted_at > ? AND poster_user_id IN ?", cutoff, ids).
			Order("posted_at asc, status_id asc").
			Find(&rows).Error; err != nil {
			return nil, err
		}
		out := make([]domain.Status, 0, len(rows))
		for _, row := range rows {
			out = append(out, toDomainStatus(row))
		}
		return out, nil
	}
	return watchQuery[[]domain.Status](ctx, r.feed, topics, load, fn)
}
