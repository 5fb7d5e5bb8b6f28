package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shivamDefault/ChatLive/internal/ports"
	"gorm.io/gorm"
)

type outboxRepository struct {
	db *gorm.DB
}

func (r *outboxRepository) Pending(ctx context.Context, limit, maxAttempts int) ([]ports.SyncEvent, error) {
	q := r.db.WithContext(ctx).Where("published_at IS NULL")
	if maxAttempts > 0 {
		q = q.Where("attempts < ?", maxAttempts)
	}
	var rows []syncOutboxModel
	if err := q.Order("created_at, event_id").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	events := make([]ports.SyncEvent, len(rows))
	for i, row := range rows {
		events[i] = toSyncEvent(row)
	}
	return events, nil
}

func (r *outboxRepository) MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&syncOutboxModel{EventID: id}).
		Update("published_at", at).Error
}

// RecordFailure counts one failed attempt and keeps the latest reason.
func (r *outboxRepository) RecordFailure(ctx context.Context, id uuid.UUID, reason string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&syncOutboxModel{EventID: id}).
		Updates(map[string]any{
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": reason,
			"failed_at":  at,
		}).Error
}
