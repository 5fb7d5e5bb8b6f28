package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shivamDefault/ChatLive/internal/domain"
	"github.com/shivamDefault/ChatLive/internal/ports"
	"gorm.io/gorm"
)

// blobStore keeps uploaded images in the blobs table. URLs point at the
// HTTP adapter's blob download route.
type blobStore struct {
	db      *gorm.DB
	baseURL string
	nowFn   func() time.Time
}

func (r *blobStore) Put(ctx context.Context, contentType string, data []byte) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	rec := blobModel{
		BlobID:      uuid.NewString(),
		ContentType: contentType,
		Data:        data,
		CreatedAt:   r.nowFn(),
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return "", err
	}
	return strings.TrimRight(r.baseURL, "/") + "/" + rec.BlobID, nil
}

func (r *blobStore) Get(ctx context.Context, blobID string) (ports.Blob, error) {
	var rec blobModel
	if err := r.db.WithContext(ctx).Where("blob_id = ?", blobID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Blob{}, domain.ErrNotFound
		}
		return ports.Blob{}, err
	}
	return ports.Blob{
		BlobID:      rec.BlobID,
		ContentType: rec.ContentType,
		Data:        rec.Data,
		CreatedAt:   rec.CreatedAt.UTC(),
	}, nil
}
