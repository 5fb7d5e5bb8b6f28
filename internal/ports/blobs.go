package ports

import (
	"context"
	"time"
)

type Blob struct {
	BlobID      string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}

type BlobStore interface {
	// Put stores data and returns a download URL for it.
	Put(ctx context.Context, contentType string, data []byte) (string, error)
}

type BlobReader interface {
	Get(ctx context.Context, blobID string) (Blob, error)
}

type BlobRepository interface {
	BlobStore
	BlobReader
}
