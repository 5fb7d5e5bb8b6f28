package memstore

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shivamDefault/ChatLive/internal/domain"
	"github.com/shivamDefault/ChatLive/internal/ports"
)

type BlobStore struct {
	mu      sync.RWMutex
	baseURL string
	blobs   map[string]ports.Blob
}

func NewBlobStore(baseURL string) *BlobStore {
	if baseURL == "" {
		baseURL = "mem://blobs"
	}
	return &BlobStore{baseURL: strings.TrimRight(baseURL, "/"), blobs: make(map[string]ports.Blob)}
}

func (s *BlobStore) Put(ctx context.Context, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	blob := ports.Blob{
		BlobID:      uuid.NewString(),
		ContentType: contentType,
		Data:        append([]byte(nil), data...),
		CreatedAt:   time.Now().UTC(),
	}
	s.mu.Lock()
	s.blobs[blob.BlobID] = blob
	s.mu.Unlock()
	return s.baseURL + "/" + blob.BlobID, nil
}

func (s *BlobStore) Get(_ context.Context, blobID string) (ports.Blob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.blobs[blobID]
	if !ok {
		return ports.Blob{}, domain.ErrNotFound
	}
	return blob, nil
}
