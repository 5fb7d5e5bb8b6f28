package postgres

import (
	"time"

	"github.com/shivamDefault/ChatLive/internal/ports"
	"gorm.io/gorm"
)

type Options struct {
	ServiceName string
	BlobBaseURL string
}

type Repositories struct {
	Profiles    ports.ProfileStore
	Chats       ports.ChatStore
	Messages    ports.MessageStore
	Statuses    ports.StatusStore
	Blobs       ports.BlobRepository
	Credentials ports.CredentialRepository
	Outbox      ports.OutboxRepository
}

// NewRepositories wires every collection to db. feed may be nil, in which
// case live queries only deliver their initial result.
func NewRepositories(db *gorm.DB, feed ports.ChangeFeed, opts Options) Repositories {
	nowFn := func() time.Time { return time.Now().UTC() }
	w := &writer{db: db, feed: feed, serviceName: opts.ServiceName, nowFn: nowFn}
	return Repositories{
		Profiles:    &profileStore{writer: w},
		Chats:       &chatStore{writer: w},
		Messages:    &messageStore{writer: w},
		Statuses:    &statusStore{writer: w},
		Blobs:       &blobStore{db: db, baseURL: opts.BlobBaseURL, nowFn: nowFn},
		Credentials: &credentialRepository{db: db},
		Outbox:      &outboxRepository{db: db},
	}
}
