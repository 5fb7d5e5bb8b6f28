package postgres

import (
	"time"

	"github.com/google/uuid"
)

type userModel struct {
	UserID    string    `gorm:"column:user_id;primaryKey"`
	Name      string    `gorm:"column:name"`
	Number    string    `gorm:"column:number"`
	ImageURL  string    `gorm:"column:image_url"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

type chatModel struct {
	ChatID     string    `gorm:"column:chat_id;primaryKey"`
	PairKey    string    `gorm:"column:pair_key"`
	P1UserID   string    `gorm:"column:p1_user_id"`
	P1Name     string    `gorm:"column:p1_name"`
	P1ImageURL string    `gorm:"column:p1_image_url"`
	P1Number   string    `gorm:"column:p1_number"`
	P2UserID   string    `gorm:"column:p2_user_id"`
	P2Name     string    `gorm:"column:p2_name"`
	P2ImageURL string    `gorm:"column:p2_image_url"`
	P2Number   string    `gorm:"column:p2_number"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (chatModel) TableName() string { return "chats" }

type messageModel struct {
	MessageID string    `gorm:"column:message_id;primaryKey"`
	ChatID    string    `gorm:"column:chat_id"`
	SenderID  string    `gorm:"column:sender_id"`
	Text      string    `gorm:"column:text"`
	SentAt    time.Time `gorm:"column:sent_at"`
}

func (messageModel) TableName() string { return "messages" }

type statusModel struct {
	StatusID       string    `gorm:"column:status_id;primaryKey"`
	PosterUserID   string    `gorm:"column:poster_user_id"`
	PosterName     string    `gorm:"column:poster_name"`
	PosterImageURL string    `gorm:"column:poster_image_url"`
	PosterNumber   string    `gorm:"column:poster_number"`
	ImageURL       string    `gorm:"column:image_url"`
	PostedAt       time.Time `gorm:"column:posted_at"`
}

func (statusModel) TableName() string { return "statuses" }

type credentialModel struct {
	UserID       string    `gorm:"column:user_id;primaryKey"`
	Email        string    `gorm:"column:email"`
	PasswordHash string    `gorm:"column:password_hash"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (credentialModel) TableName() string { return "credentials" }

type blobModel struct {
	BlobID      string    `gorm:"column:blob_id;primaryKey"`
	ContentType string    `gorm:"column:content_type"`
	Data        []byte    `gorm:"column:data"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (blobModel) TableName() string { return "blobs" }

type syncOutboxModel struct {
	EventID      uuid.UUID  `gorm:"column:event_id;type:uuid;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      string     `gorm:"column:payload;type:jsonb"`
	Attempts     int        `gorm:"column:attempts"`
	LastError    *string    `gorm:"column:last_error"`
	FailedAt     *time.Time `gorm:"column:failed_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
}

func (syncOutboxModel) TableName() string { return "sync_outbox" }
