package postgres

import (
	"github.com/shivamDefault/ChatLive/internal/domain"
	"github.com/shivamDefault/ChatLive/internal/ports"
)

func toDomainProfile(rec userModel) domain.UserProfile {
	return domain.UserProfile{
		UserID:   rec.UserID,
		Name:     rec.Name,
		Number:   rec.Number,
		ImageURL: rec.ImageURL,
	}
}

func toChatModel(chat domain.Chat) chatModel {
	return chatModel{
		ChatID:     chat.ChatID,
		PairKey:    chat.PairKey(),
		P1UserID:   chat.Participant1.UserID,
		P1Name:     chat.Participant1.Name,
		P1ImageURL: chat.Participant1.ImageURL,
		P1Number:   chat.Participant1.Number,
		P2UserID:   chat.Participant2.UserID,
		P2Name:     chat.Participant2.Name,
		P2ImageURL: chat.Participant2.ImageURL,
		P2Number:   chat.Participant2.Number,
		CreatedAt:  chat.CreatedAt,
	}
}

func toDomainChat(rec chatModel) domain.Chat {
	return domain.Chat{
		ChatID: rec.ChatID,
		Participant1: domain.ChatParticipant{
			UserID:   rec.P1UserID,
			Name:     rec.P1Name,
			ImageURL: rec.P1ImageURL,
			Number:   rec.P1Number,
		},
		Participant2: domain.ChatParticipant{
			UserID:   rec.P2UserID,
			Name:     rec.P2Name,
			ImageURL: rec.P2ImageURL,
			Number:   rec.P2Number,
		},
		CreatedAt: rec.CreatedAt.UTC(),
	}
}

func toDomainMessage(rec messageModel) domain.Message {
	return domain.Message{
		MessageID: rec.MessageID,
		ChatID:    rec.ChatID,
		SenderID:  rec.SenderID,
		Text:      rec.Text,
		Timestamp: rec.SentAt.UTC(),
	}
}

func toStatusModel(st domain.Status) statusModel {
	return statusModel{
		StatusID:       st.StatusID,
		PosterUserID:   st.Poster.UserID,
		PosterName:     st.Poster.Name,
		PosterImageURL: st.Poster.ImageURL,
		PosterNumber:   st.Poster.Number,
		ImageURL:       st.ImageURL,
		PostedAt:       st.Timestamp,
	}
}

func toDomainStatus(rec statusModel) domain.Status {
	return domain.Status{
		StatusID: rec.StatusID,
		Poster: domain.ChatParticipant{
			UserID:   rec.PosterUserID,
			Name:     rec.PosterName,
			ImageURL: rec.PosterImageURL,
			Number:   rec.PosterNumber,
		},
		ImageURL:  rec.ImageURL,
		Timestamp: rec.PostedAt.UTC(),
	}
}

func toCredential(rec credentialModel) ports.Credential {
	return ports.Credential{
		UserID:       rec.UserID,
		Email:        rec.Email,
		PasswordHash: rec.PasswordHash,
		CreatedAt:    rec.CreatedAt.UTC(),
	}
}

func toSyncEvent(row syncOutboxModel) ports.SyncEvent {
	return ports.SyncEvent{
		ID:        row.EventID,
		Type:      row.EventType,
		Key:       row.PartitionKey,
		Payload:   []byte(row.Payload),
		Attempts:  row.Attempts,
		CreatedAt: row.CreatedAt.UTC(),
	}
}
