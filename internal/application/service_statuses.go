package application

import (
	"context"

	"github.com/shivamDefault/ChatLive/internal/domain"
	"github.com/shivamDefault/ChatLive/internal/ports"
)

// subscribeStatuses is stage one of the status aggregator: it watches the
// user's chats to derive the contact set and rebinds stage two on every delivery.
func (s *Service) subscribeStatuses(profileGen uint64, userID string) error {
	return s.attach(&s.contactSlot, func() bool {
		if !s.profileSlot.current(profileGen) {
			return false
		}
		s.state.StatusesLoading = true
		return true
	}, func(gen uint64) (ports.Subscription, error) {
		return s.chats.WatchByParticipant(s.ctx, userID, s.onContacts(gen, userID))
	})
}

func (s *Service) onContacts(gen uint64, userID string) ports.ChatsListener {
	return func(chats []domain.Chat, err error) {
		s.mu.Lock()
		if !s.contactSlot.current(gen) {
			s.mu.Unlock()
			return
		}
		if err != nil {
			s.state.StatusesLoading = false
			_ = s.failLocked(s.ctx, "watch_contacts", err)
			s.mu.Unlock()
			return
		}
		contacts := domain.ContactSet(userID, chats)
		s.contacts = contacts
		s.changedLocked()
		s.mu.Unlock()

		if err := s.watchContactStatuses(gen, contacts); err != nil {
			_ = s.fail("subscribe_contact_statuses", err)
		}
	}
}

// watchContactStatuses replaces the stage-two subscription; the old one is
// closed before the new one opens, so at most one is ever live.
func (s *Service) watchContactStatuses(contactGen uint64, contacts []string) error {
	cutoff := domain.StatusCutoff(s.nowFn())
	return s.attach(&s.statusSlot, func() bool {
		return s.contactSlot.current(contactGen)
	}, func(gen uint64) (ports.Subscription, error) {
		return s.statuses.WatchSince(s.ctx, cutoff, contacts, s.onStatuses(gen))
	})
}

func (s *Service) onStatuses(gen uint64) ports.StatusesListener {
	return func(statuses []domain.Status, err error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.statusSlot.current(gen) {
			return
		}
		s.state.StatusesLoading = false
		if err != nil {
			_ = s.failLocked(s.ctx, "watch_statuses", err)
			return
		}
		s.rawStatuses = append([]domain.Status(nil), statuses...)
		s.changedLocked()
	}
}

// UploadStatus stores the image and posts a status pointing at it. A failed
// post leaves the stored image in place.
func (s *Service) UploadStatus(ctx context.Context, contentType string, image []byte) error {
	return s.mutate(ctx, "upload_status", func(ctx context.Context) error {
		me, err := s.currentProfile(ctx)
		if err != nil {
			return err
		}
		if len(image) == 0 {
			return domain.RequireFields(domain.Field{Name: "image", Value: ""})
		}
		url, err := s.blobs.Put(ctx, contentType, image)
		if err != nil {
			return err
		}
		_, err = s.statuses.Create(ctx, domain.Status{
			Poster:    me.Participant(),
			ImageURL:  url,
			Timestamp: s.nowFn(),
		})
		return err
	})
}
