package application

import (
	"context"
	"errors"

	"github.com/shivamDefault/ChatLive/internal/domain"
	"github.com/shivamDefault/ChatLive/internal/ports"
)

// Initialize restores the stored session, if any, and starts the profile subscription.
func (s *Service) Initialize(ctx context.Context) error {
	return s.mutate(ctx, "initialize", func(ctx context.Context) error {
		identity, err := s.auth.CurrentIdentity(ctx)
		if err != nil {
			return err
		}
		if identity == nil {
			return nil
		}
		return s.startSession(*identity)
	})
}

func (s *Service) Login(ctx context.Context, email, password string) error {
	return s.mutate(ctx, "login", func(ctx context.Context) error {
		if err := domain.RequireFields(
			domain.Field{Name: "email", Value: email},
			domain.Field{Name: "password", Value: password},
		); err != nil {
			return err
		}
		identity, err := s.auth.SignIn(ctx, email, password)
		if err != nil {
			return err
		}
		return s.startSession(identity)
	})
}

// SignUp creates the auth identity and the profile document. The number is
// checked for uniqueness before the identity is created.
func (s *Service) SignUp(ctx context.Context, name, number, email, password string) error {
	return s.mutate(ctx, "sign_up", func(ctx context.Context) error {
		if err := domain.RequireFields(
			domain.Field{Name: "name", Value: name},
			domain.Field{Name: "number", Value: number},
			domain.Field{Name: "email", Value: email},
			domain.Field{Name: "password", Value: password},
		); err != nil {
			return err
		}
		if err := domain.ValidateNumber(number); err != nil {
			return err
		}

		_, err := s.profiles.FindByNumber(ctx, number)
		switch {
		case err == nil:
			return domain.ErrDuplicateNumber
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}

		identity, err := s.auth.CreateAccount(ctx, email, password)
		if err != nil {
			return err
		}
		profile := domain.UserProfile{UserID: identity.UserID, Name: name, Number: number}
		if err := s.profiles.Upsert(ctx, profile); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return domain.ErrDuplicateNumber
			}
			return err
		}
		return s.startSession(identity)
	})
}

// LogOut signs out and drops every subscription and all session state.
func (s *Service) LogOut(ctx context.Context) error {
	return s.mutate(ctx, "log_out", func(ctx context.Context) error {
		s.endSession()
		if err := s.auth.SignOut(ctx); err != nil {
			return err
		}
		s.mu.Lock()
		s.noticeLocked("logged out")
		s.mu.Unlock()
		return nil
	})
}

func (s *Service) startSession(identity domain.Identity) error {
	if identity.UserID == "" {
		return domain.ErrNotSignedIn
	}
	s.endSession()

	userID := identity.UserID
	return s.attach(&s.profileSlot, func() bool {
		s.state.SignedIn = true
		s.state.UserID = userID
		s.sessionLive = false
		return true
	}, func(gen uint64) (ports.Subscription, error) {
		return s.profiles.Watch(s.ctx, userID, s.onProfile(gen))
	})
}

func (s *Service) endSession() {
	s.releaseAll()
	s.mu.Lock()
	s.state = State{}
	s.sessionLive = false
	s.rawStatuses = nil
	s.contacts = nil
	s.changedLocked()
	s.mu.Unlock()
}

// onProfile keeps the profile current. The first successful delivery of a
// session starts the chat registry and the status aggregator.
func (s *Service) onProfile(gen uint64) ports.ProfileListener {
	return func(profile *domain.UserProfile, err error) {
		s.mu.Lock()
		if !s.profileSlot.current(gen) {
			s.mu.Unlock()
			return
		}
		if err != nil {
			_ = s.failLocked(s.ctx, "watch_profile", err)
			s.mu.Unlock()
			return
		}
		if profile != nil {
			p := *profile
			s.state.Profile = &p
		} else {
			s.state.Profile = nil
		}
		start := !s.sessionLive
		s.sessionLive = true
		userID := s.state.UserID
		s.changedLocked()
		s.mu.Unlock()

		if !start {
			return
		}
		if err := s.subscribeChats(gen, userID); err != nil {
			_ = s.fail("subscribe_chats", err)
		}
		if err := s.subscribeStatuses(gen, userID); err != nil {
			_ = s.fail("subscribe_statuses", err)
		}
	}
}
