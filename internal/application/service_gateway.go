package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shivamDefault/ChatLive/internal/domain"
)

// mutate runs one state-changing operation. InProcess is raised for its
// duration and any failure is logged, published as the one-shot notification
// and returned.
func (s *Service) mutate(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	s.inflight++
	s.changedLocked()
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.WriteTimeout)
	defer cancel()
	err := fn(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	if err != nil {
		err = s.failLocked(ctx, op, err)
	}
	s.changedLocked()
	return err
}

// failLocked classifies err, logs it and publishes it. Caller holds s.mu.
func (s *Service) failLocked(ctx context.Context, op string, err error) error {
	if !domain.IsKnown(err) {
		err = fmt.Errorf("%w: %s: %v", domain.ErrBackend, op, err)
	}
	level := slog.LevelWarn
	if errors.Is(err, domain.ErrBackend) {
		level = slog.LevelError
	}
	slog.Default().Log(ctx, level, "operation failed",
		"module", "application.gateway",
		"layer", "application",
		"operation", op,
		"outcome", "failure",
		"user_id", s.state.UserID,
		"error", err,
	)
	s.state.Notification = err.Error()
	s.changedLocked()
	return err
}

func (s *Service) noticeLocked(msg string) {
	s.state.Notification = msg
	s.changedLocked()
}

// fail reports a failure that happened outside mutate.
func (s *Service) fail(op string, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failLocked(s.ctx, op, err)
}

// currentUser returns the signed-in user id or ErrNotSignedIn.
func (s *Service) currentUser() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.SignedIn || s.state.UserID == "" {
		return "", domain.ErrNotSignedIn
	}
	return s.state.UserID, nil
}

// currentProfile prefers the live profile and falls back to a direct read
// when the first delivery has not arrived yet.
func (s *Service) currentProfile(ctx context.Context) (domain.UserProfile, error) {
	s.mu.Lock()
	signedIn, userID, live := s.state.SignedIn, s.state.UserID, s.state.Profile
	s.mu.Unlock()

	if !signedIn || userID == "" {
		return domain.UserProfile{}, domain.ErrNotSignedIn
	}
	if live != nil {
		return *live, nil
	}
	profile, err := s.profiles.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.UserProfile{UserID: userID}, nil
	}
	return profile, err
}
