package application

import "github.com/shivamDefault/ChatLive/internal/domain"

// Snapshot returns a deep copy of the current state. Status visibility is
// evaluated against the service clock at call time.
func (s *Service) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.state.clone()
	out.InProcess = s.inflight > 0
	if s.state.SignedIn {
		part := domain.PartitionStatuses(s.rawStatuses, s.state.UserID, s.contacts, s.nowFn())
		out.OwnStatuses = part.Own
		out.OtherStatuses = part.Others
	}
	return out
}

// Watch returns a channel that receives a value after state changes. Signals
// coalesce, so a slow reader sees one pending value rather than a backlog.
func (s *Service) Watch() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	s.mu.Lock()
	s.nextWatcher++
	id := s.nextWatcher
	s.watchers[id] = ch
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	}
}

// ConsumeNotification returns the pending one-shot message and clears it.
func (s *Service) ConsumeNotification() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := s.state.Notification
	if msg != "" {
		s.state.Notification = ""
		s.changedLocked()
	}
	return msg
}

// StatusesOf returns the visible statuses of one poster, oldest first.
func (s *Service) StatusesOf(userID string) []domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.StatusesBy(s.rawStatuses, userID, s.nowFn())
}

func (s *Service) changedLocked() {
	for _, ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
