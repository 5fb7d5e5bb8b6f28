package application

import (
	"sync"

	"github.com/shivamDefault/ChatLive/internal/ports"
)

// liveSlot holds at most one subscription. Every attach or release bumps gen,
// and callbacks carrying an older gen are dropped.
type liveSlot struct {
	ops sync.Mutex
	gen uint64
	sub ports.Subscription
}

// attach replaces the slot's subscription. prepare runs under s.mu before the
// old subscription is closed and may veto the attach by returning false.
// The old subscription is always closed before open is called.
func (s *Service) attach(slot *liveSlot, prepare func() bool, open func(gen uint64) (ports.Subscription, error)) error {
	slot.ops.Lock()
	defer slot.ops.Unlock()

	s.mu.Lock()
	if prepare != nil && !prepare() {
		s.mu.Unlock()
		return nil
	}
	slot.gen++
	gen := slot.gen
	old := slot.sub
	slot.sub = nil
	s.changedLocked()
	s.mu.Unlock()
	closeQuietly(old)

	sub, err := open(gen)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if slot.gen != gen {
		s.mu.Unlock()
		closeQuietly(sub)
		return nil
	}
	slot.sub = sub
	s.mu.Unlock()
	return nil
}

// release closes the slot's subscription. reset, when set, runs under s.mu.
func (s *Service) release(slot *liveSlot, reset func()) {
	slot.ops.Lock()
	defer slot.ops.Unlock()

	s.mu.Lock()
	slot.gen++
	old := slot.sub
	slot.sub = nil
	if reset != nil {
		reset()
		s.changedLocked()
	}
	s.mu.Unlock()
	closeQuietly(old)
}

// current reports whether gen is still the slot's live generation. Caller holds s.mu.
func (slot *liveSlot) current(gen uint64) bool {
	return slot.gen == gen
}

func closeQuietly(sub ports.Subscription) {
	if sub != nil {
		_ = sub.Close()
	}
}
