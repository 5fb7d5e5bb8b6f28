package cache

import (
	"context"
	"sync"

	"github.com/shivamDefault/ChatLive/internal/ports"
)

// LocalChangeFeed fans out topics within one process.
type LocalChangeFeed struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string]map[uint64]func()
}

func NewLocalChangeFeed() *LocalChangeFeed {
	return &LocalChangeFeed{subs: make(map[string]map[uint64]func())}
}

func (f *LocalChangeFeed) Publish(_ context.Context, topic string) error {
	f.mu.RLock()
	fns := make([]func(), 0, len(f.subs[topic]))
	for _, fn := range f.subs[topic] {
		fns = append(fns, fn)
	}
	f.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
	return nil
}

func (f *LocalChangeFeed) Subscribe(_ context.Context, topic string, fn func()) (ports.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := f.nextID
	if f.subs[topic] == nil {
		f.subs[topic] = make(map[uint64]func())
	}
	f.subs[topic][id] = fn
	return ports.NewSubscription(func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs[topic], id)
		if len(f.subs[topic]) == 0 {
			delete(f.subs, topic)
		}
	}), nil
}

// Topics reports how many topics have at least one subscriber.
func (f *LocalChangeFeed) Topics() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}
