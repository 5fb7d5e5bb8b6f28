package postgres

import (
	"context"
	"sync"

	"github.com/shivamDefault/ChatLive/internal/ports"
)

// watchQuery runs load once for the initial result, then again after every
// change-feed nudge on any of topics. Re-queries run one at a time so results
// are delivered in the order they were read.
func watchQuery[T any](ctx context.Context, feed ports.ChangeFeed, topics []string, load func(ctx context.Context) (T, error), fn func(T, error)) (ports.Subscription, error) {
	runCtx, cancel := context.WithCancel(context.Background())
	kick := make(chan struct{}, 1)
	nudge := func() {
		select {
		case kick <- struct{}{}:
		default:
		}
	}

	feedSubs := make([]ports.Subscription, 0, len(topics))
	closeFeeds := func() {
		for _, sub := range feedSubs {
			_ = sub.Close()
		}
	}
	if feed != nil {
		for _, topic := range topics {
			sub, err := feed.Subscribe(runCtx, topic, nudge)
			if err != nil {
				cancel()
				closeFeeds()
				return nil, err
			}
			feedSubs = append(feedSubs, sub)
		}
	}

	initial, err := load(ctx)
	if err != nil {
		cancel()
		closeFeeds()
		return nil, err
	}

	var (
		mu     sync.Mutex
		closed bool
	)
	deliver := func(value T, err error) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		fn(value, err)
	}
	deliver(initial, nil)

	go func() {
		for {
			select {
			case <-runCtx.Done():
				return
			case <-kick:
			}
			value, err := load(runCtx)
			if runCtx.Err() != nil {
				return
			}
			deliver(value, err)
		}
	}()

	return ports.NewSubscription(func() {
		cancel()
		closeFeeds()
		mu.Lock()
		closed = true
		mu.Unlock()
	}), nil
}
