package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/shivamDefault/ChatLive/internal/ports"
)

// RedisChangeFeed carries change nudges between processes over Redis pub/sub.
// One pattern subscription per process feeds a local fan-out.
type RedisChangeFeed struct {
	client *redis.Client
	prefix string
	pubsub *redis.PubSub
	local  *LocalChangeFeed
	done   chan struct{}
}

func NewRedisChangeFeed(ctx context.Context, client *redis.Client, prefix string) (*RedisChangeFeed, error) {
	if prefix == "" {
		prefix = "chatlive:changes:"
	}
	pubsub := client.PSubscribe(ctx, prefix+"*")
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe change feed: %w", err)
	}
	f := &RedisChangeFeed{
		client: client,
		prefix: prefix,
		pubsub: pubsub,
		local:  NewLocalChangeFeed(),
		done:   make(chan struct{}),
	}
	go f.dispatch()
	return f, nil
}

func (f *RedisChangeFeed) dispatch() {
	defer close(f.done)
	for msg := range f.pubsub.Channel() {
		topic := strings.TrimPrefix(msg.Channel, f.prefix)
		if err := f.local.Publish(context.Background(), topic); err != nil {
			slog.Default().Warn("change feed dispatch failed",
				"module", "cache.change_feed",
				"layer", "adapter",
				"operation", "dispatch",
				"outcome", "failure",
				"topic", topic,
				"error", err,
			)
		}
	}
}

func (f *RedisChangeFeed) Publish(ctx context.Context, topic string) error {
	return f.client.Publish(ctx, f.prefix+topic, "changed").Err()
}

func (f *RedisChangeFeed) Subscribe(ctx context.Context, topic string, fn func()) (ports.Subscription, error) {
	return f.local.Subscribe(ctx, topic, fn)
}

// Close stops the pattern subscription and waits for the dispatcher to exit.
func (f *RedisChangeFeed) Close() error {
	err := f.pubsub.Close()
	<-f.done
	return err
}
