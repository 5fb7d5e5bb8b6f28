package cache

import (
	"context"
	"testing"
)

func TestLocalChangeFeedFanOut(t *testing.T) {
	t.Parallel()

	feed := NewLocalChangeFeed()
	ctx := context.Background()
	var a, b int
	subA, _ := feed.Subscribe(ctx, "chats:u1", func() { a++ })
	subB, _ := feed.Subscribe(ctx, "chats:u1", func() { b++ })
	_, _ = feed.Subscribe(ctx, "chats:u2", func() { t.Errorf("unrelated topic must not fire") })

	_ = feed.Publish(ctx, "chats:u1")
	if a != 1 || b != 1 {
		t.Fatalf("expected both subscribers to fire once, got a=%d b=%d", a, b)
	}

	_ = subA.Close()
	_ = feed.Publish(ctx, "chats:u1")
	if a != 1 || b != 2 {
		t.Fatalf("expected only the remaining subscriber to fire, got a=%d b=%d", a, b)
	}

	_ = subB.Close()
	if feed.Topics() != 1 {
		t.Fatalf("expected empty topic to be dropped, got %d topics", feed.Topics())
	}
}
