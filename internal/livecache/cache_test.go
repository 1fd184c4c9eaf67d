package livecache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestNewRejectsBadURL(t *testing.T) {
	if _, err := New(context.Background(), "not-a-redis-url"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestUnreachableRedisReportsErrors(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := New(ctx, "redis://127.0.0.1:1/0"); err == nil {
		t.Fatalf("expected ping error for unreachable redis")
	}

	cache := NewWithClient(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 200 * time.Millisecond,
	}))
	t.Cleanup(func() { _ = cache.Close() })

	data, ok, err := cache.Get(ctx, "timeline:m1")
	if err == nil {
		t.Fatalf("expected lookup error, got ok=%v data=%q", ok, data)
	}
	if ok {
		t.Fatalf("failed lookup must not report a hit")
	}
}

func TestCloseNil(t *testing.T) {
	var cache *Cache
	if err := cache.Close(); err != nil {
		t.Fatalf("expected nil error closing nil cache, got %v", err)
	}
}
