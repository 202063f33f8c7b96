package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisWindowHit(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	w := NewRedisWindow(client)
	window := 10 * time.Second
	start := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		count, err := w.Hit(ctx, "ratelimit:test:ip", start.Add(time.Duration(i)*time.Second), window)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if count != int64(i) {
			t.Errorf("Expected %d earlier hits, got %d", i, count)
		}
	}
	if ttl := mr.TTL("ratelimit:test:ip"); ttl != window+time.Minute {
		t.Errorf("Expected ttl %v, got %v", window+time.Minute, ttl)
	}

	count, err := w.Hit(ctx, "ratelimit:test:ip", start.Add(window+3*time.Second), window)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if count != 0 {
		t.Errorf("Expected hits outside the window to be dropped, got %d", count)
	}

	if count, _ := w.Hit(ctx, "ratelimit:test:other", start, window); count != 0 {
		t.Errorf("Expected keys to be counted separately, got %d", count)
	}
}
