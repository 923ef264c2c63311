package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newLimiter(t *testing.T, maxHits int64, window time.Duration) (*FixedWindow, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	l, err := NewFixedWindow(client, maxHits, window)
	if err != nil {
		t.Fatalf("NewFixedWindow() error = %v", err)
	}
	return l, mr
}

func TestFixedWindow_Allow(t *testing.T) {
	// Arrange
	l, _ := newLimiter(t, 3, time.Minute)
	ctx := context.Background()

	// Act
	var last Result
	for i := range 3 {
		res, err := l.Allow(ctx, "ip:10.0.0.1")
		if err != nil {
			t.Fatalf("Allow() #%d error = %v", i, err)
		}
		if !res.Allowed {
			t.Fatalf("Allow() #%d rejected", i)
		}
		last = res
	}
	blocked, err := l.Allow(ctx, "ip:10.0.0.1")

	// Assert
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if last.Remaining != 0 {
		t.Fatalf("Remaining = %d, want 0", last.Remaining)
	}
	if blocked.Allowed {
		t.Fatal("fourth hit must be rejected")
	}
	if blocked.RetryAfter <= 0 || blocked.RetryAfter > time.Minute {
		t.Fatalf("RetryAfter = %v", blocked.RetryAfter)
	}
}

func TestFixedWindow_WindowResets(t *testing.T) {
	l, mr := newLimiter(t, 1, time.Minute)
	ctx := context.Background()

	if res, _ := l.Allow(ctx, "user:1"); !res.Allowed {
		t.Fatal("first hit rejected")
	}
	if res, _ := l.Allow(ctx, "user:1"); res.Allowed {
		t.Fatal("second hit allowed")
	}

	mr.FastForward(61 * time.Second)

	if res, _ := l.Allow(ctx, "user:1"); !res.Allowed {
		t.Fatal("hit after window rejected")
	}
}

func TestFixedWindow_KeysAreIndependent(t *testing.T) {
	l, _ := newLimiter(t, 1, time.Minute)
	ctx := context.Background()

	_, _ = l.Allow(ctx, "user:1")
	if res, _ := l.Allow(ctx, "user:2"); !res.Allowed {
		t.Fatal("other key must not share the window")
	}
}

func TestNewFixedWindow_Invalid(t *testing.T) {
	if _, err := NewFixedWindow(nil, 0, time.Minute); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("error = %v", err)
	}
}
