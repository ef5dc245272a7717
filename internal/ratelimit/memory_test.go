package ratelimit

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestMemoryLimiter_AllowsUpToLimit(t *testing.T) {
	l := NewMemoryLimiter()
	ctx := context.Background()

	for i := 0; i < Limit; i++ {
		blocked, err := l.TooManyRecent(ctx, "sender@example.com")
		if err != nil {
			t.Fatalf("TooManyRecent() failed: %v", err)
		}
		if blocked {
			t.Fatalf("Attempt %d should be allowed", i+1)
		}
		l.AddFailure(ctx, "sender@example.com")
	}

	// Sixth attempt must be rejected regardless of correctness
	blocked, err := l.TooManyRecent(ctx, "sender@example.com")
	if err != nil {
		t.Fatalf("TooManyRecent() failed: %v", err)
	}
	if !blocked {
		t.Errorf("Attempt %d should be blocked", Limit+1)
	}
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	l := NewMemoryLimiter()
	ctx := context.Background()

	for i := 0; i < Limit; i++ {
		l.AddFailure(ctx, "a@example.com")
	}

	blocked, _ := l.TooManyRecent(ctx, "b@example.com")
	if blocked {
		t.Error("Failures on one key must not block another")
	}
}

func TestMemoryLimiter_WindowExpiry(t *testing.T) {
	l := NewMemoryLimiter()
	ctx := context.Background()

	current := time.Now()
	l.now = func() time.Time { return current }

	for i := 0; i < Limit; i++ {
		l.AddFailure(ctx, "sender@example.com")
	}

	blocked, _ := l.TooManyRecent(ctx, "sender@example.com")
	if !blocked {
		t.Fatal("Expected key to be blocked inside the window")
	}

	current = current.Add(Window + time.Second)

	blocked, _ = l.TooManyRecent(ctx, "sender@example.com")
	if blocked {
		t.Error("Failures outside the window must not count")
	}
}

func TestMemoryLimiter_SlidingWindow(t *testing.T) {
	l := NewMemoryLimiter()
	ctx := context.Background()

	current := time.Now()
	l.now = func() time.Time { return current }

	// Three old failures, then two recent ones
	for i := 0; i < 3; i++ {
		l.AddFailure(ctx, "sender@example.com")
	}
	current = current.Add(Window - time.Minute)
	for i := 0; i < 2; i++ {
		l.AddFailure(ctx, "sender@example.com")
	}

	blocked, _ := l.TooManyRecent(ctx, "sender@example.com")
	if !blocked {
		t.Fatal("Five failures inside the window should block")
	}

	// Push the first three out of the window
	current = current.Add(2 * time.Minute)

	blocked, _ = l.TooManyRecent(ctx, "sender@example.com")
	if blocked {
		t.Error("Only two failures remain inside the window, should allow")
	}
}

func TestMemoryLimiter_Reset(t *testing.T) {
	l := NewMemoryLimiter()
	ctx := context.Background()

	for i := 0; i < Limit; i++ {
		l.AddFailure(ctx, "sender@example.com")
	}

	blocked, _ := l.TooManyRecent(ctx, "sender@example.com")
	if !blocked {
		t.Fatal("Expected key to be blocked")
	}

	l.Reset(ctx, "sender@example.com")

	blocked, _ = l.TooManyRecent(ctx, "sender@example.com")
	if blocked {
		t.Error("Reset should clear the key")
	}
}

func TestMemoryLimiter_ManyKeys(t *testing.T) {
	l := NewMemoryLimiter()
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		key := fmt.Sprintf("ip-%d", i)
		l.AddFailure(ctx, key)
		blocked, _ := l.TooManyRecent(ctx, key)
		if blocked {
			t.Fatalf("Single failure on %s should not block", key)
		}
	}
}
