// Package ratelimit blunts PIN brute-forcing: PINs are short numeric
// codes, so verification endpoints allow a fixed number of failed
// attempts per key per window.
package ratelimit

import (
	"context"
	"time"
)

const (
	// Limit is the number of failed attempts tolerated per window
	Limit = 5
	// Window is the sliding window over which failures are counted
	Window = 15 * time.Minute
)

// Limiter counts failed attempts per key over a sliding window. The
// memory implementation is process-local: across multiple instances the
// limit is enforced per instance, not globally. Use the Redis
// implementation when that relaxation matters.
type Limiter interface {
	// TooManyRecent reports whether the key has exhausted its attempts
	TooManyRecent(ctx context.Context, key string) (bool, error)
	// AddFailure records one failed attempt for the key
	AddFailure(ctx context.Context, key string) error
	// Reset clears the key after a successful attempt
	Reset(ctx context.Context, key string) error
}
