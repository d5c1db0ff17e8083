package adapter

import (
	"context"
	"time"
)

// RateLimiter bounds how often an action keyed by a string may happen.
type RateLimiter interface {
	// Allow returns false once more than limit calls land in the current
	// window for the key.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
