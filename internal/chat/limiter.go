// Package chat implements token bucket admission gates used to throttle new
// connections and outbound chat messages.
package chat

import (
	"time"

	"golang.org/x/time/rate"
)

// TokenBucket is a non-blocking admission gate. The bucket refills at a fixed
// rate up to a burst capacity; each acquire deducts one token or fails
// without queuing. Two independent instances gate the relay: one for new
// connections, one for accepted chat messages.
type TokenBucket struct {
	limiter *rate.Limiter
}

// NewTokenBucket creates a bucket that refills at perSecond tokens per second
// and holds at most burst tokens. The bucket starts full. Non-positive
// arguments fall back to 1.
func NewTokenBucket(perSecond float64, burst int) *TokenBucket {
	if perSecond <= 0 {
		perSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &TokenBucket{
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// TryAcquire deducts one token if at least one is available and reports
// whether it succeeded. A failed acquire leaves the bucket unchanged.
func (b *TokenBucket) TryAcquire() bool {
	return b.tryAcquireAt(time.Now())
}

func (b *TokenBucket) tryAcquireAt(now time.Time) bool {
	return b.limiter.AllowN(now, 1)
}
