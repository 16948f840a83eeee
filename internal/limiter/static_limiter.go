// Package limiter throttles the rate of outbound object-store operations
// (CopyObject/DeleteObject calls) so a restore run stays under a bucket's
// per-partition request-rate limit.
package limiter

import (
	"context"
	"time"

	"github.com/juju/ratelimit"
)

// An OpLimiter caps the number of operations that may proceed per second.
// A nil *OpLimiter imposes no limit.
type OpLimiter struct {
	bucket *ratelimit.Bucket
}

// NewOpLimiter returns an OpLimiter allowing opsPerSec operations per
// second. opsPerSec <= 0 means unlimited (Wait never blocks).
func NewOpLimiter(opsPerSec int) *OpLimiter {
	if opsPerSec <= 0 {
		return nil
	}
	return &OpLimiter{
		bucket: ratelimit.NewBucketWithRate(float64(opsPerSec), int64(opsPerSec)),
	}
}

// Wait blocks until a single operation token is available or ctx is done.
func (l *OpLimiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}

	d := l.bucket.Take(1)
	if d <= 0 {
		return nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
