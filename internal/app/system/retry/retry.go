// Package retry re-runs idempotent store calls that failed with
// errs.ErrStoreUnavailable, backing off exponentially between attempts.
package retry

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/bulletin/internal/domain/errs"
	"go.uber.org/zap"
)

// Policy bounds the retry loop.
type Policy struct {
	Attempts int           // total tries, including the first
	Backoff  time.Duration // wait before the second try; doubles afterwards
	MaxWait  time.Duration // cap on a single wait
}

// DefaultPolicy is used until Configure is called.
var DefaultPolicy = Policy{Attempts: 3, Backoff: 100 * time.Millisecond, MaxWait: 2 * time.Second}

var (
	mu      sync.RWMutex
	current = DefaultPolicy
)

// Configure replaces the process-wide policy. Zero fields keep the default.
func Configure(p Policy) {
	mu.Lock()
	defer mu.Unlock()
	current = DefaultPolicy
	if p.Attempts > 0 {
		current.Attempts = p.Attempts
	}
	if p.Backoff > 0 {
		current.Backoff = p.Backoff
	}
	if p.MaxWait > 0 {
		current.MaxWait = p.MaxWait
	}
}

// Current returns the process-wide policy.
func Current() Policy {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Do runs fn under the current policy.
func Do(ctx context.Context, log *zap.Logger, operation string, fn func(ctx context.Context) error) error {
	return Current().Do(ctx, log, operation, fn)
}

// Do runs fn until it succeeds, returns a non-retryable error, the attempts
// are used up, or ctx ends.
func (p Policy) Do(ctx context.Context, log *zap.Logger, operation string, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	wait := p.Backoff

	var err error
	for i := 1; ; i++ {
		err = fn(ctx)
		if err == nil || !errs.IsRetryable(err) || i >= attempts {
			return err
		}
		if log != nil {
			log.Warn("store unavailable; retrying",
				zap.String("operation", operation),
				zap.Int("attempt", i),
				zap.Duration("wait", wait),
				zap.Error(err))
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return err
		case <-t.C:
		}

		wait *= 2
		if p.MaxWait > 0 && wait > p.MaxWait {
			wait = p.MaxWait
		}
	}
}
