package crawl

import (
	"context"
	"time"

	"github.com/fwojciec/adscan"
)

// RetryFunc is notified before each retry with the attempt about to run.
type RetryFunc func(attempt int, err error)

// DefaultRetryDelays returns the backoff delays for page loads: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// WithRetry calls fn until it succeeds, sleeping delays[i] before retry i+1.
// Invalid and not-found errors are permanent and returned immediately.
func WithRetry[T any](ctx context.Context, delays []time.Duration, fn func(ctx context.Context) (T, error), onRetry RetryFunc) (T, error) {
	var zero T
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if attempt >= maxAttempts-1 || permanent(err) {
			break
		}
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		if onRetry != nil {
			onRetry(attempt+2, err)
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return zero, lastErr
}

func permanent(err error) bool {
	switch adscan.ErrorCode(err) {
	case adscan.EINVALID, adscan.ENOTFOUND, adscan.EFORBIDDEN:
		return true
	}
	return false
}
