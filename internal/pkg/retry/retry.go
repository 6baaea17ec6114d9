// Package retry wraps cenkalti/backoff with the small surface the
// pipeline needs: bounded attempts, exponential backoff, and an
// observer hook for logging.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

type Options struct {
	// MaxAttempts bounds the total number of tries (first call included).
	MaxAttempts uint
	// InitialInterval is the first backoff delay. Zero keeps the library default.
	InitialInterval time.Duration
	// MaxInterval caps the backoff delay. Zero keeps the library default.
	MaxInterval time.Duration
	// OnRetry is invoked before every re-attempt with the attempt number
	// (1 for the first retry) and the error that triggered it.
	OnRetry func(attempt int, err error)
}

// Do runs op until it succeeds, the attempt budget is exhausted, or ctx is
// cancelled. The last error is returned as-is so callers can wrap it.
func Do[T any](ctx context.Context, op func() (T, error), opts Options) (T, error) {
	expo := backoff.NewExponentialBackOff()
	if opts.InitialInterval > 0 {
		expo.InitialInterval = opts.InitialInterval
	}
	if opts.MaxInterval > 0 {
		expo.MaxInterval = opts.MaxInterval
	}

	attempt := 0
	notify := func(err error, _ time.Duration) {
		attempt++
		if opts.OnRetry != nil {
			opts.OnRetry(attempt, err)
		}
	}

	maxTries := opts.MaxAttempts
	if maxTries == 0 {
		maxTries = 1
	}

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(maxTries),
		backoff.WithNotify(notify),
	)
}
