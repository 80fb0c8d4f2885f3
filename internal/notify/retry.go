package notify

import (
	"context"
	"errors"
	"time"

	"github.com/codeGROOVE-dev/retry"
)

// Permanent marks err as not worth retrying, e.g. a rejected API token.
func Permanent(err error) error {
	return retry.Unrecoverable(err)
}

// Deliver runs op up to attempts times, waiting delay between attempts.
// It returns nil on the first success and the last error otherwise.
// Cancelling ctx stops immediately; cancellation errors and Permanent
// errors are never retried.
func Deliver(ctx context.Context, op func(context.Context) error, attempts int, delay time.Duration) error {
	if attempts < 1 {
		attempts = 1
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return retry.Do(
		func() error {
			return op(ctx)
		},
		retry.Attempts(uint(attempts)),
		retry.Delay(delay),
		retry.DelayType(retry.FixedDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return ctx.Err() == nil &&
				!errors.Is(err, context.Canceled) &&
				!errors.Is(err, context.DeadlineExceeded)
		}),
	)
}
