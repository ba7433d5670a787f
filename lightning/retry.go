package lightning

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DefaultAttempts is the bounded retry budget read flows apply at the call
// site. State-changing calls must not use this blindly, see Retryable.
const DefaultAttempts = 3

var retryInterval = 500 * time.Millisecond

// Retry runs op up to attempts times, backing off between attempts. It
// stops early when op returns a non-retryable error or the context is
// canceled, and returns only the final failure.
func Retry(ctx context.Context, attempts uint64, op func() error) error {
	if attempts == 0 {
		attempts = 1
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(
			backoff.NewConstantBackOff(retryInterval),
			attempts-1,
		),
		ctx,
	)

	return backoff.Retry(func() error {
		err := op()
		if err != nil && !Retryable(err) {
			return backoff.Permanent(err)
		}

		return err
	}, bo)
}
