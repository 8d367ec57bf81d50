// Package retry wraps a bounded, constant-delay retry loop.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy bounds a retry loop. MaxRetries counts retries after the first attempt.
type Policy struct {
	MaxRetries uint64
	Delay      time.Duration
}

// Do calls op until it succeeds, returns an error that retryable rejects,
// the policy is exhausted, or ctx is done. A nil retryable retries every error.
func Do(ctx context.Context, p Policy, retryable func(error) bool, op func() error) error {
	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.Delay), p.MaxRetries),
		ctx,
	)

	err := backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if retryable != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, b)

	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return perm.Err
	}
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
