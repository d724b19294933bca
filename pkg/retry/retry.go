package retry

import (
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultAttempts = 1
	DefaultInterval = 200 * time.Millisecond
)

type Operation func() error

type Config struct {
	// Attempts is the total number of tries, at least 1.
	Attempts int
	Interval time.Duration
	// Retryable decides whether a failure is worth another attempt. Nil
	// retries every error.
	Retryable func(error) bool
	OnRetry   func(error, time.Duration)
}

// Constant runs fn until it succeeds, fails with a non-retryable error or
// cfg.Attempts tries have been made. The last error is returned unwrapped.
func Constant(fn Operation, cfg Config) error {
	attempts := cfg.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	bo := backoff.WithMaxRetries(backoff.NewConstantBackOff(interval), uint64(attempts-1))
	err := backoff.RetryNotify(func() error {
		err := fn()
		if err != nil && cfg.Retryable != nil && !cfg.Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, bo, func(err error, next time.Duration) {
		if cfg.OnRetry != nil {
			cfg.OnRetry(err, next)
		}
	})

	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return perm.Err
	}
	return err
}
