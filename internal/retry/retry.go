// Package retry provides a bounded retry loop with exponential backoff,
// shared by the API transport and the pending-change sync path.
package retry

import (
	"context"
	"errors"
	"time"
)

// Permanent wraps an error to mark it non-retryable. Do stops
// immediately and returns the wrapped error.
type Permanent struct {
	Err error
}

func (p *Permanent) Error() string { return p.Err.Error() }

func (p *Permanent) Unwrap() error { return p.Err }

// Stop marks err as permanent so Do will not retry it.
func Stop(err error) error {
	return &Permanent{Err: err}
}

// Delayed wraps an error with the wait the failing side requested
// (e.g. a Retry-After header). Do sleeps that duration before the next
// attempt instead of its own backoff delay.
type Delayed struct {
	Err   error
	Delay time.Duration
}

func (d *Delayed) Error() string { return d.Err.Error() }

func (d *Delayed) Unwrap() error { return d.Err }

// After marks err as retryable after the given wait.
func After(err error, delay time.Duration) error {
	return &Delayed{Err: err, Delay: delay}
}

// Config bounds a retry loop.
type Config struct {
	// Attempts is the total number of tries, including the first.
	Attempts int

	// BaseDelay is the wait before the second attempt; it doubles after
	// every failed attempt. Delay waits are capped at MaxDelay when set.
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// Do runs fn up to cfg.Attempts times, sleeping between attempts with
// exponential backoff. It returns nil on the first success, ctx.Err()
// if the context is done while waiting, and otherwise the last error.
// Errors from each failed attempt are also reported to onErr when set.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error, onErr func(attempt int, err error)) error {
	attempts := cfg.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	delay := cfg.BaseDelay
	if delay <= 0 {
		delay = time.Second
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}

		var perm *Permanent
		if errors.As(err, &perm) {
			if onErr != nil {
				onErr(attempt, perm.Err)
			}
			return perm.Err
		}

		lastErr = err
		if onErr != nil {
			onErr(attempt, err)
		}

		if attempt == attempts {
			break
		}

		wait := delay
		var delayed *Delayed
		if errors.As(err, &delayed) && delayed.Delay > 0 {
			wait = delayed.Delay
		}
		if cfg.MaxDelay > 0 && wait > cfg.MaxDelay {
			wait = cfg.MaxDelay
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		delay *= 2
	}

	return lastErr
}
