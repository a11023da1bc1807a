package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
)

// Backoff retries an operation with exponential backoff and jitter.
type Backoff struct {
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// New creates a Backoff. maxRetries counts the attempts after the first one.
func New(maxRetries int, baseDelay time.Duration) *Backoff {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Backoff{
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		maxDelay:   baseDelay * 16, // Maximum 16x base delay
	}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent stops Do from retrying err.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func isRetryable(err error) bool {
	var p *permanentError
	return !errors.As(err, &p) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

// Delay returns the wait before retry number attempt (1-based):
// base * 2^(attempt-1) with ±25% jitter, capped at 16x base.
func (b *Backoff) Delay(attempt int) time.Duration {
	if attempt <= 1 || b.baseDelay <= 0 {
		return b.baseDelay
	}

	backoff := b.maxDelay
	if shift := attempt - 1; shift < 4 {
		backoff = b.baseDelay << shift
	}

	if quarter := int64(backoff / 4); quarter > 0 {
		backoff += time.Duration(rand.Int63n(2*quarter+1) - quarter)
	}
	return backoff
}

// Do runs op until it succeeds, returns a permanent error, ctx ends or the
// retries are used up. The last error is returned.
func (b *Backoff) Do(ctx context.Context, name string, op func(ctx context.Context) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if !isRetryable(err) || attempt >= b.maxRetries {
			var p *permanentError
			if errors.As(err, &p) {
				return p.err
			}
			return err
		}

		delay := b.Delay(attempt + 1)
		logrus.WithError(err).WithFields(logrus.Fields{
			"operation": name,
			"attempt":   attempt + 1,
			"delay":     delay,
		}).Warn("Retrying")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(err, ctx.Err())
		case <-timer.C:
		}
	}
}
