// Package lock provides the process-wide booking lock. Every booking decision
// reads the shared personnel pool, so one lock covers all venues.
package lock

import (
	"context"
	"errors"
	"fmt"
)

var ErrNotAcquired = errors.New("booking lock not acquired")

// Locker hands out an exclusive lock. The returned release func must be called
// exactly once.
type Locker interface {
	Lock(ctx context.Context) (release func(), err error)
}

// Mutex is an in-process Locker that honours context cancellation.
type Mutex struct {
	ch chan struct{}
}

func NewMutex() *Mutex {
	return &Mutex{ch: make(chan struct{}, 1)}
}

func (m *Mutex) Lock(ctx context.Context) (func(), error) {
	select {
	case m.ch <- struct{}{}:
		return func() { <-m.ch }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrNotAcquired, ctx.Err())
	}
}
