// Package deadline races an asynchronous operation against a fixed timer.
package deadline

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout is returned when the budget elapses before the operation settles.
var ErrTimeout = errors.New("operation timed out")

type outcome[T any] struct {
	value T
	err   error
}

// Race runs op and waits at most budget for it to settle; whichever side
// finishes first decides the result. If the timer wins, Race returns
// ErrTimeout and the operation is simply no longer awaited: no cancellation
// is sent to it, and its eventual result is absorbed by a buffered channel
// so the goroutine does not leak.
func Race[T any](ctx context.Context, budget time.Duration, op func(context.Context) (T, error)) (T, error) {
	results := make(chan outcome[T], 1)

	go func() {
		value, err := op(ctx)
		results <- outcome[T]{value: value, err: err}
	}()

	timer := time.NewTimer(budget)
	defer timer.Stop()

	select {
	case r := <-results:
		return r.value, r.err
	case <-timer.C:
		var zero T
		return zero, ErrTimeout
	}
}
