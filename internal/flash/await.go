package flash

import (
	"context"
	"fmt"
	"time"
)

// Settled is the result of Await. Abandoned means the caller stopped
// waiting; the work itself may still be running.
type Settled[T any] struct {
	Value     T
	Err       error
	Abandoned bool
}

// Await runs work in its own goroutine and waits at most deadline for it.
// The work gets a context detached from ctx's cancellation, so neither the
// deadline nor ctx being cancelled stops it; Await only stops waiting.
// A deadline <= 0 waits for completion.
func Await[T any](ctx context.Context, deadline time.Duration, work func(context.Context) (T, error)) Settled[T] {
	done := make(chan Settled[T], 1)
	workCtx := context.WithoutCancel(ctx)

	go func() {
		var settled Settled[T]
		defer func() {
			if r := recover(); r != nil {
				settled = Settled[T]{Err: fmt.Errorf("panic: %v", r)}
			}
			done <- settled
		}()
		value, err := work(workCtx)
		settled = Settled[T]{Value: value, Err: err}
	}()

	var expired <-chan time.Time
	if deadline > 0 {
		timer := time.NewTimer(deadline)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case settled := <-done:
		return settled
	case <-expired:
		return Settled[T]{Abandoned: true}
	case <-ctx.Done():
		return Settled[T]{Abandoned: true, Err: ctx.Err()}
	}
}
