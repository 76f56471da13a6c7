package flash

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAwaitReturnsValue(t *testing.T) {
	settled := Await(context.Background(), time.Second, func(context.Context) (int, error) {
		return 7, nil
	})
	if settled.Abandoned || settled.Err != nil || settled.Value != 7 {
		t.Fatalf("unexpected settled: %+v", settled)
	}
}

func TestAwaitPropagatesError(t *testing.T) {
	settled := Await(context.Background(), time.Second, func(context.Context) (int, error) {
		return 0, errBoom
	})
	if !errors.Is(settled.Err, errBoom) || settled.Abandoned {
		t.Fatalf("unexpected settled: %+v", settled)
	}
}

func TestAwaitAbandonsWithoutCancelling(t *testing.T) {
	release := make(chan struct{})
	finished := make(chan error, 1)

	start := time.Now()
	settled := Await(context.Background(), 20*time.Millisecond, func(ctx context.Context) (string, error) {
		<-release
		finished <- ctx.Err()
		return "late", nil
	})
	if !settled.Abandoned {
		t.Fatalf("expected abandoned, got %+v", settled)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("await blocked for %s", elapsed)
	}

	close(release)
	select {
	case err := <-finished:
		if err != nil {
			t.Fatalf("work context was cancelled: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("work never finished")
	}
}

func TestAwaitCallerCancellationDoesNotReachWork(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	release := make(chan struct{})
	finished := make(chan error, 1)

	go func() {
		<-started
		cancel()
	}()
	settled := Await(ctx, time.Minute, func(workCtx context.Context) (int, error) {
		close(started)
		<-release
		finished <- workCtx.Err()
		return 1, nil
	})
	if !settled.Abandoned || !errors.Is(settled.Err, context.Canceled) {
		t.Fatalf("expected abandoned with context.Canceled, got %+v", settled)
	}
	close(release)
	if err := <-finished; err != nil {
		t.Fatalf("work context was cancelled: %v", err)
	}
}

func TestAwaitRecoversPanics(t *testing.T) {
	settled := Await(context.Background(), time.Second, func(context.Context) (int, error) {
		panic("kaboom")
	})
	if settled.Err == nil || settled.Abandoned {
		t.Fatalf("expected panic surfaced as error, got %+v", settled)
	}
}
