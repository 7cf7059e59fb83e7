package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestEveryRunsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var runs int32
	done := make(chan struct{})

	go func() {
		Every(ctx, nil, 5*time.Millisecond, "tick", false, func(context.Context) error {
			if atomic.AddInt32(&runs, 1) == 3 {
				cancel()
			}
			return errors.New("failures are logged, not fatal")
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Every did not return after cancel")
	}
	if got := atomic.LoadInt32(&runs); got < 3 {
		t.Fatalf("runs=%d want >= 3", got)
	}
}

func TestEveryZeroIntervalReturns(t *testing.T) {
	called := false
	Every(context.Background(), nil, 0, "never", true, func(context.Context) error {
		called = true
		return nil
	})
	if called {
		t.Fatalf("zero interval must not run the task")
	}
}
