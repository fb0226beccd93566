package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunEveryRunsImmediately(t *testing.T) {
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())

	fn := func(context.Context) error {
		calls.Add(1)
		cancel()
		return nil
	}

	done := make(chan struct{})
	go func() {
		RunEvery(ctx, time.Hour, nil, fn)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("RunEvery did not return after cancellation")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want exactly the immediate run", got)
	}
}

func TestRunEveryKeepsSchedulingAfterFailure(t *testing.T) {
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fn := func(context.Context) error {
		if calls.Add(1) >= 2 {
			cancel()
		}
		return errors.New("cycle failed")
	}

	done := make(chan struct{})
	go func() {
		RunEvery(ctx, 20*time.Millisecond, nil, fn)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("RunEvery did not return after cancellation")
	}
	if got := calls.Load(); got < 2 {
		t.Errorf("calls = %d, want the schedule to continue past a failing cycle", got)
	}
}
