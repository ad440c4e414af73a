package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func nopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestRunJobFiresOnEveryTick(t *testing.T) {
	s := &Scheduler{log: nopLogger(), stopCh: make(chan struct{})}
	var calls int32
	s.runJob("counter", 10*time.Millisecond, func(ctx context.Context) {
		atomic.AddInt32(&calls, 1)
	})

	time.Sleep(45 * time.Millisecond)
	s.Stop()

	if got := atomic.LoadInt32(&calls); got < 2 {
		t.Fatalf("expected at least 2 ticks to fire in 45ms at 10ms interval, got %d", got)
	}
}

func TestStopStopsFurtherTicks(t *testing.T) {
	s := &Scheduler{log: nopLogger(), stopCh: make(chan struct{})}
	var calls int32
	s.runJob("counter", 10*time.Millisecond, func(ctx context.Context) {
		atomic.AddInt32(&calls, 1)
	})

	time.Sleep(25 * time.Millisecond)
	s.Stop()
	afterStop := atomic.LoadInt32(&calls)

	time.Sleep(50 * time.Millisecond)
	if got := atomic.LoadInt32(&calls); got != afterStop {
		t.Fatalf("expected no further ticks after Stop, had %d before and %d after waiting", afterStop, got)
	}
}

func TestStopWaitsForInFlightJob(t *testing.T) {
	s := &Scheduler{log: nopLogger(), stopCh: make(chan struct{})}
	started := make(chan struct{})
	finished := make(chan struct{})
	s.runJob("slow", 10*time.Millisecond, func(ctx context.Context) {
		close(started)
		time.Sleep(30 * time.Millisecond)
		close(finished)
	})

	<-started
	s.Stop()

	select {
	case <-finished:
	default:
		t.Fatal("Stop returned before the in-flight job finished")
	}
}
