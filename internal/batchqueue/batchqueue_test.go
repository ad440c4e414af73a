package batchqueue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hanzidojo/engine/internal/engerr"
)

func nopLogger() zerolog.Logger { return zerolog.Nop() }

// TestCoalescing is scenario 5 from spec §8: six submissions to a
// processor with batch_size=5, max_wait=1s within 100ms dispatch as one
// batch of five immediately, with the sixth dispatched within 1s.
func TestCoalescing(t *testing.T) {
	var mu sync.Mutex
	var batchSizes []int

	fn := func(ctx context.Context, items []int, aux struct{}) ([]int, error) {
		mu.Lock()
		batchSizes = append(batchSizes, len(items))
		mu.Unlock()
		out := make([]int, len(items))
		for i, v := range items {
			out[i] = v * 2
		}
		return out, nil
	}

	p := New[int, int, struct{}]("double", 5, time.Second, fn, nopLogger())
	defer p.Stop()

	results := make(chan int, 6)
	start := time.Now()
	for i := 0; i < 6; i++ {
		go func(n int) {
			v, err := p.Submit(context.Background(), n, struct{}{})
			if err != nil {
				t.Errorf("submit %d: %v", n, err)
				return
			}
			results <- v
		}(i)
	}

	collected := 0
	deadline := time.After(2 * time.Second)
	for collected < 6 {
		select {
		case <-results:
			collected++
		case <-deadline:
			t.Fatalf("timed out waiting for results, got %d/6", collected)
		}
	}
	elapsed := time.Since(start)
	if elapsed > 1500*time.Millisecond {
		t.Fatalf("sixth item dispatched too late: %v", elapsed)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(batchSizes) != 2 {
		t.Fatalf("expected 2 batches, got %d: %v", len(batchSizes), batchSizes)
	}
	if batchSizes[0] != 5 {
		t.Fatalf("expected first batch of 5, got %d", batchSizes[0])
	}
	if batchSizes[1] != 1 {
		t.Fatalf("expected second batch of 1, got %d", batchSizes[1])
	}
}

func TestShortBatchErrorForExcessWaiters(t *testing.T) {
	fn := func(ctx context.Context, items []int, aux struct{}) ([]int, error) {
		// Return only half the results.
		return items[:len(items)/2], nil
	}
	p := New[int, int, struct{}]("short", 4, 50*time.Millisecond, fn, nopLogger())
	defer p.Stop()

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, err := p.Submit(context.Background(), idx, struct{}{})
			errs[idx] = err
		}(i)
	}
	wg.Wait()

	okCount, shortCount := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			okCount++
		case engerr.Is(err, engerr.KindShortBatch):
			shortCount++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if okCount != 2 || shortCount != 2 {
		t.Fatalf("expected 2 ok and 2 short-batch, got ok=%d short=%d", okCount, shortCount)
	}
}

func TestBatchFnErrorFailsOnlyThatBatch(t *testing.T) {
	call := 0
	fn := func(ctx context.Context, items []int, aux struct{}) ([]int, error) {
		call++
		if call == 1 {
			return nil, fmt.Errorf("boom")
		}
		return items, nil
	}
	p := New[int, int, struct{}]("flaky", 2, 20*time.Millisecond, fn, nopLogger())
	defer p.Stop()

	_, err1 := p.Submit(context.Background(), 1, struct{}{})
	if err1 == nil {
		t.Fatal("expected error from first batch")
	}

	v, err2 := p.Submit(context.Background(), 2, struct{}{})
	if err2 != nil {
		t.Fatalf("processor should still be operational after a bad batch: %v", err2)
	}
	if v != 2 {
		t.Fatalf("got %d, want 2", v)
	}
}

func TestBatchFnPanicIsolated(t *testing.T) {
	fn := func(ctx context.Context, items []int, aux struct{}) ([]int, error) {
		panic("kaboom")
	}
	p := New[int, int, struct{}]("panicky", 1, 10*time.Millisecond, fn, nopLogger())
	defer p.Stop()

	_, err := p.Submit(context.Background(), 1, struct{}{})
	if err == nil {
		t.Fatal("expected panic to surface as an error")
	}
}

func TestCancellationBeforeDispatchRemovesItem(t *testing.T) {
	fn := func(ctx context.Context, items []int, aux struct{}) ([]int, error) {
		return items, nil
	}
	p := New[int, int, struct{}]("cancelable", 10, time.Hour, fn, nopLogger())
	defer p.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Submit(ctx, 1, struct{}{})
	if err == nil {
		t.Fatal("expected cancellation error")
	}

	p.mu.Lock()
	n := len(p.queue)
	p.mu.Unlock()
	if n != 0 {
		t.Fatalf("expected canceled item to be removed from queue, queue has %d items", n)
	}
}

func TestFlushDrainsImmediately(t *testing.T) {
	fn := func(ctx context.Context, items []int, aux struct{}) ([]int, error) {
		return items, nil
	}
	p := New[int, int, struct{}]("flush", 100, time.Hour, fn, nopLogger())
	defer p.Stop()

	done := make(chan struct{})
	go func() {
		_, _ = p.Submit(context.Background(), 1, struct{}{})
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	p.Flush()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("flush did not dispatch the pending item")
	}
}

func TestShutdownFlushesPendingAndRejectsNewItems(t *testing.T) {
	fn := func(ctx context.Context, items []int, aux struct{}) ([]int, error) {
		return items, nil
	}
	p := New[int, int, struct{}]("shutdown", 100, time.Hour, fn, nopLogger())

	var err error
	done := make(chan struct{})
	go func() {
		_, err = p.Submit(context.Background(), 1, struct{}{})
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	p.Stop()
	<-done
	if err != nil {
		t.Fatalf("pending item should be flushed on shutdown, got error: %v", err)
	}

	_, err2 := p.Submit(context.Background(), 2, struct{}{})
	if !engerr.Is(err2, engerr.KindShutdown) {
		t.Fatalf("expected ShutdownError after Stop, got %v", err2)
	}
}
