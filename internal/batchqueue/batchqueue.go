// Package batchqueue is the general-purpose coalescing queue (spec §4.2):
// many single-item submissions are turned into size/time-bounded batches
// dispatched to a caller-supplied batch function, with per-item result
// routing back to each submitter.
//
// Grounded on the teacher's single-owner background-task idiom in
// pkg/cron/service.go (one goroutine per scheduler, timer-driven,
// mutex-guarded shared state touched only for append/drain/check), adapted
// from a cron job loop to a generic coalescing queue.
package batchqueue

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hanzidojo/engine/internal/engerr"
)

// BatchFunc processes a coalesced batch of items (plus the head item's
// auxiliary arguments, spec §4.2's documented caveat) and must return a
// result slice of equal length, in the same order as items.
type BatchFunc[T any, R any, A any] func(ctx context.Context, items []T, aux A) ([]R, error)

type job[T any, R any, A any] struct {
	item      T
	aux       A
	enqueued  time.Time
	resultCh  chan result[R]
	ctx       context.Context
}

type result[R any] struct {
	value R
	err   error
}

// Processor is a named batching queue bound to one BatchFunc.
type Processor[T any, R any, A any] struct {
	name      string
	batchSize int
	maxWait   time.Duration
	fn        BatchFunc[T, R, A]
	log       zerolog.Logger

	mu       sync.Mutex
	queue    []*job[T, R, A]
	timer    *time.Timer
	timerSet bool
	stopped  bool
	stopCh   chan struct{}
	wakeCh   chan struct{}
	doneCh   chan struct{}
}

// New creates a processor and starts its background dispatch loop. There
// should be exactly one Processor per AI kind in the application (design
// note "Global queue manager": an explicit value owned by the controller,
// not package-level mutable state); creating two for the same purpose is
// the caller's mistake, not something this type prevents.
func New[T any, R any, A any](name string, batchSize int, maxWait time.Duration, fn BatchFunc[T, R, A], log zerolog.Logger) *Processor[T, R, A] {
	p := &Processor[T, R, A]{
		name:      name,
		batchSize: batchSize,
		maxWait:   maxWait,
		fn:        fn,
		log:       log.With().Str("processor", name).Logger(),
		stopCh:    make(chan struct{}),
		wakeCh:    make(chan struct{}, 1),
		doneCh:    make(chan struct{}),
	}
	go p.run()
	return p
}

// Submit enqueues a single item and blocks until its batch fires (or ctx
// is canceled, or the processor shuts down). aux carries the caller's
// auxiliary arguments; only the head-of-queue job's aux is actually used
// once a batch dispatches (spec §4.2).
func (p *Processor[T, R, A]) Submit(ctx context.Context, item T, aux A) (R, error) {
	var zero R

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return zero, engerr.NewShutdownError()
	}
	j := &job[T, R, A]{item: item, aux: aux, enqueued: time.Now(), resultCh: make(chan result[R], 1), ctx: ctx}
	p.queue = append(p.queue, j)
	p.mu.Unlock()

	p.nudge()

	select {
	case res := <-j.resultCh:
		return res.value, res.err
	case <-ctx.Done():
		p.removeJob(j)
		return zero, ctx.Err()
	}
}

func (p *Processor[T, R, A]) nudge() {
	select {
	case p.wakeCh <- struct{}{}:
	default:
	}
}

func (p *Processor[T, R, A]) removeJob(target *job[T, R, A]) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, j := range p.queue {
		if j == target {
			p.queue = append(p.queue[:i], p.queue[i+1:]...)
			return
		}
	}
}

// Flush drains the queue immediately, dispatching whatever is queued right
// now regardless of wait thresholds, in batches of at most batch_size
// (spec §4.2).
func (p *Processor[T, R, A]) Flush() {
	for {
		p.mu.Lock()
		batch := p.drainLocked()
		p.mu.Unlock()
		if len(batch) == 0 {
			return
		}
		p.dispatch(batch)
	}
}

// Stop accepts no new items (Submit then fails with ShutdownError) and
// flushes whatever is pending once more, in batches of at most batch_size,
// before returning (spec §4.2).
func (p *Processor[T, R, A]) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()
	close(p.stopCh)
	<-p.doneCh
}

func (p *Processor[T, R, A]) drainLocked() []*job[T, R, A] {
	if len(p.queue) == 0 {
		return nil
	}
	n := len(p.queue)
	if n > p.batchSize {
		n = p.batchSize
	}
	batch := p.queue[:n]
	p.queue = p.queue[n:]
	return batch
}

func (p *Processor[T, R, A]) run() {
	defer close(p.doneCh)
	for {
		wait := p.nextWait()
		select {
		case <-p.wakeCh:
		case <-time.After(wait):
		case <-p.stopCh:
			p.drainAndShutdown()
			return
		}
		p.drainReadyBatches()
	}
}

// nextWait returns how long to sleep before re-checking the queue: the
// remaining time until the head item's max_wait elapses, or an hour if the
// queue is empty (the next Submit's nudge wakes the loop sooner).
func (p *Processor[T, R, A]) nextWait() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.queue) == 0 {
		return time.Hour // woken by nudge() on the next Submit
	}
	age := time.Since(p.queue[0].enqueued)
	remaining := p.maxWait - age
	if remaining <= 0 {
		return 0
	}
	return remaining
}

// drainReadyBatches fires every batch that has reached batch_size or whose
// head-of-queue item has waited max_wait, looping since a single dispatch
// may leave another full batch immediately ready.
func (p *Processor[T, R, A]) drainReadyBatches() {
	for {
		p.mu.Lock()
		if len(p.queue) == 0 {
			p.mu.Unlock()
			return
		}
		ready := len(p.queue) >= p.batchSize || time.Since(p.queue[0].enqueued) >= p.maxWait
		if !ready {
			p.mu.Unlock()
			return
		}
		batch := p.drainLocked()
		p.mu.Unlock()
		p.dispatch(batch)
	}
}

func (p *Processor[T, R, A]) drainAndShutdown() {
	for {
		p.mu.Lock()
		batch := p.drainLocked()
		p.mu.Unlock()
		if len(batch) == 0 {
			return
		}
		p.dispatch(batch)
	}
}

// dispatch invokes the batch function and routes results back, isolating
// a panic or error to exactly the waiters in this batch (spec §4.2: "A
// processor never fails globally on a single bad batch").
func (p *Processor[T, R, A]) dispatch(batch []*job[T, R, A]) {
	items := make([]T, len(batch))
	for i, j := range batch {
		items[i] = j.item
	}
	aux := batch[0].aux
	ctx := batch[0].ctx
	if ctx == nil {
		ctx = context.Background()
	}

	results, err := p.invoke(ctx, items, aux)
	if err != nil {
		for _, j := range batch {
			j.resultCh <- result[R]{err: err}
		}
		return
	}

	if len(results) < len(batch) {
		short := len(batch) - len(results)
		p.log.Warn().Int("short_by", short).Msg("batch_fn returned fewer results than items")
		for i, j := range batch {
			if i < len(results) {
				j.resultCh <- result[R]{value: results[i]}
			} else {
				j.resultCh <- result[R]{err: engerr.NewShortBatchError(short)}
			}
		}
		return
	}

	// Truncate extra results (spec §4.2 truncation policy: results are
	// shortened to batch length).
	for i, j := range batch {
		j.resultCh <- result[R]{value: results[i]}
	}
}

// invoke runs fn, converting a panic into an error so one bad batch_fn
// call can't take down the processor's goroutine.
func (p *Processor[T, R, A]) invoke(ctx context.Context, items []T, aux A) (results []R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = engerr.WrapInternalError(nil, "batch_fn panicked: %v", r)
		}
	}()
	return p.fn(ctx, items, aux)
}
