// Package pool provides a fixed-size pool of concurrent producers feeding
// a bounded result buffer.
//
// Producers pull tasks from a shared work queue, execute them, and deposit
// outcomes into the result buffer. Completion order is not guaranteed to
// match submission order. Producers block once the result buffer is full;
// Get blocks while it is empty. This is the classic bounded
// producer/consumer discipline.
package pool

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// ErrStopped is returned by Submit and Get after the pool has been
// stopped.
var ErrStopped = errors.New("pool: stopped")

// Task is one unit of work. The error it returns is delivered to the
// consumer through Get; the pool never retries a task.
type Task[R any] func(ctx context.Context) (R, error)

type outcome[R any] struct {
	value R
	err   error
}

// ProducerPool runs numWorkers concurrent producers over a shared work
// queue and a result buffer of capacity cacheSize.
type ProducerPool[R any] struct {
	numWorkers int
	work       chan Task[R]
	results    chan outcome[R]
	stopCh     chan struct{}

	group  *errgroup.Group
	cancel context.CancelFunc

	started  atomic.Bool
	stopped  atomic.Bool
	submitMu sync.RWMutex
}

// New creates a pool with numWorkers producers and a result buffer of
// capacity cacheSize. numWorkers <= 0 defaults to GOMAXPROCS; cacheSize
// <= 0 defaults to numWorkers.
func New[R any](numWorkers, cacheSize int) *ProducerPool[R] {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	if cacheSize <= 0 {
		cacheSize = numWorkers
	}
	return &ProducerPool[R]{
		numWorkers: numWorkers,
		work:       make(chan Task[R]),
		results:    make(chan outcome[R], cacheSize),
		stopCh:     make(chan struct{}),
	}
}

// NumWorkers returns the number of producers.
func (p *ProducerPool[R]) NumWorkers() int {
	return p.numWorkers
}

// Start launches the producers. It is idempotent. The context bounds the
// lifetime of the whole pool: cancelling it discards in-flight work.
func (p *ProducerPool[R]) Start(ctx context.Context) {
	if !p.started.CompareAndSwap(false, true) {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	g, ctx := errgroup.WithContext(ctx)
	p.group = g

	for i := 0; i < p.numWorkers; i++ {
		g.Go(func() error {
			return p.produce(ctx)
		})
	}
}

func (p *ProducerPool[R]) produce(ctx context.Context) error {
	for {
		select {
		case task, ok := <-p.work:
			if !ok {
				return nil
			}
			value, err := task(ctx)
			select {
			case p.results <- outcome[R]{value: value, err: err}:
			case <-ctx.Done():
				return ctx.Err()
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Submit enqueues one task. It blocks until a producer accepts the task,
// the context is cancelled, or the pool is stopped.
func (p *ProducerPool[R]) Submit(ctx context.Context, task Task[R]) error {
	p.submitMu.RLock()
	defer p.submitMu.RUnlock()

	if p.stopped.Load() || !p.started.Load() {
		return ErrStopped
	}

	select {
	case p.work <- task:
		return nil
	case <-p.stopCh:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Get blocks until one completed outcome is available and returns it.
// Outcomes arrive in completion order, not submission order. A task's
// error is returned as-is.
func (p *ProducerPool[R]) Get(ctx context.Context) (R, error) {
	var zero R
	select {
	case out, ok := <-p.results:
		if !ok {
			return zero, ErrStopped
		}
		return out.value, out.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Stop shuts the pool down. It is idempotent and safe to call while work
// is still pending: outstanding tasks are discarded and producers exit
// without deadlocking, even when the result buffer is full.
func (p *ProducerPool[R]) Stop() {
	if !p.stopped.CompareAndSwap(false, true) {
		return
	}

	// Unblock any Submit stuck on a send before taking the write lock,
	// otherwise its read lock would never be released.
	close(p.stopCh)

	p.submitMu.Lock()
	close(p.work)
	p.submitMu.Unlock()

	if !p.started.Load() {
		close(p.results)
		return
	}

	// Unblock producers stuck on a full result buffer, then wait them out.
	p.cancel()
	_ = p.group.Wait()
	close(p.results)
}
