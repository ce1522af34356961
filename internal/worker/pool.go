package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Task is one unit of work executed by the pool. Tasks must capture their
// own error handling; nothing is returned across the pool boundary.
type Task func(ctx context.Context)

// Pool is a bounded concurrent executor: a fixed number of worker
// goroutines draining a buffered task channel.
//
// Saturation policy: when the queue is full, Submit runs the task on the
// calling goroutine instead of dropping it. A notification is never lost
// under load — latency degrades instead.
//
// Two instances are wired at startup: a primary pool for fresh sends and a
// smaller one for scheduled retries, so a retry storm cannot starve live
// traffic.
type Pool struct {
	name    string
	tasks   chan Task
	workers int
	logger  *zap.Logger

	mu     sync.RWMutex
	closed bool

	g *errgroup.Group
}

func NewPool(name string, workers, queueSize int, logger *zap.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		name:    name,
		tasks:   make(chan Task, queueSize),
		workers: workers,
		logger:  logger.With(zap.String("pool", name)),
	}
}

// Start launches the worker goroutines. ctx is forwarded to every task;
// it is not used to abort the drain loop — Shutdown owns that.
func (p *Pool) Start(ctx context.Context) {
	p.g, _ = errgroup.WithContext(ctx)
	for i := 0; i < p.workers; i++ {
		id := i
		p.g.Go(func() error {
			p.logger.Debug("worker started", zap.Int("worker_id", id))
			for task := range p.tasks {
				task(ctx)
			}
			p.logger.Debug("worker stopped", zap.Int("worker_id", id))
			return nil
		})
	}
}

// Submit hands a task to the pool. If the queue is full, or the pool has
// already begun shutting down, the task runs synchronously on the caller's
// goroutine.
func (p *Pool) Submit(ctx context.Context, task Task) {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		task(ctx)
		return
	}

	select {
	case p.tasks <- task:
		p.mu.RUnlock()
	default:
		p.mu.RUnlock()
		p.logger.Debug("queue saturated: executing on caller goroutine")
		task(ctx)
	}
}

// QueueDepth returns the number of tasks waiting in the queue.
func (p *Pool) QueueDepth() int {
	return len(p.tasks)
}

// Shutdown stops intake and drains queued work. If the drain has not
// finished within grace, remaining workers are abandoned (their tasks keep
// the context they were started with and will observe its cancellation).
func (p *Pool) Shutdown(grace time.Duration) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		_ = p.g.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("pool drained")
	case <-time.After(grace):
		p.logger.Warn("pool shutdown grace period elapsed; abandoning in-flight work",
			zap.Duration("grace", grace))
	}
}
