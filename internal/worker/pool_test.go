package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestPoolExecutesTasks(t *testing.T) {
	p := NewPool("test", 4, 16, zap.NewNop())
	p.Start(context.Background())

	var count atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		p.Submit(context.Background(), func(context.Context) {
			count.Add(1)
			wg.Done()
		})
	}
	wg.Wait()
	p.Shutdown(time.Second)

	if got := count.Load(); got != 50 {
		t.Errorf("executed %d tasks, want 50", got)
	}
}

func TestPoolRunsOnCallerWhenSaturated(t *testing.T) {
	p := NewPool("test", 1, 1, zap.NewNop())
	p.Start(context.Background())

	gate := make(chan struct{})
	started := make(chan struct{})

	// Occupy the single worker, then fill the queue.
	p.Submit(context.Background(), func(context.Context) {
		close(started)
		<-gate
	})
	<-started
	p.Submit(context.Background(), func(context.Context) {})

	// Queue full: this task must run synchronously on our goroutine, so the
	// flag is guaranteed set by the time Submit returns.
	ran := false
	p.Submit(context.Background(), func(context.Context) { ran = true })
	if !ran {
		t.Error("saturated Submit did not run the task on the caller's goroutine")
	}

	close(gate)
	p.Shutdown(time.Second)
}

func TestPoolShutdownDrainsQueue(t *testing.T) {
	p := NewPool("test", 2, 32, zap.NewNop())
	p.Start(context.Background())

	var count atomic.Int64
	for i := 0; i < 20; i++ {
		p.Submit(context.Background(), func(context.Context) {
			time.Sleep(time.Millisecond)
			count.Add(1)
		})
	}

	p.Shutdown(5 * time.Second)
	if got := count.Load(); got != 20 {
		t.Errorf("drained %d tasks, want 20", got)
	}
}

func TestPoolSubmitAfterShutdownRunsInline(t *testing.T) {
	p := NewPool("test", 1, 4, zap.NewNop())
	p.Start(context.Background())
	p.Shutdown(time.Second)

	ran := false
	p.Submit(context.Background(), func(context.Context) { ran = true })
	if !ran {
		t.Error("Submit after shutdown did not run the task inline")
	}
}

func TestPoolQueueDepth(t *testing.T) {
	// Unstarted pool: nothing drains the channel, so depth is observable.
	p := NewPool("test", 1, 4, zap.NewNop())
	p.Submit(context.Background(), func(context.Context) {})
	p.Submit(context.Background(), func(context.Context) {})

	if got := p.QueueDepth(); got != 2 {
		t.Errorf("QueueDepth() = %d, want 2", got)
	}
}
