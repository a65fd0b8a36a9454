package api

import (
	"context"
	"sync/atomic"
	"time"
)

// Class selects the semaphore an operation runs under.
type Class int

const (
	Fast Class = iota // actions, validate, play
	Slow              // self-play series
)

func (c Class) String() string {
	if c == Slow {
		return "slow"
	}
	return "fast"
}

// WorkerPool limits concurrent request processing. Fast requests touch a
// single position or game; slow requests run whole self-play series.
type WorkerPool struct {
	sems   [2]chan struct{}
	queued [2]int64
	active [2]int64
	total  [2]int64
}

// PoolConfig configures the worker pool.
type PoolConfig struct {
	MaxFastWorkers int // Max concurrent fast operations (default: 100)
	MaxSlowWorkers int // Max concurrent slow operations (default: 4)
}

// DefaultPoolConfig returns a PoolConfig with sensible defaults.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxFastWorkers: 100,
		MaxSlowWorkers: 4,
	}
}

// NewWorkerPool creates a new worker pool with the given configuration.
func NewWorkerPool(config PoolConfig) *WorkerPool {
	def := DefaultPoolConfig()
	if config.MaxFastWorkers <= 0 {
		config.MaxFastWorkers = def.MaxFastWorkers
	}
	if config.MaxSlowWorkers <= 0 {
		config.MaxSlowWorkers = def.MaxSlowWorkers
	}

	p := &WorkerPool{}
	p.sems[Fast] = make(chan struct{}, config.MaxFastWorkers)
	p.sems[Slow] = make(chan struct{}, config.MaxSlowWorkers)
	return p
}

// Acquire takes a slot of the given class, waiting until one is free or
// ctx is done.
func (p *WorkerPool) Acquire(ctx context.Context, class Class) error {
	atomic.AddInt64(&p.queued[class], 1)
	defer atomic.AddInt64(&p.queued[class], -1)

	select {
	case p.sems[class] <- struct{}{}:
		atomic.AddInt64(&p.active[class], 1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquire takes a slot without blocking and reports whether it did.
func (p *WorkerPool) TryAcquire(class Class) bool {
	select {
	case p.sems[class] <- struct{}{}:
		atomic.AddInt64(&p.active[class], 1)
		return true
	default:
		return false
	}
}

// AcquireWithTimeout is Acquire bounded by timeout.
func (p *WorkerPool) AcquireWithTimeout(class Class, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return p.Acquire(ctx, class)
}

// Release frees a slot taken with Acquire or TryAcquire.
func (p *WorkerPool) Release(class Class) {
	atomic.AddInt64(&p.active[class], -1)
	atomic.AddInt64(&p.total[class], 1)
	<-p.sems[class]
}

// PoolStats is a snapshot of the pool counters.
type PoolStats struct {
	ActiveFast int64 `json:"active_fast"`
	ActiveSlow int64 `json:"active_slow"`
	QueuedFast int64 `json:"queued_fast"`
	QueuedSlow int64 `json:"queued_slow"`
	TotalFast  int64 `json:"total_fast"`
	TotalSlow  int64 `json:"total_slow"`
	MaxFast    int   `json:"max_fast"`
	MaxSlow    int   `json:"max_slow"`
}

// Stats returns current pool statistics.
func (p *WorkerPool) Stats() PoolStats {
	return PoolStats{
		ActiveFast: atomic.LoadInt64(&p.active[Fast]),
		ActiveSlow: atomic.LoadInt64(&p.active[Slow]),
		QueuedFast: atomic.LoadInt64(&p.queued[Fast]),
		QueuedSlow: atomic.LoadInt64(&p.queued[Slow]),
		TotalFast:  atomic.LoadInt64(&p.total[Fast]),
		TotalSlow:  atomic.LoadInt64(&p.total[Slow]),
		MaxFast:    cap(p.sems[Fast]),
		MaxSlow:    cap(p.sems[Slow]),
	}
}
