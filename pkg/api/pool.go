package api

import (
	"context"
	"sync/atomic"
)

// WorkerPool bounds how many requests run at once.
// Fast slots cover cheap rule queries (legal, apply, evaluate); slow slots
// cover minimax searches, whose cost grows exponentially with depth.
type WorkerPool struct {
	fastSem    chan struct{}
	slowSem    chan struct{}
	queuedFast atomic.Int64
	queuedSlow atomic.Int64
	activeFast atomic.Int64
	activeSlow atomic.Int64
	totalFast  atomic.Int64
	totalSlow  atomic.Int64
}

// PoolConfig configures the worker pool.
type PoolConfig struct {
	MaxFastWorkers int // Max concurrent rule queries (default: 100)
	MaxSlowWorkers int // Max concurrent searches (default: 4)
}

// DefaultPoolConfig returns a PoolConfig with sensible defaults.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxFastWorkers: 100,
		MaxSlowWorkers: 4,
	}
}

// NewWorkerPool creates a new worker pool. Non-positive limits use the defaults.
func NewWorkerPool(config PoolConfig) *WorkerPool {
	defaults := DefaultPoolConfig()
	if config.MaxFastWorkers <= 0 {
		config.MaxFastWorkers = defaults.MaxFastWorkers
	}
	if config.MaxSlowWorkers <= 0 {
		config.MaxSlowWorkers = defaults.MaxSlowWorkers
	}

	return &WorkerPool{
		fastSem: make(chan struct{}, config.MaxFastWorkers),
		slowSem: make(chan struct{}, config.MaxSlowWorkers),
	}
}

func acquire(ctx context.Context, sem chan struct{}, queued, active *atomic.Int64) error {
	queued.Add(1)
	defer queued.Add(-1)

	select {
	case sem <- struct{}{}:
		active.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func release(sem chan struct{}, active, total *atomic.Int64) {
	active.Add(-1)
	total.Add(1)
	<-sem
}

// AcquireFast waits for a rule-query slot.
// Returns an error if the context is cancelled while waiting.
func (p *WorkerPool) AcquireFast(ctx context.Context) error {
	return acquire(ctx, p.fastSem, &p.queuedFast, &p.activeFast)
}

// ReleaseFast releases a rule-query slot.
func (p *WorkerPool) ReleaseFast() {
	release(p.fastSem, &p.activeFast, &p.totalFast)
}

// AcquireSlow waits for a search slot.
// Returns an error if the context is cancelled while waiting.
func (p *WorkerPool) AcquireSlow(ctx context.Context) error {
	return acquire(ctx, p.slowSem, &p.queuedSlow, &p.activeSlow)
}

// ReleaseSlow releases a search slot.
func (p *WorkerPool) ReleaseSlow() {
	release(p.slowSem, &p.activeSlow, &p.totalSlow)
}

// PoolStats is a snapshot of pool usage.
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
		ActiveFast: p.activeFast.Load(),
		ActiveSlow: p.activeSlow.Load(),
		QueuedFast: p.queuedFast.Load(),
		QueuedSlow: p.queuedSlow.Load(),
		TotalFast:  p.totalFast.Load(),
		TotalSlow:  p.totalSlow.Load(),
		MaxFast:    cap(p.fastSem),
		MaxSlow:    cap(p.slowSem),
	}
}
