package api

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPoolFastSlots(t *testing.T) {
	pool := NewWorkerPool(PoolConfig{MaxFastWorkers: 2, MaxSlowWorkers: 1})

	require.NoError(t, pool.AcquireFast(context.Background()))
	assert.Equal(t, int64(1), pool.Stats().ActiveFast)

	pool.ReleaseFast()
	stats := pool.Stats()
	assert.Zero(t, stats.ActiveFast)
	assert.Equal(t, int64(1), stats.TotalFast)
}

func TestWorkerPoolSearchSlotsBlockWhenFull(t *testing.T) {
	pool := NewWorkerPool(PoolConfig{MaxFastWorkers: 10, MaxSlowWorkers: 2})
	ctx := context.Background()

	require.NoError(t, pool.AcquireSlow(ctx))
	require.NoError(t, pool.AcquireSlow(ctx))
	assert.Equal(t, int64(2), pool.Stats().ActiveSlow)

	timeout, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, pool.AcquireSlow(timeout), context.DeadlineExceeded)

	pool.ReleaseSlow()
	pool.ReleaseSlow()
	assert.Equal(t, int64(2), pool.Stats().TotalSlow)
}

func TestWorkerPoolContextCancellation(t *testing.T) {
	pool := NewWorkerPool(PoolConfig{MaxFastWorkers: 1, MaxSlowWorkers: 1})
	require.NoError(t, pool.AcquireFast(context.Background()))

	cancelCtx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, pool.AcquireFast(cancelCtx), context.Canceled)
	assert.Zero(t, pool.Stats().QueuedFast)

	pool.ReleaseFast()
}

func TestWorkerPoolConcurrency(t *testing.T) {
	pool := NewWorkerPool(PoolConfig{MaxFastWorkers: 10, MaxSlowWorkers: 2})

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		running int
		peak    int
	)
	ctx := context.Background()

	// Launch 8 searches - only 2 may run concurrently
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := pool.AcquireSlow(ctx); err != nil {
				t.Errorf("acquire slow: %v", err)
				return
			}
			mu.Lock()
			running++
			if running > peak {
				peak = running
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			running--
			mu.Unlock()
			pool.ReleaseSlow()
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak, 2)
	assert.Equal(t, int64(8), pool.Stats().TotalSlow)
}

func TestWorkerPoolDefaults(t *testing.T) {
	stats := NewWorkerPool(PoolConfig{}).Stats()
	assert.Equal(t, DefaultPoolConfig().MaxFastWorkers, stats.MaxFast)
	assert.Equal(t, DefaultPoolConfig().MaxSlowWorkers, stats.MaxSlow)
}
