package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Dispatch must return immediately even when the job is slow
func TestPool_DispatchNonBlocking(t *testing.T) {
	pool := NewPool(2, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool.Start(ctx)
	defer pool.Stop()

	start := time.Now()
	pool.Dispatch(Job{
		Key: "solves",
		Handler: func(ctx context.Context) error {
			time.Sleep(100 * time.Millisecond)
			return nil
		},
	})
	assert.Less(t, time.Since(start), 10*time.Millisecond)
}

// Jobs sharing a key keep their order
func TestPool_SameKeySequentialProcessing(t *testing.T) {
	pool := NewPool(4, 100)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool.Start(ctx)

	var results []int
	var mu sync.Mutex
	for i := 1; i <= 5; i++ {
		val := i
		pool.Dispatch(Job{
			Key: "recent",
			Handler: func(ctx context.Context) error {
				time.Sleep(5 * time.Millisecond)
				mu.Lock()
				results = append(results, val)
				mu.Unlock()
				return nil
			},
		})
	}

	pool.Stop()

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []int{1, 2, 3, 4, 5}, results)
}

// Concurrency never exceeds the number of workers
func TestPool_RespectsMaxWorkers(t *testing.T) {
	maxWorkers := 3
	pool := NewPool(maxWorkers, 100)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool.Start(ctx)

	var activeCount, maxActive int32
	for i := 0; i < 10; i++ {
		pool.Dispatch(Job{
			Key: fmt.Sprintf("key-%d", i),
			Handler: func(ctx context.Context) error {
				current := atomic.AddInt32(&activeCount, 1)
				for {
					m := atomic.LoadInt32(&maxActive)
					if current <= m || atomic.CompareAndSwapInt32(&maxActive, m, current) {
						break
					}
				}
				time.Sleep(20 * time.Millisecond)
				atomic.AddInt32(&activeCount, -1)
				return nil
			},
		})
	}

	pool.Stop()
	assert.LessOrEqual(t, atomic.LoadInt32(&maxActive), int32(maxWorkers))
}

// Stop lets queued jobs finish
func TestPool_GracefulShutdown(t *testing.T) {
	pool := NewPool(2, 10)
	pool.Start(context.Background())

	var completed int32
	for i := 0; i < 4; i++ {
		pool.Dispatch(Job{
			Key: fmt.Sprintf("k%d", i),
			Handler: func(ctx context.Context) error {
				time.Sleep(10 * time.Millisecond)
				atomic.AddInt32(&completed, 1)
				return nil
			},
		})
	}
	pool.Stop()
	pool.Stop()

	assert.Equal(t, int32(4), atomic.LoadInt32(&completed))
	assert.False(t, pool.TryDispatch(Job{Key: "late", Handler: func(context.Context) error { return nil }}))
}

func TestPool_DropsBeforeStart(t *testing.T) {
	pool := NewPool(1, 1)
	assert.False(t, pool.TryDispatch(Job{Key: "x", Handler: func(context.Context) error { return nil }}))
	assert.Equal(t, int64(1), pool.GetStats().TotalDropped)
	pool.Stop()
}

func TestPool_ErrorsAndPanicsAreCounted(t *testing.T) {
	pool := NewPool(1, 10)
	var mu sync.Mutex
	var outcomes []error
	pool.OnJobDone = func(key string, err error) {
		mu.Lock()
		outcomes = append(outcomes, err)
		mu.Unlock()
	}
	pool.Start(context.Background())

	pool.Dispatch(Job{Key: "a", Handler: func(context.Context) error { return errors.New("boom") }})
	pool.Dispatch(Job{Key: "a", Handler: func(context.Context) error { panic("bad") }})
	pool.Dispatch(Job{Key: "a", Handler: func(context.Context) error { return nil }})
	pool.Stop()

	stats := pool.GetStats()
	assert.Equal(t, int64(3), stats.TotalDispatched)
	assert.Equal(t, int64(3), stats.TotalProcessed)
	assert.Equal(t, int64(2), stats.TotalErrors)
	assert.Len(t, stats.WorkerStats, 1)
	assert.Len(t, outcomes, 3)
}

func TestPool_ConsistentHashing(t *testing.T) {
	pool := NewPool(4, 100)
	shard := pool.shardFor("recentSolves")
	assert.Equal(t, shard, pool.shardFor("recentSolves"))
	assert.GreaterOrEqual(t, shard, 0)
	assert.Less(t, shard, 4)

	counts := make(map[int]int)
	for i := 0; i < 100; i++ {
		counts[pool.shardFor(fmt.Sprintf("solve-%d", i))]++
	}
	for s, c := range counts {
		assert.Greater(t, c, 10, "shard %d", s)
	}
}
