package infrastructure

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// inlinePost runs posted work immediately, as if the loop were always idle.
func inlinePost(fn func()) bool {
	fn()
	return true
}

func TestLoopScheduler_After(t *testing.T) {
	s := NewLoopScheduler(inlinePost)

	var fired atomic.Int32
	s.After(5*time.Millisecond, func() { fired.Add(1) })
	cancel := s.After(5*time.Millisecond, func() { fired.Add(100) })
	cancel()
	cancel()

	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestLoopScheduler_EveryStopsOnCancel(t *testing.T) {
	s := NewLoopScheduler(inlinePost)

	var fired atomic.Int32
	cancel := s.Every(2*time.Millisecond, func() { fired.Add(1) })
	require.Eventually(t, func() bool { return fired.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()

	n := fired.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, n, fired.Load())
}

func TestLoopScheduler_EveryExitsWhenLoopCloses(t *testing.T) {
	var closed atomic.Bool
	post := func(fn func()) bool {
		if closed.Load() {
			return false
		}
		fn()
		return true
	}
	s := NewLoopScheduler(post)
	s.Every(time.Millisecond, func() {})
	closed.Store(true)
	// goleak in TestMain verifies the ticker goroutine returned
	time.Sleep(10 * time.Millisecond)
}

func TestAsyncScrambles_DeliversThroughPost(t *testing.T) {
	posted := make(chan func(), 1)
	post := func(fn func()) bool {
		posted <- fn
		return true
	}
	a := NewAsyncScrambles(func(ctx context.Context, length int, cubeType string) string {
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		return cubeType + ":R U"
	}, post, 0)

	var got string
	a.Request(2, "3x3", func(s string) { got = s })
	fn := <-posted
	fn()
	assert.Equal(t, "3x3:R U", got)
}

func TestSystemClock(t *testing.T) {
	assert.WithinDuration(t, time.Now(), SystemClock{}.Now(), time.Second)
}
