package infrastructure

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/AzielCF/az-cube/timer/domain"
)

// LoopScheduler fires callbacks through post, so they run on the session loop.
// A fire that is already queued when its registration is cancelled is dropped.
type LoopScheduler struct {
	post func(func()) bool
}

func NewLoopScheduler(post func(func()) bool) *LoopScheduler {
	return &LoopScheduler{post: post}
}

func (l *LoopScheduler) After(d time.Duration, fn func()) domain.Cancel {
	var cancelled atomic.Bool
	t := time.AfterFunc(d, func() {
		l.post(func() {
			if !cancelled.Load() {
				fn()
			}
		})
	})
	var once sync.Once
	return func() {
		once.Do(func() {
			cancelled.Store(true)
			t.Stop()
		})
	}
}

func (l *LoopScheduler) Every(d time.Duration, fn func()) domain.Cancel {
	var cancelled atomic.Bool
	stop := make(chan struct{})
	ticker := time.NewTicker(d)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				ok := l.post(func() {
					if !cancelled.Load() {
						fn()
					}
				})
				if !ok {
					return
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancelled.Store(true)
			close(stop)
		})
	}
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
