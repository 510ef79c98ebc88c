package application

import (
	"context"
	"errors"

	"github.com/AzielCF/az-cube/timer/domain"
)

var ErrSessionClosed = errors.New("timer session closed")

// Session owns a SolveTimer and runs everything that touches it on one goroutine.
// Key events from handlers, scheduler fires and scramble deliveries are all posted
// into the same queue.
type Session struct {
	queue chan func()
	done  chan struct{}
	timer *SolveTimer
}

// NewSession builds the timer through build, handing it the function that posts work
// into the loop. post reports false once the loop has stopped.
func NewSession(queueSize int, build func(post func(func()) bool) *SolveTimer) *Session {
	if queueSize <= 0 {
		queueSize = 64
	}
	s := &Session{
		queue: make(chan func(), queueSize),
		done:  make(chan struct{}),
	}
	s.timer = build(s.Post)
	return s
}

// Run drains the queue until ctx is done. On exit the timer is reset so no
// scheduled callback outlives the loop.
func (s *Session) Run(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			s.timer.Reset()
			return
		case fn := <-s.queue:
			fn()
		}
	}
}

// Done is closed once Run has returned.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Post enqueues fn without waiting for it to run.
func (s *Session) Post(fn func()) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.queue <- fn:
		return true
	case <-s.done:
		return false
	}
}

// Do runs fn on the loop and waits for it.
func (s *Session) Do(ctx context.Context, fn func(t *SolveTimer)) error {
	finished := make(chan struct{})
	if !s.Post(func() {
		defer close(finished)
		fn(s.timer)
	}) {
		return ErrSessionClosed
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return ErrSessionClosed
	}
}

func (s *Session) KeyDown(ctx context.Context) error {
	return s.Do(ctx, (*SolveTimer).KeyDown)
}

func (s *Session) KeyUp(ctx context.Context) error {
	return s.Do(ctx, (*SolveTimer).KeyUp)
}

func (s *Session) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	var snap domain.Snapshot
	err := s.Do(ctx, func(t *SolveTimer) {
		snap = t.Snapshot()
	})
	return snap, err
}
