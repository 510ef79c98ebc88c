package application

import (
	"context"
	"testing"
	"time"

	"github.com/AzielCF/az-cube/timer/domain"
	"github.com/AzielCF/az-cube/timer/infrastructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func newRealSession(settings *fakeSettings) *Session {
	return NewSession(16, func(post func(func()) bool) *SolveTimer {
		return NewSolveTimer(
			infrastructure.NewLoopScheduler(post),
			infrastructure.SystemClock{},
			settings,
			WithHoldDebounce(20*time.Millisecond),
			WithRenderInterval(5*time.Millisecond),
		)
	})
}

func waitForState(t *testing.T, ctx context.Context, sess *Session, want domain.State) {
	t.Helper()
	require.Eventually(t, func() bool {
		snap, err := sess.Snapshot(ctx)
		return err == nil && snap.State == want
	}, 2*time.Second, 5*time.Millisecond)
}

func TestSession_HoldToStartAttempt(t *testing.T) {
	defer goleak.VerifyNone(t)

	sess := newRealSession(&fakeSettings{s: domain.AttemptSettings{HoldToStart: true}})
	ctx, cancel := context.WithCancel(context.Background())
	go sess.Run(ctx)

	require.NoError(t, sess.KeyDown(ctx))
	waitForState(t, ctx, sess, domain.StateRunning)
	require.NoError(t, sess.KeyUp(ctx))
	time.Sleep(30 * time.Millisecond)
	require.NoError(t, sess.KeyDown(ctx))

	var records []domain.SolveRecord
	require.NoError(t, sess.Do(ctx, func(st *SolveTimer) {
		records = st.Log().Records()
	}))
	require.Len(t, records, 1)
	assert.GreaterOrEqual(t, records[0].Time, 0.03)

	cancel()
	<-sess.Done()
}

func TestSession_ShutdownDuringInspectionStopsTicks(t *testing.T) {
	defer goleak.VerifyNone(t)

	sess := newRealSession(&fakeSettings{s: domain.AttemptSettings{Inspection: true}})
	ctx, cancel := context.WithCancel(context.Background())
	go sess.Run(ctx)

	require.NoError(t, sess.KeyDown(ctx))
	waitForState(t, ctx, sess, domain.StateInspecting)

	cancel()
	<-sess.Done()

	assert.ErrorIs(t, sess.KeyUp(context.Background()), ErrSessionClosed)
	assert.False(t, sess.Post(func() {}))
}

func TestSession_DoHonoursContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	sess := newRealSession(&fakeSettings{})
	// loop not running: the queued call never completes
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, sess.KeyDown(ctx), context.DeadlineExceeded)
}
