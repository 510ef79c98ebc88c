package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/AzielCF/az-cube/core/config"
	settingsApp "github.com/AzielCF/az-cube/core/settings/application"
	settingsDomain "github.com/AzielCF/az-cube/core/settings/domain"
	storageDomain "github.com/AzielCF/az-cube/core/storage/domain"
	storageInfra "github.com/AzielCF/az-cube/core/storage/infrastructure"
	cubeApp "github.com/AzielCF/az-cube/cube/application"
	domainSolve "github.com/AzielCF/az-cube/domains/solve"
	domainTimer "github.com/AzielCF/az-cube/domains/timer"
	pkgError "github.com/AzielCF/az-cube/pkg/error"
	"github.com/AzielCF/az-cube/pkg/metrics"
	timerApp "github.com/AzielCF/az-cube/timer/application"
	timerDomain "github.com/AzielCF/az-cube/timer/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeHistory struct {
	mu      sync.Mutex
	order   []string
	byID    map[string]timerDomain.SolveRecord
	submits int
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{byID: map[string]timerDomain.SolveRecord{}}
}

func (f *fakeHistory) InitSchema(ctx context.Context) error { return nil }

func (f *fakeHistory) Submit(ctx context.Context, req domainSolve.SubmitRequest) (timerDomain.SolveRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits++
	rec := timerDomain.SolveRecord{ID: req.ID, Time: req.Time, Scramble: req.Scramble, DNF: req.DNF, Plus2: req.Plus2}
	if req.Timestamp != nil {
		rec.Timestamp = *req.Timestamp
	}
	if _, ok := f.byID[req.ID]; !ok {
		f.order = append(f.order, req.ID)
	}
	f.byID[req.ID] = rec
	return rec, nil
}

func (f *fakeHistory) List(ctx context.Context) ([]timerDomain.SolveRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]timerDomain.SolveRecord, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.byID[id])
	}
	return out, nil
}

func (f *fakeHistory) DeleteAt(ctx context.Context, index int) error { return nil }

func (f *fakeHistory) DeleteMany(ctx context.Context, indices []int) (int, error) { return 0, nil }

func (f *fakeHistory) DeleteAll(ctx context.Context) (int, error) { return 0, nil }

func (f *fakeHistory) Stats(ctx context.Context) (domainSolve.Stats, error) { return domainSolve.Stats{}, nil }

func (f *fakeHistory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submits
}

type timerFixture struct {
	svc     *timerService
	store   *settingsApp.Store
	storage *storageInfra.MemoryStorage
	history *fakeHistory
	metrics *metrics.Registry
}

func newTimerFixture(t *testing.T, storage *storageInfra.MemoryStorage) *timerFixture {
	t.Helper()
	if storage == nil {
		storage = storageInfra.NewMemoryStorage()
	}
	store := settingsApp.NewStore(storage, nil, "test")
	store.Load(context.Background())
	require.NoError(t, store.Set(context.Background(), settingsDomain.KeyHoldToStart, false))

	f := &timerFixture{
		store:   store,
		storage: storage,
		history: newFakeHistory(),
		metrics: metrics.NewRegistry(),
	}
	f.svc = NewTimerService(TimerDeps{
		Config:    config.TimerConfig{HoldDebounceMs: 100, InspectionSeconds: 15, RenderIntervalMs: 10, RecentLimit: 100},
		Remote:    config.RemoteConfig{TimeoutMs: 1000},
		Settings:  store,
		Storage:   storage,
		History:   f.history,
		Scrambles: NewScrambleService(cubeApp.NewGenerator(), config.RemoteConfig{}, nil),
		Metrics:   f.metrics,
	})
	return f
}

func (f *timerFixture) start(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	f.svc.Start(ctx)
	t.Cleanup(func() {
		cancel()
		<-f.svc.Done()
	})
}

// solveOnce runs a full attempt: press to start, release, press to stop.
func (f *timerFixture) solveOnce(t *testing.T) timerDomain.Snapshot {
	t.Helper()
	ctx := context.Background()
	snap, err := f.svc.KeyDown(ctx)
	require.NoError(t, err)
	require.Equal(t, timerDomain.StateRunning, snap.State)
	_, err = f.svc.KeyUp(ctx)
	require.NoError(t, err)
	snap, err = f.svc.KeyDown(ctx)
	require.NoError(t, err)
	_, err = f.svc.KeyUp(ctx)
	require.NoError(t, err)
	return snap
}

func TestTimerService_RecordsAndPersists(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	f := newTimerFixture(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	f.svc.Start(ctx)
	defer func() {
		cancel()
		<-f.svc.Done()
	}()

	assert.Eventually(t, func() bool {
		snap, err := f.svc.Snapshot(context.Background())
		return err == nil && snap.Scramble != ""
	}, time.Second, 10*time.Millisecond)

	snap := f.solveOnce(t)
	assert.Equal(t, timerDomain.StateIdle, snap.State)

	recent, err := f.svc.Recent(context.Background())
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.NotEmpty(t, recent[0].ID)
	assert.False(t, recent[0].DNF)

	raw, ok, err := f.storage.Get(context.Background(), storageDomain.KeyRecentSolves)
	require.NoError(t, err)
	require.True(t, ok)
	var persisted []timerDomain.SolveRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &persisted))
	assert.Equal(t, recent[0].ID, persisted[0].ID)

	assert.Equal(t, 1, f.history.count())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.SolvesRecorded.WithLabelValues("none")))
}

func TestTimerService_PenaltiesAndDelete(t *testing.T) {
	f := newTimerFixture(t, nil)
	f.start(t)
	ctx := context.Background()

	var notFound pkgError.NotFoundError
	var validation pkgError.ValidationError

	_, err := f.svc.TogglePenalty(ctx, domainTimer.PenaltyPlus2)
	assert.ErrorAs(t, err, &notFound)

	f.solveOnce(t)

	rec, err := f.svc.TogglePenalty(ctx, domainTimer.PenaltyPlus2)
	require.NoError(t, err)
	assert.True(t, rec.Plus2)

	rec, err = f.svc.TogglePenalty(ctx, domainTimer.PenaltyDNF)
	require.NoError(t, err)
	assert.True(t, rec.DNF)
	assert.False(t, rec.Plus2)

	_, err = f.svc.TogglePenalty(ctx, "minus2")
	assert.ErrorAs(t, err, &validation)

	// corrections are upserts of the same solve
	history, err := f.history.List(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].DNF)
	assert.Equal(t, 3, f.history.count())

	stats, err := f.svc.RecentStats(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.DNFCount)
	assert.Equal(t, 5, stats.N)

	_, err = f.svc.DeleteLast(ctx)
	require.NoError(t, err)
	_, err = f.svc.DeleteLast(ctx)
	assert.ErrorAs(t, err, &notFound)
}

func TestTimerService_RestoresRecentOnStart(t *testing.T) {
	storage := storageInfra.NewMemoryStorage()
	saved := []timerDomain.SolveRecord{{ID: "b", Time: 11}, {ID: "a", Time: 12}}
	data, err := json.Marshal(saved)
	require.NoError(t, err)
	require.NoError(t, storage.Set(context.Background(), storageDomain.KeyRecentSolves, string(data)))

	f := newTimerFixture(t, storage)
	f.start(t)

	recent, err := f.svc.Recent(context.Background())
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "b", recent[0].ID)
}

func TestTimerService_CorruptRecentStartsEmpty(t *testing.T) {
	storage := storageInfra.NewMemoryStorage()
	require.NoError(t, storage.Set(context.Background(), storageDomain.KeyRecentSolves, "{oops"))

	f := newTimerFixture(t, storage)
	f.start(t)

	recent, err := f.svc.Recent(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestTimerService_FollowsSettings(t *testing.T) {
	f := newTimerFixture(t, nil)
	f.start(t)
	ctx := context.Background()

	require.NoError(t, f.store.Set(ctx, settingsDomain.KeyInspection, true))
	assert.Eventually(t, func() bool {
		var inspection bool
		err := f.svc.session.Do(ctx, func(*timerApp.SolveTimer) {
			inspection = f.svc.source.AttemptSettings().Inspection
		})
		return err == nil && inspection
	}, time.Second, 10*time.Millisecond)

	snap, err := f.svc.KeyDown(ctx)
	require.NoError(t, err)
	assert.Equal(t, timerDomain.StateInspecting, snap.State)
	assert.Equal(t, 15, snap.Remaining)

	require.NoError(t, f.svc.Reset(ctx))
	snap, err = f.svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, timerDomain.StateIdle, snap.State)
}

func TestTimerService_ScrambleControl(t *testing.T) {
	f := newTimerFixture(t, nil)
	f.start(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SetScramble(ctx, "  R   U  R' "))
	snap, err := f.svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "R U R'", snap.Scramble)

	var validation pkgError.ValidationError
	assert.ErrorAs(t, f.svc.SetScramble(ctx, "   "), &validation)

	require.NoError(t, f.svc.NewScramble(ctx))
	assert.Eventually(t, func() bool {
		snap, err := f.svc.Snapshot(ctx)
		return err == nil && snap.Scramble != "R U R'"
	}, time.Second, 10*time.Millisecond)
}

func TestTimerService_Subscribe(t *testing.T) {
	f := newTimerFixture(t, nil)
	events, cancel := f.svc.Subscribe()
	defer cancel()
	f.start(t)

	f.solveOnce(t)

	deadline := time.After(time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Type == timerDomain.EventRecorded {
				require.NotNil(t, ev.Record)
				return
			}
		case <-deadline:
			t.Fatal("no recorded event")
		}
	}
}

func TestTimerService_ExportImport(t *testing.T) {
	f := newTimerFixture(t, nil)
	f.start(t)
	ctx := context.Background()

	ts := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	dump := domainTimer.Export{
		Version:  ExportVersion,
		Settings: map[string]any{settingsDomain.KeyDarkMode: true},
		Recent: []timerDomain.SolveRecord{
			{ID: "r2", Time: 10.5, Timestamp: ts},
			{ID: "r1", Time: 11.25, Plus2: true, Timestamp: ts},
		},
		History: []timerDomain.SolveRecord{{ID: "h1", Time: 9.8, Timestamp: ts}},
	}
	require.NoError(t, f.svc.Import(ctx, dump))

	assert.Equal(t, "dark", f.store.Effective().Theme)

	out, err := f.svc.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExportVersion, out.Version)
	require.Len(t, out.Recent, 2)
	assert.Equal(t, "r2", out.Recent[0].ID)
	require.Len(t, out.History, 1)
	assert.Equal(t, "h1", out.History[0].ID)
	assert.Equal(t, true, out.Settings[settingsDomain.KeyDarkMode])

	raw, ok, err := f.storage.Get(ctx, storageDomain.KeyRecentSolves)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, "r1")

	var validation pkgError.ValidationError
	assert.ErrorAs(t, f.svc.Import(ctx, domainTimer.Export{Version: "99"}), &validation)
}
