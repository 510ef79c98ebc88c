package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/AzielCF/az-cube/core/config"
	settingsApp "github.com/AzielCF/az-cube/core/settings/application"
	settingsDomain "github.com/AzielCF/az-cube/core/settings/domain"
	storageDomain "github.com/AzielCF/az-cube/core/storage/domain"
	domainScramble "github.com/AzielCF/az-cube/domains/scramble"
	domainSolve "github.com/AzielCF/az-cube/domains/solve"
	domainTimer "github.com/AzielCF/az-cube/domains/timer"
	pkgError "github.com/AzielCF/az-cube/pkg/error"
	"github.com/AzielCF/az-cube/pkg/metrics"
	"github.com/AzielCF/az-cube/pkg/worker"
	timerApp "github.com/AzielCF/az-cube/timer/application"
	timerDomain "github.com/AzielCF/az-cube/timer/domain"
	timerInfra "github.com/AzielCF/az-cube/timer/infrastructure"
	"github.com/sirupsen/logrus"
)

const (
	ExportVersion = "1"

	jobRecentSolves = "recent-solves"
	jobSolveHistory = "solve-history"

	timerEventBuffer = 64
)

// TimerDeps are the collaborators of the timer service. Pool and Metrics are optional:
// without a pool, background jobs run inline.
type TimerDeps struct {
	Config    config.TimerConfig
	Remote    config.RemoteConfig
	Settings  *settingsApp.Store
	Storage   storageDomain.IStorage
	History   domainSolve.ISolveUsecase
	Scrambles domainScramble.IScrambleUsecase
	Pool      *worker.Pool
	Metrics   *metrics.Registry
}

type timerService struct {
	deps    TimerDeps
	session *timerApp.Session
	timer   *timerApp.SolveTimer
	log     *timerApp.SolveLog
	source  *settingsSource

	subMu   sync.Mutex
	subs    map[int]chan timerDomain.Event
	nextSub int
}

// settingsSource caches the attempt settings. It is only touched on the loop.
type settingsSource struct {
	current timerDomain.AttemptSettings
}

func (s *settingsSource) AttemptSettings() timerDomain.AttemptSettings {
	return s.current
}

func attemptSettingsFrom(eff settingsDomain.Effective) timerDomain.AttemptSettings {
	return timerDomain.AttemptSettings{
		Inspection:     eff.Inspection,
		HoldToStart:    eff.HoldToStart,
		Sound:          eff.Sound,
		AutoScramble:   eff.AutoScramble,
		ScrambleLength: eff.ScrambleLength,
		CubeType:       string(eff.CubeType),
	}
}

// historySubmitter forwards records to the solve history off the loop.
type historySubmitter struct {
	svc *timerService
}

func (h historySubmitter) Submit(r timerDomain.SolveRecord) {
	req := submitRequestFrom(r)
	h.svc.background(jobSolveHistory, func(ctx context.Context) error {
		_, err := h.svc.deps.History.Submit(ctx, req)
		return err
	})
}

func submitRequestFrom(r timerDomain.SolveRecord) domainSolve.SubmitRequest {
	req := domainSolve.SubmitRequest{
		ID:       r.ID,
		Time:     r.Time,
		Scramble: r.Scramble,
		DNF:      r.DNF,
		Plus2:    r.Plus2,
	}
	if !r.Timestamp.IsZero() {
		ts := r.Timestamp
		req.Timestamp = &ts
	}
	return req
}

func NewTimerService(deps TimerDeps) *timerService {
	svc := &timerService{
		deps:   deps,
		log:    timerApp.NewSolveLog(deps.Config.RecentLimit),
		source: &settingsSource{current: attemptSettingsFrom(deps.Settings.Effective())},
		subs:   make(map[int]chan timerDomain.Event),
	}
	svc.log.OnChange(svc.saveRecentAsync)

	timeout := time.Duration(deps.Remote.TimeoutMs) * time.Millisecond
	svc.session = timerApp.NewSession(0, func(post func(func()) bool) *timerApp.SolveTimer {
		opts := []timerApp.Option{
			timerApp.WithHoldDebounce(time.Duration(deps.Config.HoldDebounceMs) * time.Millisecond),
			timerApp.WithRenderInterval(time.Duration(deps.Config.RenderIntervalMs) * time.Millisecond),
			timerApp.WithInspection(deps.Config.InspectionSeconds, deps.Config.InspectionOverrunSeconds),
			timerApp.WithLog(svc.log),
			timerApp.WithObserver(svc.observe),
		}
		if deps.Scrambles != nil {
			opts = append(opts, timerApp.WithScrambleSource(timerInfra.NewAsyncScrambles(deps.Scrambles.Fetch, post, timeout)))
		}
		if deps.History != nil {
			opts = append(opts, timerApp.WithSubmitter(historySubmitter{svc: svc}))
		}
		svc.timer = timerApp.NewSolveTimer(timerInfra.NewLoopScheduler(post), timerInfra.SystemClock{}, svc.source, opts...)
		return svc.timer
	})
	return svc
}

// Start restores the recent log, runs the timer loop until ctx is done and asks for
// the first scramble.
func (s *timerService) Start(ctx context.Context) {
	s.log.Restore(s.loadRecent(ctx))

	changes, cancel := s.deps.Settings.Subscribe()
	go s.session.Run(ctx)
	go func() {
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				next := attemptSettingsFrom(s.deps.Settings.Effective())
				s.session.Post(func() { s.source.current = next })
			}
		}
	}()

	s.session.Post(s.timer.NewScramble)
	logrus.Infof("[TIMER] started with %d recent solves", s.log.Len())
}

// Done is closed once the loop has stopped.
func (s *timerService) Done() <-chan struct{} {
	return s.session.Done()
}

func (s *timerService) KeyDown(ctx context.Context) (timerDomain.Snapshot, error) {
	return s.apply(ctx, (*timerApp.SolveTimer).KeyDown)
}

func (s *timerService) KeyUp(ctx context.Context) (timerDomain.Snapshot, error) {
	return s.apply(ctx, (*timerApp.SolveTimer).KeyUp)
}

func (s *timerService) apply(ctx context.Context, fn func(*timerApp.SolveTimer)) (timerDomain.Snapshot, error) {
	var snap timerDomain.Snapshot
	err := s.session.Do(ctx, func(t *timerApp.SolveTimer) {
		fn(t)
		snap = t.Snapshot()
	})
	return snap, err
}

func (s *timerService) Snapshot(ctx context.Context) (timerDomain.Snapshot, error) {
	return s.session.Snapshot(ctx)
}

func (s *timerService) Reset(ctx context.Context) error {
	return s.session.Do(ctx, (*timerApp.SolveTimer).Reset)
}

func (s *timerService) NewScramble(ctx context.Context) error {
	return s.session.Do(ctx, (*timerApp.SolveTimer).NewScramble)
}

func (s *timerService) SetScramble(ctx context.Context, scramble string) error {
	scramble = strings.Join(strings.Fields(scramble), " ")
	if scramble == "" {
		return pkgError.ValidationError("scramble: cannot be blank")
	}
	return s.session.Do(ctx, func(t *timerApp.SolveTimer) {
		t.SetScramble(scramble)
	})
}

func (s *timerService) TogglePenalty(ctx context.Context, kind domainTimer.PenaltyKind) (timerDomain.SolveRecord, error) {
	var toggle func(*timerApp.SolveTimer) (timerDomain.SolveRecord, bool)
	switch kind {
	case domainTimer.PenaltyPlus2:
		toggle = (*timerApp.SolveTimer).TogglePlus2
	case domainTimer.PenaltyDNF:
		toggle = (*timerApp.SolveTimer).ToggleDNF
	default:
		return timerDomain.SolveRecord{}, pkgError.ValidationError(fmt.Sprintf("unknown penalty %q", kind))
	}

	var (
		rec timerDomain.SolveRecord
		ok  bool
	)
	if err := s.session.Do(ctx, func(t *timerApp.SolveTimer) {
		rec, ok = toggle(t)
	}); err != nil {
		return rec, err
	}
	if !ok {
		return rec, pkgError.NotFoundError("no solves recorded yet")
	}
	return rec, nil
}

func (s *timerService) DeleteLast(ctx context.Context) (timerDomain.SolveRecord, error) {
	var (
		rec timerDomain.SolveRecord
		ok  bool
	)
	if err := s.session.Do(ctx, func(t *timerApp.SolveTimer) {
		rec, ok = t.DeleteLast()
	}); err != nil {
		return rec, err
	}
	if !ok {
		return rec, pkgError.NotFoundError("no solves recorded yet")
	}
	return rec, nil
}

func (s *timerService) Recent(ctx context.Context) ([]timerDomain.SolveRecord, error) {
	var records []timerDomain.SolveRecord
	err := s.session.Do(ctx, func(t *timerApp.SolveTimer) {
		records = t.Log().Records()
	})
	return records, err
}

func (s *timerService) RecentStats(ctx context.Context, n int) (timerApp.LogStats, error) {
	if n <= 0 {
		n = 5
	}
	var stats timerApp.LogStats
	err := s.session.Do(ctx, func(t *timerApp.SolveTimer) {
		stats = t.Log().Stats(n)
	})
	return stats, err
}

func (s *timerService) ClearRecent(ctx context.Context) error {
	return s.session.Do(ctx, func(t *timerApp.SolveTimer) {
		t.Log().Clear()
	})
}

// Export dumps settings, the recent log and the server history.
func (s *timerService) Export(ctx context.Context) (domainTimer.Export, error) {
	recent, err := s.Recent(ctx)
	if err != nil {
		return domainTimer.Export{}, err
	}
	out := domainTimer.Export{
		Version:  ExportVersion,
		Settings: s.deps.Settings.All(),
		Recent:   recent,
		History:  []timerDomain.SolveRecord{},
	}
	if s.deps.History != nil {
		history, err := s.deps.History.List(ctx)
		if err != nil {
			return domainTimer.Export{}, err
		}
		out.History = history
	}
	return out, nil
}

// Import restores a dump. Settings replace the current ones, the recent log is
// replaced and history records are upserted by id.
func (s *timerService) Import(ctx context.Context, data domainTimer.Export) error {
	if data.Version != "" && data.Version != ExportVersion {
		return pkgError.ValidationError(fmt.Sprintf("unsupported export version %q", data.Version))
	}
	if data.Settings != nil {
		if err := s.deps.Settings.Import(ctx, data.Settings); err != nil {
			return err
		}
	}

	if data.Recent != nil {
		recent := append([]timerDomain.SolveRecord(nil), data.Recent...)
		var kept []timerDomain.SolveRecord
		if err := s.session.Do(ctx, func(t *timerApp.SolveTimer) {
			t.Log().Restore(recent)
			kept = t.Log().Records()
		}); err != nil {
			return err
		}
		s.saveRecentAsync(kept)
	}

	if s.deps.History != nil {
		for _, r := range data.History {
			if _, err := s.deps.History.Submit(ctx, submitRequestFrom(r)); err != nil {
				return err
			}
		}
	}

	logrus.Infof("[TIMER] imported %d recent and %d history solves", len(data.Recent), len(data.History))
	return nil
}

// Subscribe returns a channel of timer events. Slow readers miss events. cancel
// closes the channel.
func (s *timerService) Subscribe() (<-chan timerDomain.Event, func()) {
	ch := make(chan timerDomain.Event, timerEventBuffer)

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
}

func (s *timerService) observe(ev timerDomain.Event) {
	s.record(ev)

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (s *timerService) record(ev timerDomain.Event) {
	m := s.deps.Metrics
	if m == nil {
		return
	}
	switch ev.Type {
	case timerDomain.EventStateChanged, timerDomain.EventReset:
		for _, st := range []timerDomain.State{timerDomain.StateIdle, timerDomain.StateArmHold, timerDomain.StateInspecting, timerDomain.StateRunning} {
			v := 0.0
			if st == ev.State {
				v = 1
			}
			m.TimerState.WithLabelValues(string(st)).Set(v)
		}
	case timerDomain.EventRecorded:
		if ev.Record == nil {
			return
		}
		penalty := string(ev.Record.Penalty())
		if penalty == "" {
			penalty = "none"
		}
		m.SolvesRecorded.WithLabelValues(penalty).Inc()
		if !ev.Record.DNF {
			m.SolveSeconds.Observe(ev.Record.Time)
		}
	}
}

func (s *timerService) loadRecent(ctx context.Context) []timerDomain.SolveRecord {
	raw, ok, err := s.deps.Storage.Get(ctx, storageDomain.KeyRecentSolves)
	if err != nil {
		logrus.Warnf("[TIMER] failed to read recent solves: %v", err)
		return nil
	}
	if !ok || raw == "" {
		return nil
	}
	var records []timerDomain.SolveRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		logrus.Warnf("[TIMER] recent solves are corrupt, starting empty: %v", err)
		return nil
	}
	return records
}

// saveRecentAsync persists a copy of the log. Jobs share one key so writes land in order.
func (s *timerService) saveRecentAsync(records []timerDomain.SolveRecord) {
	s.background(jobRecentSolves, func(ctx context.Context) error {
		if records == nil {
			records = []timerDomain.SolveRecord{}
		}
		data, err := json.Marshal(records)
		if err != nil {
			return fmt.Errorf("failed to encode recent solves: %w", err)
		}
		return s.deps.Storage.Set(ctx, storageDomain.KeyRecentSolves, string(data))
	})
}

func (s *timerService) background(key string, fn func(ctx context.Context) error) {
	if s.deps.Pool == nil {
		if err := fn(context.Background()); err != nil {
			logrus.WithError(err).Errorf("[TIMER] %s failed", key)
		}
		return
	}
	s.deps.Pool.Dispatch(worker.Job{Key: key, Handler: fn})
}
