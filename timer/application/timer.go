package application

import (
	"time"

	"github.com/AzielCF/az-cube/timer/domain"
	"github.com/sirupsen/logrus"
)

// SolveTimer is the attempt state machine driven by one key. It is not safe for
// concurrent use: key events, scheduler callbacks and scramble deliveries must all
// arrive on the same goroutine (see Session).
type SolveTimer struct {
	cfg        *config
	sched      domain.Scheduler
	clock      domain.Clock
	settings   domain.SettingsSource
	log        *SolveLog
	inspection *InspectionClock

	state   domain.State
	keyHeld bool

	// snapshot taken when the attempt began
	attempt         domain.AttemptSettings
	attemptScramble string
	penalty         domain.Penalty

	scramble    string
	scrambleGen uint64

	startedAt time.Time
	elapsed   time.Duration

	armCancel     domain.Cancel
	inspectCancel domain.Cancel
	runCancel     domain.Cancel
}

func NewSolveTimer(sched domain.Scheduler, clock domain.Clock, settings domain.SettingsSource, opts ...Option) *SolveTimer {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	log := cfg.log
	if log == nil {
		log = NewSolveLog(DefaultLogLimit)
	}
	return &SolveTimer{
		cfg:        cfg,
		sched:      sched,
		clock:      clock,
		settings:   settings,
		log:        log,
		inspection: NewInspectionClock(cfg.inspectionSeconds, cfg.inspectionOverrun),
		state:      domain.StateIdle,
	}
}

func (t *SolveTimer) State() domain.State { return t.state }

func (t *SolveTimer) Log() *SolveLog { return t.log }

func (t *SolveTimer) Scramble() string { return t.scramble }

// SetScramble replaces the current scramble, e.g. one typed in by the user.
// Pending deliveries are discarded.
func (t *SolveTimer) SetScramble(s string) {
	t.scrambleGen++
	t.scramble = s
	t.emit(domain.Event{Type: domain.EventScramble, Scramble: s})
}

// KeyDown handles a press of the control. Presses while the key is already down
// are keyboard auto-repeat and ignored.
func (t *SolveTimer) KeyDown() {
	if t.keyHeld {
		return
	}
	t.keyHeld = true

	switch t.state {
	case domain.StateIdle:
		t.attempt = t.settings.AttemptSettings()
		t.attemptScramble = t.scramble
		if t.attempt.HoldToStart {
			t.setState(domain.StateArmHold)
			t.armCancel = t.sched.After(t.cfg.holdDebounce, t.armed)
			return
		}
		t.begin()
	case domain.StateInspecting:
		remaining, _ := t.inspection.Cancel()
		t.clearInspectionTick()
		t.penalty = PenaltyFor(remaining)
		t.startRunning()
	case domain.StateRunning:
		t.stop()
	}
}

// KeyUp handles a release. Releasing before the hold debounce cancels the attempt.
func (t *SolveTimer) KeyUp() {
	t.keyHeld = false
	if t.state != domain.StateArmHold {
		return
	}
	t.clearArm()
	t.setState(domain.StateIdle)
}

func (t *SolveTimer) armed() {
	t.armCancel = nil
	if t.state != domain.StateArmHold {
		return
	}
	t.begin()
}

func (t *SolveTimer) begin() {
	t.penalty = domain.PenaltyNone
	if t.attempt.Inspection {
		t.startInspection()
		return
	}
	t.startRunning()
}

func (t *SolveTimer) startInspection() {
	t.clearInspectionTick()
	t.inspection.Start()
	t.setState(domain.StateInspecting)
	t.emit(domain.Event{Type: domain.EventInspection, Remaining: t.inspection.Remaining()})
	t.inspectCancel = t.sched.Every(InspectionTickPeriod, t.inspectionTick)
}

func (t *SolveTimer) inspectionTick() {
	if t.state != domain.StateInspecting {
		return
	}
	tick := t.inspection.Tick()
	if tick.Cue != domain.CueNone {
		t.play(tick.Cue)
	}
	t.emit(domain.Event{Type: domain.EventInspection, Remaining: tick.Remaining})
	if tick.Expired {
		t.forfeit()
	}
}

// forfeit ends an attempt whose inspection ran out: a zero-time DNF is recorded
// without the stopwatch ever starting.
func (t *SolveTimer) forfeit() {
	t.clearInspectionTick()
	t.setState(domain.StateIdle)
	t.play(domain.CueForfeit)
	logrus.Debug("[TIMER] inspection expired, recording DNF")
	t.record(domain.SolveRecord{Time: 0, Scramble: t.attemptScramble, DNF: true})
}

func (t *SolveTimer) startRunning() {
	t.clearRunningTick()
	t.startedAt = t.clock.Now()
	t.elapsed = 0
	t.setState(domain.StateRunning)
	t.play(domain.CueStart)
	t.runCancel = t.sched.Every(t.cfg.renderInterval, t.runningTick)
}

func (t *SolveTimer) runningTick() {
	if t.state != domain.StateRunning {
		return
	}
	t.elapsed = t.clock.Now().Sub(t.startedAt)
	t.emit(domain.Event{Type: domain.EventTick, Elapsed: t.elapsed.Seconds()})
}

func (t *SolveTimer) stop() {
	t.clearRunningTick()
	t.elapsed = t.clock.Now().Sub(t.startedAt)
	t.setState(domain.StateIdle)
	t.play(domain.CueStop)

	rec := domain.SolveRecord{
		Time:     domain.RoundMillis(t.elapsed),
		Scramble: t.attemptScramble,
	}.WithPenalty(t.penalty)
	t.record(rec)
}

func (t *SolveTimer) record(r domain.SolveRecord) {
	r.ID = t.cfg.newID()
	r.Timestamp = t.clock.Now()
	t.penalty = domain.PenaltyNone

	t.log.Append(r)
	t.emit(domain.Event{Type: domain.EventRecorded, Record: &r})
	t.submit(r)

	if t.attempt.AutoScramble {
		t.NewScramble()
	}
}

// NewScramble asks the scramble source for a fresh scramble using the current
// settings. Only the latest request is applied.
func (t *SolveTimer) NewScramble() {
	if t.cfg.scrambles == nil {
		return
	}
	t.scrambleGen++
	gen := t.scrambleGen
	s := t.settings.AttemptSettings()
	t.cfg.scrambles.Request(s.ScrambleLength, s.CubeType, func(scramble string) {
		if gen != t.scrambleGen {
			return
		}
		t.scramble = scramble
		t.emit(domain.Event{Type: domain.EventScramble, Scramble: scramble})
	})
}

// TogglePlus2 flips +2 on the most recent record and re-submits it.
func (t *SolveTimer) TogglePlus2() (domain.SolveRecord, bool) {
	return t.correct(domain.SolveRecord.TogglePlus2)
}

// ToggleDNF flips DNF on the most recent record and re-submits it.
func (t *SolveTimer) ToggleDNF() (domain.SolveRecord, bool) {
	return t.correct(domain.SolveRecord.ToggleDNF)
}

func (t *SolveTimer) correct(fn func(domain.SolveRecord) domain.SolveRecord) (domain.SolveRecord, bool) {
	r, ok := t.log.UpdateFront(fn)
	if !ok {
		return r, false
	}
	t.emit(domain.Event{Type: domain.EventRecordUpdated, Record: &r})
	t.submit(r)
	return r, true
}

// DeleteLast removes the most recent record from the log.
func (t *SolveTimer) DeleteLast() (domain.SolveRecord, bool) {
	r, ok := t.log.Front()
	if !ok {
		return r, false
	}
	t.log.RemoveAt(0)
	t.emit(domain.Event{Type: domain.EventRecordRemoved, Record: &r})
	return r, true
}

// Reset abandons any attempt in progress and cancels every scheduled callback.
func (t *SolveTimer) Reset() {
	t.clearArm()
	t.clearInspectionTick()
	t.clearRunningTick()
	t.inspection.Cancel()
	t.keyHeld = false
	t.penalty = domain.PenaltyNone
	t.elapsed = 0
	t.state = domain.StateIdle
	t.emit(domain.Event{Type: domain.EventReset})
}

func (t *SolveTimer) Snapshot() domain.Snapshot {
	snap := domain.Snapshot{
		State:    t.state,
		Elapsed:  t.elapsed.Seconds(),
		Penalty:  t.penalty,
		Scramble: t.scramble,
		KeyHeld:  t.keyHeld,
	}
	switch t.state {
	case domain.StateRunning:
		snap.Elapsed = t.clock.Now().Sub(t.startedAt).Seconds()
	case domain.StateInspecting:
		snap.Remaining = t.inspection.Remaining()
	}
	return snap
}

func (t *SolveTimer) clearArm() {
	if t.armCancel != nil {
		t.armCancel()
		t.armCancel = nil
	}
}

func (t *SolveTimer) clearInspectionTick() {
	if t.inspectCancel != nil {
		t.inspectCancel()
		t.inspectCancel = nil
	}
}

func (t *SolveTimer) clearRunningTick() {
	if t.runCancel != nil {
		t.runCancel()
		t.runCancel = nil
	}
}

func (t *SolveTimer) setState(s domain.State) {
	if t.state == s {
		return
	}
	t.state = s
	t.emit(domain.Event{Type: domain.EventStateChanged})
}

func (t *SolveTimer) play(cue domain.Cue) {
	if !t.attempt.Sound {
		return
	}
	t.emit(domain.Event{Type: domain.EventCue, Cue: cue})
	if t.cfg.cues != nil {
		t.cfg.cues.Play(cue)
	}
}

func (t *SolveTimer) submit(r domain.SolveRecord) {
	if t.cfg.submitter != nil {
		t.cfg.submitter.Submit(r)
	}
}

func (t *SolveTimer) emit(ev domain.Event) {
	ev.State = t.state
	for _, fn := range t.cfg.observers {
		fn(ev)
	}
}
