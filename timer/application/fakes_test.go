package application

import (
	"fmt"
	"time"

	"github.com/AzielCF/az-cube/timer/domain"
)

type scheduled struct {
	d         time.Duration
	fn        func()
	repeating bool
	active    bool
}

// countingScheduler records every registration and tracks how many repeating
// callbacks of each period are live at once.
type countingScheduler struct {
	entries   []*scheduled
	maxActive map[time.Duration]int
}

func newCountingScheduler() *countingScheduler {
	return &countingScheduler{maxActive: map[time.Duration]int{}}
}

func (s *countingScheduler) After(d time.Duration, fn func()) domain.Cancel {
	e := &scheduled{d: d, fn: fn, active: true}
	s.entries = append(s.entries, e)
	return func() { e.active = false }
}

func (s *countingScheduler) Every(d time.Duration, fn func()) domain.Cancel {
	e := &scheduled{d: d, fn: fn, repeating: true, active: true}
	s.entries = append(s.entries, e)
	if n := s.active(d, true); n > s.maxActive[d] {
		s.maxActive[d] = n
	}
	return func() { e.active = false }
}

func (s *countingScheduler) active(d time.Duration, repeating bool) int {
	n := 0
	for _, e := range s.entries {
		if e.active && e.repeating == repeating && e.d == d {
			n++
		}
	}
	return n
}

// fireAfter runs every pending one-shot callback.
func (s *countingScheduler) fireAfter() {
	for _, e := range append([]*scheduled(nil), s.entries...) {
		if e.active && !e.repeating {
			e.active = false
			e.fn()
		}
	}
}

// tick runs one period of every live repeating callback of period d.
func (s *countingScheduler) tick(d time.Duration) {
	for _, e := range append([]*scheduled(nil), s.entries...) {
		if e.active && e.repeating && e.d == d {
			e.fn()
		}
	}
}

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

type fakeSettings struct {
	s domain.AttemptSettings
}

func (f *fakeSettings) AttemptSettings() domain.AttemptSettings { return f.s }

// syncScrambles delivers numbered scrambles immediately, or holds them when deferred.
type syncScrambles struct {
	n        int
	deferred bool
	pending  []func()
	requests []string
}

func (s *syncScrambles) Request(length int, cubeType string, deliver func(string)) {
	s.n++
	s.requests = append(s.requests, fmt.Sprintf("%d/%s", length, cubeType))
	scramble := fmt.Sprintf("S%d", s.n)
	if s.deferred {
		s.pending = append(s.pending, func() { deliver(scramble) })
		return
	}
	deliver(scramble)
}

type recordingSubmitter struct {
	records []domain.SolveRecord
}

func (r *recordingSubmitter) Submit(rec domain.SolveRecord) {
	r.records = append(r.records, rec)
}

type recordingCues struct {
	cues []domain.Cue
}

func (r *recordingCues) Play(c domain.Cue) { r.cues = append(r.cues, c) }

type harness struct {
	timer     *SolveTimer
	sched     *countingScheduler
	clock     *fakeClock
	settings  *fakeSettings
	scrambles *syncScrambles
	submitted *recordingSubmitter
	cues      *recordingCues
	events    []domain.Event
}

func newHarness(s domain.AttemptSettings, opts ...Option) *harness {
	h := &harness{
		sched:     newCountingScheduler(),
		clock:     newFakeClock(),
		settings:  &fakeSettings{s: s},
		scrambles: &syncScrambles{},
		submitted: &recordingSubmitter{},
		cues:      &recordingCues{},
	}
	ids := 0
	opts = append([]Option{
		WithScrambleSource(h.scrambles),
		WithSubmitter(h.submitted),
		WithCuePlayer(h.cues),
		WithObserver(func(ev domain.Event) { h.events = append(h.events, ev) }),
		WithIDGenerator(func() string { ids++; return fmt.Sprintf("id-%d", ids) }),
	}, opts...)
	h.timer = NewSolveTimer(h.sched, h.clock, h.settings, opts...)
	return h
}

func (h *harness) inspectionTicks() int {
	return h.sched.active(InspectionTickPeriod, true)
}

func (h *harness) runningTicks() int {
	return h.sched.active(DefaultRenderInterval, true)
}
