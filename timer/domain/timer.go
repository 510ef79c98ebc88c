package domain

import "time"

type State string

const (
	StateIdle       State = "idle"
	StateArmHold    State = "arm_hold"
	StateInspecting State = "inspecting"
	StateRunning    State = "running"
)

// Cue is an audible signal. Frequency is the tone a player should emit.
type Cue string

const (
	CueNone         Cue = ""
	CueStart        Cue = "start"
	CueStop         Cue = "stop"
	CueWarning      Cue = "warning"
	CueForfeit      Cue = "forfeit"
	CueInspection8  Cue = "inspection8"
	CueInspection12 Cue = "inspection12"
)

func (c Cue) Frequency() int {
	switch c {
	case CueStart:
		return 800
	case CueStop:
		return 600
	case CueWarning:
		return 400
	case CueForfeit:
		return 200
	case CueInspection8:
		return 700
	case CueInspection12:
		return 500
	}
	return 0
}

type EventType string

const (
	EventStateChanged  EventType = "state_changed"
	EventTick          EventType = "tick"
	EventInspection    EventType = "inspection"
	EventRecorded      EventType = "recorded"
	EventRecordUpdated EventType = "record_updated"
	EventRecordRemoved EventType = "record_removed"
	EventScramble      EventType = "scramble"
	EventCue           EventType = "cue"
	EventReset         EventType = "reset"
)

// Event is emitted by the timer for observers (websocket, metrics).
type Event struct {
	Type      EventType    `json:"type"`
	State     State        `json:"state"`
	Elapsed   float64      `json:"elapsed,omitempty"`
	Remaining int          `json:"remaining,omitempty"`
	Scramble  string       `json:"scramble,omitempty"`
	Record    *SolveRecord `json:"record,omitempty"`
	Cue       Cue          `json:"cue,omitempty"`
}

// Snapshot is the polled view of a timer.
type Snapshot struct {
	State     State   `json:"state"`
	Elapsed   float64 `json:"elapsed"`
	Remaining int     `json:"remaining"`
	Penalty   Penalty `json:"penalty"`
	Scramble  string  `json:"scramble"`
	KeyHeld   bool    `json:"key_held"`
}

// Cancel stops a scheduled callback. Calling it more than once is harmless.
type Cancel func()

// Scheduler registers one-shot and repeating callbacks. Callbacks must run on the
// same logical thread as the timer.
type Scheduler interface {
	After(d time.Duration, fn func()) Cancel
	Every(d time.Duration, fn func()) Cancel
}

type Clock interface {
	Now() time.Time
}

// ScrambleSource produces the next scramble. deliver may be called later, from the
// timer's own thread.
type ScrambleSource interface {
	Request(length int, cubeType string, deliver func(scramble string))
}

// Submitter receives each recorded or corrected attempt. It must not block.
type Submitter interface {
	Submit(record SolveRecord)
}

type CuePlayer interface {
	Play(cue Cue)
}

// AttemptSettings is the part of the settings an attempt reads when it starts.
type AttemptSettings struct {
	Inspection     bool
	HoldToStart    bool
	Sound          bool
	AutoScramble   bool
	ScrambleLength int
	CubeType       string
}

type SettingsSource interface {
	AttemptSettings() AttemptSettings
}
