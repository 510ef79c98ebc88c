package application

import (
	"time"

	"github.com/AzielCF/az-cube/timer/domain"
	"github.com/google/uuid"
)

const (
	DefaultHoldDebounce   = 100 * time.Millisecond
	DefaultRenderInterval = 10 * time.Millisecond
	InspectionTickPeriod  = time.Second
)

// Option configures a SolveTimer.
type Option func(*config)

type config struct {
	holdDebounce      time.Duration
	renderInterval    time.Duration
	inspectionSeconds int
	inspectionOverrun int
	scrambles         domain.ScrambleSource
	submitter         domain.Submitter
	cues              domain.CuePlayer
	log               *SolveLog
	observers         []func(domain.Event)
	newID             func() string
}

func defaultConfig() *config {
	return &config{
		holdDebounce:      DefaultHoldDebounce,
		renderInterval:    DefaultRenderInterval,
		inspectionSeconds: DefaultInspectionSeconds,
		newID:             uuid.NewString,
	}
}

// WithHoldDebounce sets how long the key must stay down before an attempt arms.
func WithHoldDebounce(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.holdDebounce = d
		}
	}
}

// WithRenderInterval sets the period of the running tick.
func WithRenderInterval(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.renderInterval = d
		}
	}
}

// WithInspection sets the countdown length and the grace seconds past zero.
func WithInspection(seconds, overrun int) Option {
	return func(c *config) {
		c.inspectionSeconds = seconds
		c.inspectionOverrun = overrun
	}
}

func WithScrambleSource(src domain.ScrambleSource) Option {
	return func(c *config) {
		c.scrambles = src
	}
}

func WithSubmitter(s domain.Submitter) Option {
	return func(c *config) {
		c.submitter = s
	}
}

func WithCuePlayer(p domain.CuePlayer) Option {
	return func(c *config) {
		c.cues = p
	}
}

// WithLog shares an existing log instead of creating an empty one.
func WithLog(l *SolveLog) Option {
	return func(c *config) {
		c.log = l
	}
}

// WithObserver receives every event, on the timer's thread.
func WithObserver(fn func(domain.Event)) Option {
	return func(c *config) {
		c.observers = append(c.observers, fn)
	}
}

// WithIDGenerator replaces uuid generation of record ids.
func WithIDGenerator(fn func() string) Option {
	return func(c *config) {
		c.newID = fn
	}
}
