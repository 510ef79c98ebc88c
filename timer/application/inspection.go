package application

import "github.com/AzielCF/az-cube/timer/domain"

const (
	DefaultInspectionSeconds = 15
	MaxInspectionOverrun     = 2
)

// InspectionTick is what one elapsed second produced.
type InspectionTick struct {
	Remaining int
	Expired   bool
	Cue       domain.Cue
}

// InspectionClock counts whole seconds down before a solve. It only tracks the
// count; ticking is driven by the caller.
type InspectionClock struct {
	seconds   int
	overrun   int
	counting  bool
	remaining int
}

// NewInspectionClock returns an idle clock. overrun is the number of seconds the count
// may go negative before it expires, clamped to [0, 2].
func NewInspectionClock(seconds, overrun int) *InspectionClock {
	if seconds <= 0 {
		seconds = DefaultInspectionSeconds
	}
	overrun = max(0, min(overrun, MaxInspectionOverrun))
	return &InspectionClock{seconds: seconds, overrun: overrun}
}

func (c *InspectionClock) Start() {
	c.counting = true
	c.remaining = c.seconds
}

func (c *InspectionClock) Counting() bool { return c.counting }

func (c *InspectionClock) Remaining() int { return c.remaining }

// Tick consumes one second. Ticks while idle are ignored.
func (c *InspectionClock) Tick() InspectionTick {
	if !c.counting {
		return InspectionTick{}
	}
	c.remaining--

	tick := InspectionTick{Remaining: c.remaining}
	switch {
	case c.remaining <= -c.overrun:
		tick.Expired = true
		c.counting = false
	case c.remaining == 12:
		tick.Cue = domain.CueInspection12
	case c.remaining == 8:
		tick.Cue = domain.CueInspection8
	case c.remaining >= 1 && c.remaining <= 3:
		tick.Cue = domain.CueWarning
	}
	return tick
}

// Cancel stops counting and reports the remaining seconds, false when it was idle.
func (c *InspectionClock) Cancel() (int, bool) {
	if !c.counting {
		return 0, false
	}
	c.counting = false
	return c.remaining, true
}

// PenaltyFor maps the seconds left when the solve started to a penalty.
func PenaltyFor(remaining int) domain.Penalty {
	switch {
	case remaining > 0:
		return domain.PenaltyNone
	case remaining > -2:
		return domain.PenaltyPlus2
	}
	return domain.PenaltyDNF
}
