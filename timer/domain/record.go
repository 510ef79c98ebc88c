package domain

import (
	"math"
	"time"
)

const PenaltySeconds = 2.0

type Penalty string

const (
	PenaltyNone  Penalty = ""
	PenaltyPlus2 Penalty = "plus2"
	PenaltyDNF   Penalty = "dnf"
)

// SolveRecord is one timed attempt. DNF and Plus2 are never both set.
type SolveRecord struct {
	ID        string    `json:"id"`
	Time      float64   `json:"time"`
	Scramble  string    `json:"scramble"`
	Timestamp time.Time `json:"timestamp"`
	DNF       bool      `json:"dnf"`
	Plus2     bool      `json:"plus2"`
}

// Effective returns the time that counts, or false for a DNF.
func (r SolveRecord) Effective() (float64, bool) {
	if r.DNF {
		return 0, false
	}
	if r.Plus2 {
		return r.Time + PenaltySeconds, true
	}
	return r.Time, true
}

func (r SolveRecord) Penalty() Penalty {
	switch {
	case r.DNF:
		return PenaltyDNF
	case r.Plus2:
		return PenaltyPlus2
	}
	return PenaltyNone
}

// WithPenalty sets exactly the flags p describes.
func (r SolveRecord) WithPenalty(p Penalty) SolveRecord {
	r.DNF = p == PenaltyDNF
	r.Plus2 = p == PenaltyPlus2
	return r
}

// TogglePlus2 flips +2 and clears DNF.
func (r SolveRecord) TogglePlus2() SolveRecord {
	r.Plus2 = !r.Plus2
	r.DNF = false
	return r
}

// ToggleDNF flips DNF and clears +2.
func (r SolveRecord) ToggleDNF() SolveRecord {
	r.DNF = !r.DNF
	r.Plus2 = false
	return r
}

// RoundMillis rounds a duration to whole milliseconds expressed in seconds.
func RoundMillis(d time.Duration) float64 {
	return math.Round(float64(d)/float64(time.Millisecond)) / 1000
}
