package timer

import (
	"context"

	timerApp "github.com/AzielCF/az-cube/timer/application"
	timerDomain "github.com/AzielCF/az-cube/timer/domain"
)

type PenaltyKind string

const (
	PenaltyPlus2 PenaltyKind = "plus2"
	PenaltyDNF   PenaltyKind = "dnf"
)

// Export is the portable dump of a user's data.
type Export struct {
	Version  string                    `json:"version"`
	Settings map[string]any            `json:"settings"`
	Recent   []timerDomain.SolveRecord `json:"recent"`
	History  []timerDomain.SolveRecord `json:"history"`
}

type ITimerUsecase interface {
	KeyDown(ctx context.Context) (timerDomain.Snapshot, error)
	KeyUp(ctx context.Context) (timerDomain.Snapshot, error)
	Snapshot(ctx context.Context) (timerDomain.Snapshot, error)
	Reset(ctx context.Context) error
	NewScramble(ctx context.Context) error
	SetScramble(ctx context.Context, scramble string) error
	TogglePenalty(ctx context.Context, kind PenaltyKind) (timerDomain.SolveRecord, error)
	DeleteLast(ctx context.Context) (timerDomain.SolveRecord, error)
	Recent(ctx context.Context) ([]timerDomain.SolveRecord, error)
	RecentStats(ctx context.Context, n int) (timerApp.LogStats, error)
	ClearRecent(ctx context.Context) error
	Export(ctx context.Context) (Export, error)
	Import(ctx context.Context, data Export) error
	// Subscribe delivers timer events until cancel is called.
	Subscribe() (<-chan timerDomain.Event, func())
}
