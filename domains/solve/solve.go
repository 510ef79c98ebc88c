package solve

import (
	"context"
	"time"

	timerDomain "github.com/AzielCF/az-cube/timer/domain"
)

type SubmitRequest struct {
	ID        string     `json:"id"`
	Time      float64    `json:"time"`
	Scramble  string     `json:"scramble"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	DNF       bool       `json:"dnf"`
	Plus2     bool       `json:"plus2"`
}

type DeleteManyRequest struct {
	Indices []int `json:"indices"`
}

// ChartPoint is one solve on the progress chart. Nil values are gaps.
type ChartPoint struct {
	Index int      `json:"index"`
	Time  *float64 `json:"time"`
	Ao5   *float64 `json:"ao5"`
	Ao12  *float64 `json:"ao12"`
}

type Stats struct {
	TotalSolves int      `json:"total_solves"`
	DNFCount    int      `json:"dnf_count"`
	BestSingle  *float64 `json:"best_single"`
	WorstSingle *float64 `json:"worst_single"`
	SessionMean *float64 `json:"session_mean"`
	Mo3         *float64 `json:"mo3"`
	Ao5         *float64 `json:"ao5"`
	Ao12        *float64 `json:"ao12"`
	Ao50        *float64 `json:"ao50"`
	Ao100       *float64 `json:"ao100"`
	Ao1000      *float64 `json:"ao1000"`

	// averages with two or more DNFs in their window, e.g. "ao5"
	DNFAverages []string `json:"dnf_averages"`

	// percentage of all solves under the threshold
	Sub10 float64 `json:"sub10"`
	Sub15 float64 `json:"sub15"`
	Sub20 float64 `json:"sub20"`

	Chart []ChartPoint `json:"chart"`
}

// ISolveUsecase is the server-side solve history. Indices refer to the
// chronological order returned by List.
type ISolveUsecase interface {
	InitSchema(ctx context.Context) error
	Submit(ctx context.Context, request SubmitRequest) (timerDomain.SolveRecord, error)
	List(ctx context.Context) ([]timerDomain.SolveRecord, error)
	DeleteAt(ctx context.Context, index int) error
	DeleteMany(ctx context.Context, indices []int) (int, error)
	DeleteAll(ctx context.Context) (int, error)
	Stats(ctx context.Context) (Stats, error)
}
