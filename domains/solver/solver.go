package solver

import (
	"context"

	cubeDomain "github.com/AzielCF/az-cube/cube/domain"
)

type SolveRequest struct {
	CubeState map[cubeDomain.Color][]cubeDomain.Color `json:"cube_state"`
}

type SolveResponse struct {
	Solution  string `json:"solution"`
	MoveCount int    `json:"move_count"`
	Cube      string `json:"cube"`
}

type ISolverUsecase interface {
	Solve(ctx context.Context, request SolveRequest) (SolveResponse, error)
}
