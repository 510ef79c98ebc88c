package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/AzielCF/az-cube/core/config"
	cubeDomain "github.com/AzielCF/az-cube/cube/domain"
	domainSolver "github.com/AzielCF/az-cube/domains/solver"
	pkgError "github.com/AzielCF/az-cube/pkg/error"
	"github.com/AzielCF/az-cube/pkg/metrics"
	"github.com/AzielCF/az-cube/pkg/utils"
	"github.com/AzielCF/az-cube/validations"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
)

type serviceSolver struct {
	endpoint string
	timeout  time.Duration
	client   *fasthttp.Client
	metrics  *metrics.Registry
}

func NewSolverService(remote config.RemoteConfig, m *metrics.Registry) domainSolver.ISolverUsecase {
	timeout := time.Duration(remote.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &serviceSolver{
		endpoint: remote.SolverEndpoint,
		timeout:  timeout,
		client:   &fasthttp.Client{Name: "az-cube"},
		metrics:  m,
	}
}

type solverResponse struct {
	Success   *bool  `json:"success"`
	Solution  string `json:"solution"`
	MoveCount int    `json:"move_count"`
	Error     string `json:"error"`
}

// Solve validates the picked colors, encodes them and asks the external solver.
func (s *serviceSolver) Solve(ctx context.Context, request domainSolver.SolveRequest) (domainSolver.SolveResponse, error) {
	if err := validations.ValidateSolverRequest(ctx, request); err != nil {
		return domainSolver.SolveResponse{}, err
	}

	state, err := cubeDomain.FaceStateFromMap(request.CubeState)
	if err != nil {
		return domainSolver.SolveResponse{}, err
	}
	if err := state.Validate(); err != nil {
		return domainSolver.SolveResponse{}, err
	}
	cube := state.Encode()

	if s.endpoint == "" {
		s.count("unconfigured")
		return domainSolver.SolveResponse{}, pkgError.UpstreamError("cube solver is not configured")
	}

	var resp solverResponse
	if err := utils.JSONRequest(ctx, s.client, http.MethodPost, s.endpoint, s.timeout, map[string]string{"cube": cube}, &resp); err != nil {
		logrus.WithError(err).Warn("[SOLVER] request failed")
		s.count("error")
		return domainSolver.SolveResponse{}, pkgError.UpstreamError("cube solver is unavailable")
	}
	if (resp.Success != nil && !*resp.Success) || resp.Error != "" {
		s.count("rejected")
		msg := resp.Error
		if msg == "" {
			msg = "cube solver could not solve this cube"
		}
		return domainSolver.SolveResponse{}, pkgError.ValidationError(msg)
	}

	moveCount := resp.MoveCount
	if moveCount == 0 {
		moveCount = len(strings.Fields(resp.Solution))
	}
	s.count("success")
	return domainSolver.SolveResponse{
		Solution:  resp.Solution,
		MoveCount: moveCount,
		Cube:      cube,
	}, nil
}

func (s *serviceSolver) count(outcome string) {
	if s.metrics != nil {
		s.metrics.SolverRequests.WithLabelValues(outcome).Inc()
	}
}
