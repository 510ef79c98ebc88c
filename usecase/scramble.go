package usecase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/AzielCF/az-cube/core/config"
	cubeApp "github.com/AzielCF/az-cube/cube/application"
	cubeDomain "github.com/AzielCF/az-cube/cube/domain"
	domainScramble "github.com/AzielCF/az-cube/domains/scramble"
	"github.com/AzielCF/az-cube/pkg/metrics"
	"github.com/AzielCF/az-cube/pkg/utils"
	"github.com/AzielCF/az-cube/validations"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
)

type serviceScramble struct {
	generator *cubeApp.Generator
	endpoint  string
	timeout   time.Duration
	client    *fasthttp.Client
	metrics   *metrics.Registry
}

func NewScrambleService(generator *cubeApp.Generator, remote config.RemoteConfig, m *metrics.Registry) domainScramble.IScrambleUsecase {
	timeout := time.Duration(remote.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &serviceScramble{
		generator: generator,
		endpoint:  remote.ScrambleEndpoint,
		timeout:   timeout,
		client:    &fasthttp.Client{Name: "az-cube"},
		metrics:   m,
	}
}

func (s *serviceScramble) Generate(ctx context.Context, request domainScramble.GenerateRequest) (domainScramble.GenerateResponse, error) {
	if err := validations.ValidateScrambleRequest(ctx, request); err != nil {
		return domainScramble.GenerateResponse{}, err
	}

	length := request.Length
	if length <= 0 {
		length = cubeDomain.DefaultScrambleLength
	}
	cubeType := cubeDomain.CubeType(request.CubeType).OrDefault()

	scramble, source := s.fetch(ctx, length, cubeType)
	return domainScramble.GenerateResponse{
		Scramble: scramble,
		Length:   length,
		CubeType: string(cubeType),
		Source:   source,
	}, nil
}

func (s *serviceScramble) Fetch(ctx context.Context, length int, cubeType string) string {
	scramble, _ := s.fetch(ctx, length, cubeDomain.CubeType(cubeType).OrDefault())
	return scramble
}

// fetch tries the remote endpoint when one is configured and falls back to the
// local generator on any failure.
func (s *serviceScramble) fetch(ctx context.Context, length int, cubeType cubeDomain.CubeType) (string, domainScramble.Source) {
	if s.endpoint == "" {
		s.count(domainScramble.SourceLocal)
		return s.generator.Generate(length, cubeType).String(), domainScramble.SourceLocal
	}

	scramble, err := s.fetchRemote(ctx, length, cubeType)
	if err != nil {
		logrus.Debugf("[SCRAMBLE] remote fetch failed, generating locally: %v", err)
		s.count(domainScramble.SourceFallback)
		return s.generator.Generate(length, cubeType).String(), domainScramble.SourceFallback
	}
	s.count(domainScramble.SourceRemote)
	return scramble, domainScramble.SourceRemote
}

func (s *serviceScramble) fetchRemote(ctx context.Context, length int, cubeType cubeDomain.CubeType) (string, error) {
	u, err := url.Parse(s.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid scramble endpoint: %w", err)
	}
	q := u.Query()
	q.Set("length", strconv.Itoa(length))
	q.Set("cube_type", string(cubeType))
	u.RawQuery = q.Encode()

	var resp struct {
		Scramble string `json:"scramble"`
	}
	if err := utils.JSONRequest(ctx, s.client, http.MethodGet, u.String(), s.timeout, nil, &resp); err != nil {
		return "", err
	}

	seq, err := cubeDomain.ParseSequence(resp.Scramble)
	if err != nil {
		return "", fmt.Errorf("remote returned an unusable scramble: %w", err)
	}
	return seq.String(), nil
}

func (s *serviceScramble) count(source domainScramble.Source) {
	if s.metrics != nil {
		s.metrics.ScrambleRequests.WithLabelValues(string(source)).Inc()
	}
}
