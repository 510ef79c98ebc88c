package usecase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AzielCF/az-cube/core/config"
	cubeApp "github.com/AzielCF/az-cube/cube/application"
	cubeDomain "github.com/AzielCF/az-cube/cube/domain"
	domainScramble "github.com/AzielCF/az-cube/domains/scramble"
	"github.com/AzielCF/az-cube/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScramble_LocalWhenUnconfigured(t *testing.T) {
	m := metrics.NewRegistry()
	svc := NewScrambleService(cubeApp.NewGenerator(), config.RemoteConfig{}, m)

	resp, err := svc.Generate(context.Background(), domainScramble.GenerateRequest{Length: 12, CubeType: "2x2"})
	require.NoError(t, err)
	assert.Equal(t, domainScramble.SourceLocal, resp.Source)
	assert.Equal(t, "2x2", resp.CubeType)
	assert.Len(t, strings.Fields(resp.Scramble), 12)

	resp, err = svc.Generate(context.Background(), domainScramble.GenerateRequest{})
	require.NoError(t, err)
	assert.Len(t, strings.Fields(resp.Scramble), cubeDomain.DefaultScrambleLength)
	assert.Equal(t, "3x3", resp.CubeType)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ScrambleRequests.WithLabelValues("local")))
}

func TestScramble_Remote(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"scramble":"R U  R' U'"}`))
	}))
	defer srv.Close()

	svc := NewScrambleService(cubeApp.NewGenerator(), config.RemoteConfig{ScrambleEndpoint: srv.URL, TimeoutMs: 1000}, nil)
	resp, err := svc.Generate(context.Background(), domainScramble.GenerateRequest{Length: 4, CubeType: "3x3"})
	require.NoError(t, err)
	assert.Equal(t, domainScramble.SourceRemote, resp.Source)
	assert.Equal(t, "R U R' U'", resp.Scramble)
	assert.Contains(t, gotQuery, "length=4")
	assert.Contains(t, gotQuery, "cube_type=3x3")
}

func TestScramble_FallsBackOnRemoteFailure(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
		"json":   func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`<html>`)) },
		"moves":  func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{"scramble":"R R"}`)) },
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()

			m := metrics.NewRegistry()
			svc := NewScrambleService(cubeApp.NewGenerator(), config.RemoteConfig{ScrambleEndpoint: srv.URL}, m)
			scramble := svc.Fetch(context.Background(), 20, "3x3")

			seq, err := cubeDomain.ParseSequence(scramble)
			require.NoError(t, err)
			assert.Len(t, seq, 20)
			assert.Equal(t, 1.0, testutil.ToFloat64(m.ScrambleRequests.WithLabelValues("fallback")))
		})
	}
}

func TestScramble_RejectsInvalidRequest(t *testing.T) {
	svc := NewScrambleService(cubeApp.NewGenerator(), config.RemoteConfig{}, nil)
	_, err := svc.Generate(context.Background(), domainScramble.GenerateRequest{Length: 500})
	assert.Error(t, err)
}
